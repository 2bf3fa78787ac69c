package seeding

import "os"

// ShowHelp prints usage information for the seed-profiles tool.
func ShowHelp() {
	os.Stdout.WriteString(`scoutmatch profile seeder
=========================

Writes stakeholder profiles into the Postgres profile store.

Usage:
  go run ./cmd/seed-profiles [options]

Options:
  -dsn string
        Postgres connection string (default $SCOUT_DATABASE_URL)
  -file string
        YAML profile file with a top-level "profiles" list
  -generate int
        Number of synthetic profiles to create when -file is empty
  -batch int
        Profiles per upsert (default 100)
  -workers int
        Concurrent upserts (default 4)
  -seed int
        Generator seed (default: current time)
  -output string
        Write the seeded profiles to this YAML file
  -timeout duration
        Bound on the whole run (default 5m)
  -help
        Show this help message

Examples:
  # Seed from the demo file
  go run ./cmd/seed-profiles -file profiles.yaml

  # Seed 600 synthetic profiles and keep a copy
  go run ./cmd/seed-profiles -generate 600 -output seeded.yaml
`)
}
