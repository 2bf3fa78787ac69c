// Package seeding loads or synthesizes stakeholder profiles and writes them
// to a profile store in concurrent batches.
package seeding

import (
	"errors"
	"time"
)

// Config holds configuration for a seeding run.
type Config struct {
	InputFile  string        // YAML profile file; empty means generate
	Generate   int           // Number of profiles to synthesize when InputFile is empty
	BatchSize  int           // Profiles per Upsert call
	Workers    int           // Concurrent Upsert calls
	Timeout    time.Duration // Bound on the whole run
	OutputFile string        // Optional YAML dump of the written profiles
	Seed       int64         // Generator seed; zero uses the current time
}

// Stats holds run statistics.
type Stats struct {
	ProfilesLoaded  int
	ProfilesWritten int
	Batches         int
	ByType          map[string]int
	StartTime       time.Time
	Duration        time.Duration
}

// Defaults.
const (
	DefaultBatchSize = 100
	DefaultWorkers   = 4
	DefaultTimeout   = 5 * time.Minute
)

// Errors.
var (
	ErrNoProfiles    = errors.New("no profiles to seed")
	ErrInvalidConfig = errors.New("invalid seeding config")
)

func (c *Config) normalize() error {
	if c.InputFile == "" && c.Generate <= 0 {
		return ErrNoProfiles
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}
