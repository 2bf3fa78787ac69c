package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/config"
	"github.com/okian/scoutmatch/internal/seeding"
	"github.com/okian/scoutmatch/pkg/logger"
)

func main() {
	var (
		dsn      = flag.String("dsn", os.Getenv(config.EnvPrefix+"DATABASE_URL"), "Postgres connection string")
		input    = flag.String("file", "", "YAML profile file")
		generate = flag.Int("generate", 0, "Number of synthetic profiles to create when -file is empty")
		batch    = flag.Int("batch", seeding.DefaultBatchSize, "Profiles per upsert")
		workers  = flag.Int("workers", seeding.DefaultWorkers, "Concurrent upserts")
		seed     = flag.Int64("seed", 0, "Generator seed")
		output   = flag.String("output", "", "Write the seeded profiles to this YAML file")
		timeout  = flag.Duration("timeout", seeding.DefaultTimeout, "Bound on the whole run")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seeding.ShowHelp()
		return
	}
	if *dsn == "" {
		os.Stderr.WriteString("missing -dsn or SCOUT_DATABASE_URL\n")
		os.Exit(2)
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Named("seed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, *dsn, &seeding.Config{
		InputFile:  *input,
		Generate:   *generate,
		BatchSize:  *batch,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *output,
		Seed:       *seed,
	}, log)
	stop()
	if err != nil {
		log.Error(context.Background(), "seeding failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, dsn string, cfg *seeding.Config, log logger.Logger) error {
	store, err := repository.NewPostgresStore(ctx, dsn)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	_, err = seeding.Run(ctx, cfg, store, log)
	return err
}
