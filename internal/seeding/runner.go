package seeding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run loads or generates profiles and upserts them into w.
func Run(ctx context.Context, cfg *Config, w repository.Writer, log logger.Logger) (*Stats, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: nil writer", ErrInvalidConfig)
	}
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	stats := &Stats{StartTime: time.Now(), ByType: map[string]int{}}
	log.Info(ctx, "starting profile seeding",
		logger.String("input", cfg.InputFile),
		logger.Int("generate", cfg.Generate),
		logger.Int("batchSize", cfg.BatchSize),
		logger.Int("workers", cfg.Workers))

	profiles, err := loadOrGenerate(cfg)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNoProfiles
	}
	stats.ProfilesLoaded = len(profiles)
	for _, p := range profiles {
		stats.ByType[string(p.UserType)]++
	}

	if err := writeBatches(ctx, cfg, w, profiles, stats); err != nil {
		return stats, fmt.Errorf("profile upsert failed: %w", err)
	}

	if cfg.OutputFile != "" {
		if err := saveProfiles(cfg.OutputFile, profiles); err != nil {
			return stats, err
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "profile seeding finished",
		logger.Int("written", stats.ProfilesWritten),
		logger.Int("batches", stats.Batches),
		logger.Any("byType", stats.ByType),
		logger.Duration("elapsed", stats.Duration))
	return stats, nil
}

func loadOrGenerate(cfg *Config) ([]model.Profile, error) {
	if cfg.InputFile != "" {
		profiles, err := repository.LoadProfilesFile(cfg.InputFile)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", cfg.InputFile, err)
		}
		return profiles, nil
	}
	return newGenerator(cfg.Seed, time.Now()).generateProfiles(cfg.Generate), nil
}

// writeBatches upserts profiles in batches of cfg.BatchSize with at most
// cfg.Workers batches in flight.
func writeBatches(ctx context.Context, cfg *Config, w repository.Writer, profiles []model.Profile, stats *Stats) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	var mu sync.Mutex
	for start := 0; start < len(profiles); start += cfg.BatchSize {
		batch := profiles[start:min(start+cfg.BatchSize, len(profiles))]
		g.Go(func() error {
			if err := w.Upsert(gctx, batch...); err != nil {
				return fmt.Errorf("batch at %d: %w", start, err)
			}
			mu.Lock()
			stats.ProfilesWritten += len(batch)
			stats.Batches++
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func saveProfiles(path string, profiles []model.Profile) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	raw, err := yaml.Marshal(struct {
		Profiles []model.Profile `yaml:"profiles"`
	}{profiles})
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}
	if err := os.WriteFile(path, raw, filePermission); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}
