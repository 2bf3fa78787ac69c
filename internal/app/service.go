// Package service assembles the profile store, the fallback dataset and the
// matching core into the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/domain/fallback"
	"github.com/okian/scoutmatch/internal/domain/matching"
	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/internal/domain/recommend"
	"github.com/okian/scoutmatch/internal/domain/types"
	"github.com/okian/scoutmatch/internal/domain/vectorize"
	"github.com/okian/scoutmatch/pkg/logger"
	"github.com/okian/scoutmatch/pkg/metrics"
)

// Store drivers understood by Start.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by Start for an unsupported store driver.
var ErrUnknownDriver = errors.New("unknown store driver")

// Service implements the API dependencies for the matching system.
type Service struct {
	mu sync.RWMutex

	// Core components
	base        repository.Store
	store       *repository.BreakerStore
	fallback    fallback.Provider
	ranker      *matching.Ranker
	recommender *recommend.Recommender

	// Configuration
	driver             string
	databaseURL        string
	injected           repository.Store
	seedFile           string
	fallbackFile       string
	defaultK           int
	defaultLimit       int
	seed               int64
	storeTimeout       time.Duration
	breakerMaxRequests uint32
	breakerThreshold   uint32
	breakerInterval    time.Duration
	breakerTimeout     time.Duration
	clock              clockwork.Clock

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration. Until Start is
// called every ranking is served from the fallback dataset.
func New(opts ...Option) *Service {
	s := &Service{
		driver:             DriverMemory,
		defaultK:           6,
		defaultLimit:       5,
		storeTimeout:       2 * time.Second,
		breakerMaxRequests: 1,
		breakerThreshold:   5,
		breakerInterval:    time.Minute,
		breakerTimeout:     30 * time.Second,
		clock:              clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	if s.fallback == nil {
		demo, err := fallback.Default()
		if err != nil {
			demo = fallback.NewStatic(fallback.Dataset{})
		}
		s.fallback = demo
	}
	s.ranker = matching.NewRanker(
		matching.WithFallback(s.fallback),
		matching.WithLogger(s.logger.Named("matching")),
	)
	s.recommender = recommend.New(
		recommend.WithFallback(s.fallback),
		recommend.WithLogger(s.logger.Named("recommend")),
		recommend.WithSeed(s.seed),
	)
	return s
}

// Start opens the profile store and wires the matching core.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting matching service...", logger.String("driver", s.driver))

	if s.fallbackFile != "" {
		fb, err := fallback.LoadFile(s.fallbackFile)
		if err != nil {
			return err
		}
		s.fallback = fb
	}

	base, err := s.openStore(ctx)
	if err != nil {
		return err
	}
	s.base = base
	s.store = repository.NewBreakerStore(base,
		repository.WithBreakerName("profile-store"),
		repository.WithFetchTimeout(s.storeTimeout),
		repository.WithMaxRequests(s.breakerMaxRequests),
		repository.WithFailureThreshold(s.breakerThreshold),
		repository.WithInterval(s.breakerInterval),
		repository.WithOpenTimeout(s.breakerTimeout),
		repository.WithBreakerLogger(s.logger.Named("breaker")),
	)

	vec := vectorize.New(vectorize.WithClock(s.clock))
	s.ranker = matching.NewRanker(
		matching.WithStore(s.store),
		matching.WithFallback(s.fallback),
		matching.WithVectorizer(vec),
		matching.WithLogger(s.logger.Named("matching")),
		matching.WithDefaultK(s.defaultK),
		matching.WithDefaultLimit(s.defaultLimit),
	)
	s.recommender = recommend.New(
		recommend.WithStore(s.store),
		recommend.WithFallback(s.fallback),
		recommend.WithLogger(s.logger.Named("recommend")),
		recommend.WithSeed(s.seed),
		recommend.WithDefaultLimit(s.defaultLimit),
	)

	s.started = true
	profiles := s.store.Count(ctx)
	metrics.UpdateProfileCount(profiles)
	s.logger.Info(ctx, "matching service started",
		logger.String("driver", s.driver),
		logger.Int("profiles", profiles),
		logger.Int("defaultK", s.defaultK),
		logger.Int("defaultLimit", s.defaultLimit),
		logger.Duration("storeTimeout", s.storeTimeout),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	if s.injected != nil {
		return s.injected, nil
	}
	switch s.driver {
	case DriverMemory:
		var seed []model.Profile
		if s.seedFile != "" {
			profiles, err := repository.LoadProfilesFile(s.seedFile)
			if err != nil {
				return nil, err
			}
			seed = profiles
		}
		return repository.NewMemoryStore(ctx, repository.WithProfiles(seed...))
	case DriverPostgres:
		pg, err := repository.NewPostgresStore(ctx, s.databaseURL)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, s.driver)
	}
}

// Stop releases the profile store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping matching service...")

	if s.base != nil && s.base != s.injected {
		if closer, ok := s.base.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				s.logger.Warn(context.Background(), "closing profile store failed", logger.Error(err))
			}
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "matching service stopped")
}

func (s *Service) core() (*matching.Ranker, *recommend.Recommender) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ranker, s.recommender
}

// FindMatchesByNeighbor returns the k nearest profiles to userID.
func (s *Service) FindMatchesByNeighbor(ctx context.Context, userID string, filter model.StakeholderType, k int) []types.Match {
	r, _ := s.core()
	return r.FindMatchesByNeighbor(ctx, userID, filter, k)
}

// FindMatchesByDirectSimilarity returns the limit most similar profiles.
func (s *Service) FindMatchesByDirectSimilarity(ctx context.Context, userID string, filter model.StakeholderType, limit int) []types.Match {
	r, _ := s.core()
	return r.FindMatchesByDirectSimilarity(ctx, userID, filter, limit)
}

// Rank runs a ranking and reports whether the fallback was used.
func (s *Service) Rank(ctx context.Context, strategy matching.Strategy, q matching.Query) matching.Outcome {
	r, _ := s.core()
	return r.Rank(ctx, strategy, q)
}

// GetRecommendations returns the recommendations page for userID.
func (s *Service) GetRecommendations(ctx context.Context, userID string, t model.StakeholderType, limit int) []types.Recommendation {
	_, rec := s.core()
	return rec.GetRecommendations(ctx, userID, t, limit)
}

// PairScore scores two stored profiles against each other.
func (s *Service) PairScore(ctx context.Context, a, b, method string) (types.PairScore, error) {
	r, _ := s.core()
	return r.PairScore(ctx, a, b, method)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"storeDriver":  s.driver,
		"defaultK":     s.defaultK,
		"defaultLimit": s.defaultLimit,
	}
	if static, ok := s.fallback.(*fallback.Static); ok {
		m, st := static.Size()
		stats["fallbackMatches"] = m
		stats["fallbackStakeholders"] = st
	}

	if s.started {
		profiles := s.store.Count(context.Background())
		stats["profiles"] = profiles
		stats["breakerState"] = s.store.State()
		metrics.UpdateProfileCount(profiles)
	}
	return stats
}
