package service

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/domain/fallback"
	"github.com/okian/scoutmatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStoreDriver selects the profile store backend: memory or postgres.
func WithStoreDriver(driver, databaseURL string) Option {
	return func(s *Service) {
		if driver != "" {
			s.driver = driver
		}
		s.databaseURL = databaseURL
	}
}

// WithStore injects a ready profile store, bypassing the driver.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.injected = st
		}
	}
}

// WithSeedFile preloads the memory store from a YAML profile file.
func WithSeedFile(path string) Option {
	return func(s *Service) {
		s.seedFile = path
	}
}

// WithFallbackFile replaces the embedded demo dataset.
func WithFallbackFile(path string) Option {
	return func(s *Service) {
		s.fallbackFile = path
	}
}

// WithFallbackProvider injects the fallback provider directly.
func WithFallbackProvider(p fallback.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.fallback = p
		}
	}
}

// WithDefaults sets the default neighbour count and page size.
func WithDefaults(k, limit int) Option {
	return func(s *Service) {
		if k > 0 {
			s.defaultK = k
		}
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// WithRecommendationSeed fixes the recommendation percentage sequence.
func WithRecommendationSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithStoreTimeout bounds every profile store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithBreaker configures the circuit breaker around the profile store.
func WithBreaker(maxRequests, failureThreshold int, interval, openTimeout time.Duration) Option {
	return func(s *Service) {
		if maxRequests > 0 {
			s.breakerMaxRequests = uint32(maxRequests) //nolint:gosec // bounded by config validation
		}
		if failureThreshold > 0 {
			s.breakerThreshold = uint32(failureThreshold) //nolint:gosec // bounded by config validation
		}
		if interval >= 0 {
			s.breakerInterval = interval
		}
		if openTimeout > 0 {
			s.breakerTimeout = openTimeout
		}
	}
}

// WithClock sets the clock used by the vectorizer.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}
