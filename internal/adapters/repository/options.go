package repository

import (
	"time"

	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithProfiles preloads the store.
func WithProfiles(profiles ...model.Profile) Option {
	return func(s *MemoryStore) {
		s.seed = append(s.seed, profiles...)
	}
}

// BreakerOption configures a BreakerStore.
type BreakerOption func(*BreakerStore)

// WithBreakerName names the breaker in logs and metrics.
func WithBreakerName(name string) BreakerOption {
	return func(b *BreakerStore) {
		if name != "" {
			b.name = name
		}
	}
}

// WithFetchTimeout bounds every wrapped call.
func WithFetchTimeout(d time.Duration) BreakerOption {
	return func(b *BreakerStore) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithMaxRequests sets how many trial requests pass while half-open.
func WithMaxRequests(n uint32) BreakerOption {
	return func(b *BreakerStore) {
		if n > 0 {
			b.maxRequests = n
		}
	}
}

// WithInterval sets the closed-state counter reset period.
func WithInterval(d time.Duration) BreakerOption {
	return func(b *BreakerStore) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithOpenTimeout sets how long the breaker stays open.
func WithOpenTimeout(d time.Duration) BreakerOption {
	return func(b *BreakerStore) {
		if d > 0 {
			b.openTimeout = d
		}
	}
}

// WithFailureThreshold sets the consecutive failures that open the breaker.
func WithFailureThreshold(n uint32) BreakerOption {
	return func(b *BreakerStore) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithBreakerLogger sets the logger used for state changes.
func WithBreakerLogger(l logger.Logger) BreakerOption {
	return func(b *BreakerStore) {
		if l != nil {
			b.log = l
		}
	}
}
