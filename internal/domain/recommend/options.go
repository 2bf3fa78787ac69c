package recommend

import (
	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/domain/fallback"
	"github.com/okian/scoutmatch/pkg/logger"
)

// Option applies a configuration option to the Recommender.
type Option func(*Recommender)

// WithStore sets the profile store.
func WithStore(s repository.Store) Option {
	return func(r *Recommender) {
		if s != nil {
			r.store = s
		}
	}
}

// WithFallback sets the provider used when the store has nothing to offer.
func WithFallback(p fallback.Provider) Option {
	return func(r *Recommender) {
		if p != nil {
			r.fallback = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Recommender) {
		if l != nil {
			r.log = l
		}
	}
}

// WithSeed makes the percentage sequence reproducible. Zero keeps the
// time-based seed.
func WithSeed(seed int64) Option {
	return func(r *Recommender) {
		if seed != 0 {
			r.seed = seed
		}
	}
}

// WithDefaultLimit sets the page size used when a request asks for none.
func WithDefaultLimit(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.defaultLimit = n
		}
	}
}
