package matching

import (
	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/domain/fallback"
	"github.com/okian/scoutmatch/internal/domain/vectorize"
	"github.com/okian/scoutmatch/pkg/logger"
)

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithStore sets the profile store.
func WithStore(s repository.Store) Option {
	return func(r *Ranker) {
		if s != nil {
			r.store = s
		}
	}
}

// WithFallback sets the provider used when ranking cannot produce results.
func WithFallback(p fallback.Provider) Option {
	return func(r *Ranker) {
		if p != nil {
			r.fallback = p
		}
	}
}

// WithVectorizer sets the profile vectorizer.
func WithVectorizer(v *vectorize.Vectorizer) Option {
	return func(r *Ranker) {
		if v != nil {
			r.vectorizer = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.log = l
		}
	}
}

// WithDefaultK sets the neighbour count used when a query asks for none.
func WithDefaultK(k int) Option {
	return func(r *Ranker) {
		if k > 0 {
			r.defaultK = k
		}
	}
}

// WithDefaultLimit sets the direct ranking size used when a query asks for none.
func WithDefaultLimit(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.defaultLimit = n
		}
	}
}
