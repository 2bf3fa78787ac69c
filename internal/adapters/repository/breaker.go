package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/pkg/logger"
	"github.com/okian/scoutmatch/pkg/metrics"
)

// BreakerStore guards a Store with a circuit breaker and a per-call timeout.
// Unknown ids are answers, not failures, so ErrNotFound never trips it.
// While open every call fails fast with ErrUnavailable.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[any]
	log  logger.Logger

	name             string
	timeout          time.Duration
	maxRequests      uint32
	interval         time.Duration
	openTimeout      time.Duration
	failureThreshold uint32
}

// NewBreakerStore wraps next.
func NewBreakerStore(next Store, opts ...BreakerOption) *BreakerStore {
	b := &BreakerStore{
		next:             next,
		log:              logger.NewNop(),
		name:             "profile-store",
		timeout:          2 * time.Second,
		maxRequests:      1,
		interval:         time.Minute,
		openTimeout:      30 * time.Second,
		failureThreshold: 5,
	}
	for _, opt := range opts {
		opt(b)
	}

	_ = metrics.UpdateBreakerState(b.name, gobreaker.StateClosed.String())

	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        b.name,
		MaxRequests: b.maxRequests,
		Interval:    b.interval,
		Timeout:     b.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= b.failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.Warn(context.Background(), "profile store breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
			_ = metrics.UpdateBreakerState(name, to.String())
		},
		IsSuccessful: func(err error) bool {
			var gone callerGone
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidLimit) || errors.As(err, &gone)
		},
	})
	return b
}

// State reports the breaker state name.
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}

// callerGone marks a failure caused by the caller's own context ending. It
// says nothing about store health and is not counted against the breaker.
type callerGone struct{ err error }

func (c callerGone) Error() string { return c.err.Error() }
func (c callerGone) Unwrap() error { return c.err }

// run executes fn through the breaker with the fetch timeout applied.
func run[T any](ctx context.Context, b *BreakerStore, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	res, err := b.cb.Execute(func() (any, error) {
		cctx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()
		v, err := fn(cctx)
		if err != nil && ctx.Err() != nil {
			return v, callerGone{err: err}
		}
		return v, err
	})
	var gone callerGone
	if errors.As(err, &gone) {
		return zero, gone.err
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordStoreError(op)
			return zero, fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
		}
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", op, res)
	}
	return typed, nil
}

// Profile implements Store.
func (b *BreakerStore) Profile(ctx context.Context, id string) (model.Profile, error) {
	return run(ctx, b, "profile", func(ctx context.Context) (model.Profile, error) {
		return b.next.Profile(ctx, id)
	})
}

// Candidates implements Store.
func (b *BreakerStore) Candidates(ctx context.Context, filter model.StakeholderType, excludeID string) ([]model.Profile, error) {
	return run(ctx, b, "candidates", func(ctx context.Context) ([]model.Profile, error) {
		return b.next.Candidates(ctx, filter, excludeID)
	})
}

// ByType implements Store.
func (b *BreakerStore) ByType(ctx context.Context, t model.StakeholderType, limit int) ([]model.Profile, error) {
	return run(ctx, b, "by_type", func(ctx context.Context) ([]model.Profile, error) {
		return b.next.ByType(ctx, t, limit)
	})
}

// Count implements Store. An open breaker counts as zero.
func (b *BreakerStore) Count(ctx context.Context) int {
	n, err := run(ctx, b, "count", func(ctx context.Context) (int, error) {
		return b.next.Count(ctx), nil
	})
	if err != nil {
		return 0
	}
	return n
}
