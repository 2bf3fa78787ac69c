package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/scoutmatch/internal/domain/model"
)

// flakyStore fails every call while down is set.
type flakyStore struct {
	down  bool
	calls int
	delay time.Duration
}

func (f *flakyStore) Profile(ctx context.Context, id string) (model.Profile, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.Profile{}, ctx.Err()
		}
	}
	if f.down {
		return model.Profile{}, errors.New("connection refused")
	}
	if id == "missing" {
		return model.Profile{}, ErrNotFound
	}
	return model.Profile{ID: id, UserType: model.TypePlayer}, nil
}

func (f *flakyStore) Candidates(context.Context, model.StakeholderType, string) ([]model.Profile, error) {
	f.calls++
	if f.down {
		return nil, errors.New("connection refused")
	}
	return []model.Profile{{ID: "x", UserType: model.TypeClub}}, nil
}

func (f *flakyStore) ByType(context.Context, model.StakeholderType, int) ([]model.Profile, error) {
	f.calls++
	if f.down {
		return nil, errors.New("connection refused")
	}
	return nil, nil
}

func (f *flakyStore) Count(context.Context) int { return 7 }

func TestBreakerStore_PassThrough(t *testing.T) {
	ctx := context.Background()
	b := NewBreakerStore(&flakyStore{}, WithBreakerName("test-pass"))

	p, err := b.Profile(ctx, "p1")
	if err != nil || p.ID != "p1" {
		t.Fatalf("expected p1, got %+v, %v", p, err)
	}
	c, err := b.Candidates(ctx, model.TypeAll, "")
	if err != nil || len(c) != 1 {
		t.Fatalf("expected one candidate, got %+v, %v", c, err)
	}
	if n := b.Count(ctx); n != 7 {
		t.Errorf("expected count 7, got %d", n)
	}
}

func TestBreakerStore_NotFoundDoesNotTrip(t *testing.T) {
	ctx := context.Background()
	b := NewBreakerStore(&flakyStore{}, WithBreakerName("test-notfound"), WithFailureThreshold(2))

	for i := 0; i < 5; i++ {
		if _, err := b.Profile(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if b.State() != "closed" {
		t.Errorf("expected closed breaker, got %s", b.State())
	}
}

func TestBreakerStore_OpensAfterFailures(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{down: true}
	b := NewBreakerStore(inner,
		WithBreakerName("test-open"),
		WithFailureThreshold(3),
		WithOpenTimeout(time.Hour),
	)

	for i := 0; i < 3; i++ {
		if _, err := b.Candidates(ctx, model.TypeAll, ""); err == nil || errors.Is(err, ErrUnavailable) {
			t.Fatalf("call %d: expected underlying error, got %v", i, err)
		}
	}
	if b.State() != "open" {
		t.Fatalf("expected open breaker, got %s", b.State())
	}

	before := inner.calls
	_, err := b.Profile(ctx, "p1")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if inner.calls != before {
		t.Errorf("expected open breaker to skip the store")
	}
	if n := b.Count(ctx); n != 0 {
		t.Errorf("expected zero count while open, got %d", n)
	}
}

func TestBreakerStore_FetchTimeout(t *testing.T) {
	b := NewBreakerStore(&flakyStore{delay: time.Second},
		WithBreakerName("test-timeout"),
		WithFetchTimeout(10*time.Millisecond),
	)

	_, err := b.Profile(context.Background(), "p1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestBreakerStore_CallerCancellationDoesNotTrip(t *testing.T) {
	inner := &flakyStore{}
	b := NewBreakerStore(inner,
		WithBreakerName("test-canceled"),
		WithFailureThreshold(3),
		WithOpenTimeout(time.Hour),
	)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		if _, err := b.Profile(canceled, "p1"); !errors.Is(err, context.Canceled) {
			t.Fatalf("call %d: expected context.Canceled, got %v", i, err)
		}
	}
	if inner.calls != 0 {
		t.Errorf("expected a canceled caller to skip the store, got %d calls", inner.calls)
	}

	p, err := b.Profile(context.Background(), "p1")
	if err != nil || p.ID != "p1" {
		t.Fatalf("expected healthy caller to get p1, got %+v, %v", p, err)
	}
	if b.State() != "closed" {
		t.Errorf("expected closed breaker, got %s", b.State())
	}
}

func TestBreakerStore_CallerDeadlineMidFlightDoesNotTrip(t *testing.T) {
	inner := &flakyStore{delay: time.Second}
	b := NewBreakerStore(inner,
		WithBreakerName("test-caller-deadline"),
		WithFailureThreshold(2),
		WithFetchTimeout(5*time.Second),
		WithOpenTimeout(time.Hour),
	)

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		_, err := b.Profile(ctx, "p1")
		cancel()
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("call %d: expected deadline exceeded, got %v", i, err)
		}
		if errors.Is(err, ErrUnavailable) {
			t.Fatalf("call %d: breaker opened on caller deadline", i)
		}
	}
	if b.State() != "closed" {
		t.Errorf("expected closed breaker, got %s", b.State())
	}
}

func TestBreakerStore_FetchTimeoutTrips(t *testing.T) {
	b := NewBreakerStore(&flakyStore{delay: time.Second},
		WithBreakerName("test-timeout-trips"),
		WithFetchTimeout(5*time.Millisecond),
		WithFailureThreshold(2),
		WithOpenTimeout(time.Hour),
	)

	for i := 0; i < 2; i++ {
		_, _ = b.Profile(context.Background(), "p1")
	}
	if b.State() != "open" {
		t.Errorf("expected store timeouts to open the breaker, got %s", b.State())
	}
}
