package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/pkg/metrics"
)

// snapshot is an immutable view of the store. Readers never lock.
type snapshot struct {
	ordered []model.Profile
	index   map[string]int
}

// MemoryStore is an in-memory Store. Writers serialize on mu and publish a
// fresh snapshot; readers load the current snapshot atomically.
type MemoryStore struct {
	mu                    sync.Mutex
	byID                  map[string]int
	ordered               []model.Profile
	metricsUpdateInterval time.Duration
	seed                  []model.Profile

	snap atomic.Pointer[snapshot]

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a memory store and starts its metrics updater.
// The updater stops when ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		byID:                  make(map[string]int),
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.publish()

	if len(s.seed) > 0 {
		if err := s.Upsert(ctx, s.seed...); err != nil {
			return nil, err
		}
		s.seed = nil
	}

	s.startMetricsUpdater(ctx)
	return s, nil
}

// Upsert inserts or replaces profiles. New ids are appended to the store
// order; replaced ids keep their position.
func (s *MemoryStore) Upsert(_ context.Context, profiles ...model.Profile) error {
	for _, p := range profiles {
		if err := validate(p); err != nil {
			return fmt.Errorf("%w: id=%q type=%q", err, p.ID, p.UserType)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		if i, ok := s.byID[p.ID]; ok {
			s.ordered[i] = p
			continue
		}
		s.byID[p.ID] = len(s.ordered)
		s.ordered = append(s.ordered, p)
	}
	s.publish()
	return nil
}

// publish copies the write-side state into a new snapshot (mu held or
// construction time).
func (s *MemoryStore) publish() {
	ordered := make([]model.Profile, len(s.ordered))
	copy(ordered, s.ordered)
	index := make(map[string]int, len(s.byID))
	for id, i := range s.byID {
		index[id] = i
	}
	s.snap.Store(&snapshot{ordered: ordered, index: index})
}

// Profile implements Store.
func (s *MemoryStore) Profile(ctx context.Context, id string) (model.Profile, error) {
	start := time.Now()
	defer observe("profile", start)

	if err := ctx.Err(); err != nil {
		return model.Profile{}, err
	}
	snap := s.snap.Load()
	i, ok := snap.index[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snap.ordered[i], nil
}

// Candidates implements Store.
func (s *MemoryStore) Candidates(ctx context.Context, filter model.StakeholderType, excludeID string) ([]model.Profile, error) {
	start := time.Now()
	defer observe("candidates", start)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := s.snap.Load()
	out := make([]model.Profile, 0, len(snap.ordered))
	for _, p := range snap.ordered {
		if p.ID == excludeID || !filter.Matches(p.UserType) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ByType implements Store.
func (s *MemoryStore) ByType(ctx context.Context, t model.StakeholderType, limit int) ([]model.Profile, error) {
	start := time.Now()
	defer observe("by_type", start)

	if limit <= 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := s.snap.Load()
	out := make([]model.Profile, 0, min(limit, len(snap.ordered)))
	for _, p := range snap.ordered {
		if len(out) == limit {
			break
		}
		if t.Matches(p.UserType) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.snap.Load().ordered)
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	metrics.UpdateProfileCount(s.Count(ctx))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateProfileCount(s.Count(ctx))
			}
		}
	}()
}

func observe(op string, start time.Time) {
	metrics.RecordStoreQuery(op, float64(time.Since(start).Microseconds())/1000)
}

// seedFile is the on-disk layout read by LoadProfilesFile.
type seedFile struct {
	Profiles []model.Profile `yaml:"profiles"`
}

// LoadProfilesFile reads a YAML document with a top-level "profiles" list.
func LoadProfilesFile(path string) ([]model.Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles %s: %w", path, err)
	}
	return ParseProfiles(raw)
}

// ParseProfiles decodes a YAML profile document.
func ParseProfiles(raw []byte) ([]model.Profile, error) {
	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	for _, p := range doc.Profiles {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("%w: id=%q type=%q", err, p.ID, p.UserType)
		}
	}
	return doc.Profiles, nil
}
