// Package recommend builds the recommendations page. Percentages here are
// drawn at random and carry no similarity meaning; ranked matching lives in
// package matching.
package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/domain/fallback"
	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/internal/domain/types"
	"github.com/okian/scoutmatch/pkg/logger"
	"github.com/okian/scoutmatch/pkg/metrics"
)

// Percentage bounds, inclusive.
const (
	MinPercentage = 70
	MaxPercentage = 99

	defaultLimit  = 5
	noLocation    = "N/A"
	metricsSource = "recommend"
)

// crossTypes are the types merged by AcrossTypes.
var crossTypes = []model.StakeholderType{
	model.TypePlayer, model.TypeClub, model.TypeCoach, model.TypeAgent,
}

// Recommender serves recommendation lists.
type Recommender struct {
	store        repository.Store
	fallback     fallback.Provider
	log          logger.Logger
	seed         int64
	defaultLimit int

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Recommender.
func New(opts ...Option) *Recommender {
	r := &Recommender{
		fallback:     fallback.NewStatic(fallback.Dataset{}),
		log:          logger.NewNop(),
		seed:         time.Now().UnixNano(),
		defaultLimit: defaultLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.rng = rand.New(rand.NewSource(r.seed)) //nolint:gosec // display-only percentages
	return r
}

// GetRecommendations returns up to limit stakeholders of type t for userID,
// best percentage first. A filter-all type merges the cross-type lists.
func (r *Recommender) GetRecommendations(ctx context.Context, userID string, t model.StakeholderType, limit int) []types.Recommendation {
	if limit <= 0 {
		limit = r.defaultLimit
	}
	if t.IsFilterAll() {
		return r.AcrossTypes(ctx, userID, limit)
	}
	out := r.byType(ctx, userID, t, limit)
	metrics.RecordRecommendations(string(t), len(out))
	return out
}

// AcrossTypes fetches players, clubs, coaches and agents concurrently and
// merges them into one list of at most limit entries.
func (r *Recommender) AcrossTypes(ctx context.Context, userID string, limit int) []types.Recommendation {
	if limit <= 0 {
		limit = r.defaultLimit
	}
	lists := make([][]types.Recommendation, len(crossTypes))
	// byType never fails; it falls back per type, so the group only joins.
	var g errgroup.Group
	for i, t := range crossTypes {
		g.Go(func() error {
			lists[i] = r.byType(ctx, userID, t, limit)
			return nil
		})
	}
	_ = g.Wait()

	merged := make([]types.Recommendation, 0, limit*len(crossTypes))
	for _, l := range lists {
		merged = append(merged, l...)
	}
	sortByPercentage(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	metrics.RecordRecommendations(string(model.TypeAll), len(merged))
	return merged
}

func (r *Recommender) byType(ctx context.Context, userID string, t model.StakeholderType, limit int) (out []types.Recommendation) {
	defer func() {
		if rec := recover(); rec != nil {
			out = r.fromFallback(ctx, userID, t, limit, "error", fmt.Errorf("recommendation panic: %v", rec))
		}
	}()

	if r.store == nil {
		return r.fromFallback(ctx, userID, t, limit, "error", repository.ErrUnavailable)
	}
	// One extra row so excluding the user still fills the page.
	page, err := r.store.ByType(ctx, t, limit+1)
	if ctx.Err() != nil {
		return []types.Recommendation{}
	}
	if err != nil {
		return r.fromFallback(ctx, userID, t, limit, "error", err)
	}
	page = exclude(page, userID)
	if len(page) == 0 {
		return r.fromFallback(ctx, userID, t, limit, "empty_pool", nil)
	}
	return r.build(page, limit)
}

func (r *Recommender) fromFallback(ctx context.Context, userID string, t model.StakeholderType, limit int, reason string, cause error) []types.Recommendation {
	fields := []logger.Field{
		logger.String("type", string(t)),
		logger.String("reason", reason),
		logger.String("user_id", userID),
		logger.Int("limit", limit),
	}
	if cause != nil {
		fields = append(fields, logger.Error(cause))
	}
	r.log.Warn(ctx, "serving fallback recommendations", fields...)
	metrics.RecordFallback(metricsSource, reason)

	return r.build(exclude(r.fallback.Stakeholders(ctx, t, limit+1), userID), limit)
}

// build converts profiles into recommendations sorted by percentage.
func (r *Recommender) build(profiles []model.Profile, limit int) []types.Recommendation {
	out := make([]types.Recommendation, 0, len(profiles))
	for i := range profiles {
		out = append(out, toRecommendation(&profiles[i], r.percentage()))
	}
	sortByPercentage(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// percentage draws uniformly from [MinPercentage, MaxPercentage].
func (r *Recommender) percentage() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return MinPercentage + r.rng.Intn(MaxPercentage-MinPercentage+1)
}

func toRecommendation(p *model.Profile, pct int) types.Recommendation {
	s := p.Summary()
	loc := s.Location
	if loc == "" {
		loc = noLocation
	}
	return types.Recommendation{
		ID:              p.ID,
		Name:            p.FullName,
		Type:            p.UserType,
		Avatar:          p.AvatarURL,
		MatchPercentage: pct,
		Location:        loc,
		Description:     s.Description,
		Tags:            Tags(p),
	}
}

// Tags derives display tags from the details record matching the profile
// type. Empty values are skipped.
func Tags(p *model.Profile) []string {
	var tags []string
	switch p.UserType {
	case model.TypePlayer:
		if d := p.Player; d != nil {
			tags = nonEmpty(d.Position, d.Club)
		}
	case model.TypeCoach:
		if d := p.Coach; d != nil {
			tags = nonEmpty(d.Specialization, d.CurrentClub)
		}
	case model.TypeClub:
		if d := p.Club; d != nil {
			tags = nonEmpty(d.League)
		}
	case model.TypeAgent:
		if d := p.Agent; d != nil {
			tags = append(nonEmpty(d.Agency), model.SplitList(d.Specialization)...)
		}
	case model.TypeSponsor:
		if d := p.Sponsor; d != nil {
			tags = model.SplitList(d.SponsorshipFocus)
		}
	case model.TypeEquipmentSupplier:
		if d := p.EquipmentSupplier; d != nil {
			tags = model.SplitList(d.Products)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func exclude(profiles []model.Profile, id string) []model.Profile {
	out := make([]model.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func sortByPercentage(recs []types.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchPercentage > recs[j].MatchPercentage
	})
}
