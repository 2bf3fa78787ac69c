// Package matching ranks stakeholder profiles by feature-vector similarity.
//
// Ranking never fails from the caller's point of view: whenever the live
// pipeline cannot produce matches, the injected fallback provider supplies
// them and the Outcome records why.
package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/domain/fallback"
	"github.com/okian/scoutmatch/internal/domain/knn"
	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/internal/domain/similarity"
	"github.com/okian/scoutmatch/internal/domain/types"
	"github.com/okian/scoutmatch/internal/domain/vectorize"
	"github.com/okian/scoutmatch/pkg/logger"
	"github.com/okian/scoutmatch/pkg/metrics"
)

// Default ranking sizes.
const (
	defaultK     = 6
	defaultLimit = 6
)

// Strategy selects how candidates are ranked.
type Strategy string

// Ranking strategies.
const (
	// StrategyNeighbor runs KNN with cosine distance.
	StrategyNeighbor Strategy = "neighbor"
	// StrategyDirect sorts every candidate by cosine similarity.
	StrategyDirect Strategy = "direct"
)

// ParseStrategy converts user input into a Strategy. Empty input selects
// StrategyNeighbor.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyNeighbor:
		return StrategyNeighbor, nil
	case StrategyDirect:
		return StrategyDirect, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// FallbackReason records which branch produced an Outcome.
type FallbackReason string

// Fallback reasons.
const (
	ReasonNone               FallbackReason = "none"
	ReasonProfileUnavailable FallbackReason = "profile_unavailable"
	ReasonEmptyPool          FallbackReason = "empty_pool"
	ReasonNoMatches          FallbackReason = "no_matches"
	ReasonError              FallbackReason = "error"
	// ReasonCanceled means the caller went away; the result is empty and
	// no fallback is served.
	ReasonCanceled FallbackReason = "canceled"
)

// Query describes one ranking request. Count is k for StrategyNeighbor and
// the limit for StrategyDirect; zero selects the configured default.
type Query struct {
	UserID string
	Filter model.StakeholderType
	Count  int
}

// Outcome is the internal result of a ranking. Matches is never nil.
type Outcome struct {
	Matches []types.Match
	Reason  FallbackReason
	Err     error
}

// Fallback reports whether the matches came from the fallback provider.
func (o Outcome) Fallback() bool {
	return o.Reason != ReasonNone && o.Reason != ReasonCanceled
}

// Ranker ranks candidate profiles against a querying user.
type Ranker struct {
	store        repository.Store
	fallback     fallback.Provider
	vectorizer   *vectorize.Vectorizer
	log          logger.Logger
	defaultK     int
	defaultLimit int
}

// NewRanker creates a ranker. Without WithFallback it falls back to an empty
// list.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		fallback:     fallback.NewStatic(fallback.Dataset{}),
		vectorizer:   vectorize.New(),
		log:          logger.NewNop(),
		defaultK:     defaultK,
		defaultLimit: defaultLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindMatchesByNeighbor returns the k nearest candidates by cosine distance.
func (r *Ranker) FindMatchesByNeighbor(ctx context.Context, userID string, filter model.StakeholderType, k int) []types.Match {
	return r.Rank(ctx, StrategyNeighbor, Query{UserID: userID, Filter: filter, Count: k}).Matches
}

// FindMatchesByDirectSimilarity returns the top limit candidates by cosine
// similarity.
func (r *Ranker) FindMatchesByDirectSimilarity(ctx context.Context, userID string, filter model.StakeholderType, limit int) []types.Match {
	return r.Rank(ctx, StrategyDirect, Query{UserID: userID, Filter: filter, Count: limit}).Matches
}

// Rank runs the ranking pipeline for q and substitutes fallback matches when
// the pipeline cannot produce any.
func (r *Ranker) Rank(ctx context.Context, strategy Strategy, q Query) (out Outcome) {
	start := time.Now()
	if q.Count <= 0 {
		q.Count = r.defaultCount(strategy)
	}
	metrics.RecordRanking(string(strategy))
	defer func() {
		metrics.RecordRankingLatency(string(strategy), float64(time.Since(start).Microseconds())/1000)
	}()
	defer func() {
		if rec := recover(); rec != nil {
			out = r.substitute(ctx, strategy, q, ReasonError, fmt.Errorf("ranking panic: %v", rec))
		}
	}()

	if r.store == nil {
		return r.substitute(ctx, strategy, q, ReasonError, ErrNoStore)
	}

	me, err := r.store.Profile(ctx, q.UserID)
	if err != nil {
		if ctx.Err() != nil {
			return canceled(ctx)
		}
		return r.substitute(ctx, strategy, q, ReasonProfileUnavailable, err)
	}

	pool, err := r.store.Candidates(ctx, q.Filter, q.UserID)
	if err != nil {
		if ctx.Err() != nil {
			return canceled(ctx)
		}
		return r.substitute(ctx, strategy, q, ReasonError, err)
	}
	pool = excludeSelf(pool, me.ID)
	metrics.RecordCandidatePoolSize(len(pool))
	if len(pool) == 0 {
		return r.substitute(ctx, strategy, q, ReasonEmptyPool, nil)
	}

	var matches []types.Match
	switch strategy {
	case StrategyNeighbor:
		matches, err = r.byNeighbor(&me, pool, q.Count)
	case StrategyDirect:
		matches, err = r.byDirect(&me, pool, q.Count)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	if ctx.Err() != nil {
		return canceled(ctx)
	}
	if err != nil {
		return r.substitute(ctx, strategy, q, ReasonError, err)
	}
	if len(matches) == 0 {
		return r.substitute(ctx, strategy, q, ReasonNoMatches, nil)
	}
	return Outcome{Matches: matches, Reason: ReasonNone}
}

func (r *Ranker) defaultCount(strategy Strategy) int {
	if strategy == StrategyDirect {
		return r.defaultLimit
	}
	return r.defaultK
}

func (r *Ranker) byNeighbor(me *model.Profile, pool []model.Profile, k int) ([]types.Match, error) {
	query := r.vectorizer.Vector(me)
	points := make([]knn.Point, len(pool))
	byID := make(map[string]*model.Profile, len(pool))
	for i := range pool {
		v := r.vectorizer.Vector(&pool[i])
		points[i] = knn.Point{ID: pool[i].ID, Vector: v.Slice()}
		byID[pool[i].ID] = &pool[i]
	}

	neighbors, err := knn.Nearest(points, query.Slice(), k, similarity.CosineDistance)
	if err != nil {
		return nil, err
	}
	out := make([]types.Match, 0, len(neighbors))
	for _, n := range neighbors {
		p, ok := byID[n.ID]
		if !ok {
			continue
		}
		out = append(out, toMatch(p, types.ClampScore((1-n.Distance)*100)))
	}
	return out, nil
}

type scored struct {
	profile *model.Profile
	sim     float64
}

func (r *Ranker) byDirect(me *model.Profile, pool []model.Profile, limit int) ([]types.Match, error) {
	query := r.vectorizer.Vector(me)
	ranked := make([]scored, len(pool))
	for i := range pool {
		v := r.vectorizer.Vector(&pool[i])
		s, err := similarity.Cosine(query.Slice(), v.Slice())
		if err != nil {
			return nil, fmt.Errorf("similarity to %q: %w", pool[i].ID, err)
		}
		ranked[i] = scored{profile: &pool[i], sim: s}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].sim > ranked[j].sim })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]types.Match, len(ranked))
	for i, c := range ranked {
		out[i] = toMatch(c.profile, types.ClampScore(c.sim*100))
	}
	return out, nil
}

// substitute serves fallback matches and records why.
func (r *Ranker) substitute(ctx context.Context, strategy Strategy, q Query, reason FallbackReason, cause error) Outcome {
	fields := []logger.Field{
		logger.String("strategy", string(strategy)),
		logger.String("reason", string(reason)),
		logger.String("user_id", q.UserID),
		logger.String("filter", string(q.Filter)),
		logger.Int("count", q.Count),
	}
	if cause != nil {
		fields = append(fields, logger.Error(cause))
	}
	r.log.Warn(ctx, "serving fallback matches", fields...)
	metrics.RecordFallback(string(strategy), string(reason))

	matches := r.fallback.Matches(ctx, q.Filter, q.Count)
	if matches == nil {
		matches = []types.Match{}
	}
	return Outcome{Matches: matches, Reason: reason, Err: cause}
}

func canceled(ctx context.Context) Outcome {
	return Outcome{Matches: []types.Match{}, Reason: ReasonCanceled, Err: ctx.Err()}
}

func excludeSelf(pool []model.Profile, id string) []model.Profile {
	out := pool[:0:0]
	for _, p := range pool {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// toMatch maps a profile to its output record.
func toMatch(p *model.Profile, score int) types.Match {
	s := p.Summary()
	m := types.Match{
		ID:          p.ID,
		Name:        p.FullName,
		Type:        p.UserType,
		MatchScore:  score,
		Description: s.Description,
		AvatarURL:   p.AvatarURL,
		Location:    s.Location,
		Position:    s.Position,
	}
	if s.Specialization != "" {
		m.Skills = []string{s.Specialization}
	}
	return m
}

// PairScore scores two stored profiles against each other. Cosine
// similarity maps from [-1,1] onto [0,100]; euclidean distance scores
// 100 for identical vectors down to 0 at distance one or more.
func (r *Ranker) PairScore(ctx context.Context, aID, bID, method string) (types.PairScore, error) {
	if r.store == nil {
		return types.PairScore{}, ErrNoStore
	}
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		method = "cosine"
	}
	if method != "cosine" && method != "euclidean" {
		return types.PairScore{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	a, err := r.store.Profile(ctx, aID)
	if err != nil {
		return types.PairScore{}, err
	}
	b, err := r.store.Profile(ctx, bID)
	if err != nil {
		return types.PairScore{}, err
	}
	va, vb := r.vectorizer.Vector(&a), r.vectorizer.Vector(&b)

	var score int
	switch method {
	case "cosine":
		s, err := similarity.Cosine(va.Slice(), vb.Slice())
		if err != nil {
			return types.PairScore{}, err
		}
		score = types.ClampScore((s + 1) / 2 * 100)
	case "euclidean":
		d, err := similarity.Euclidean(va.Slice(), vb.Slice())
		if err != nil {
			return types.PairScore{}, err
		}
		score = types.ClampScore((1 - min(1, d)) * 100)
	}
	metrics.RecordPairScore(method)
	return types.PairScore{A: aID, B: bID, Method: method, Score: score}, nil
}

// IsNotFound reports whether err means a profile id is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
