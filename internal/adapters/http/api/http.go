// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/domain/matching"
	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/internal/domain/types"
	"github.com/okian/scoutmatch/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Rank(ctx context.Context, strategy matching.Strategy, q matching.Query) matching.Outcome
	GetRecommendations(ctx context.Context, userID string, t model.StakeholderType, limit int) []types.Recommendation
	PairScore(ctx context.Context, a, b, method string) (types.PairScore, error)
}

// DefaultMaxLimit bounds k and limit query parameters when no maximum is configured.
const DefaultMaxLimit = 50

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	matchesHandler         *MatchesHandler
	recommendationsHandler *RecommendationsHandler
	scoreHandler           *ScoreHandler
	log                    logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxLimit int
	log      logger.Logger
}

// WithMaxLimit caps the k and limit query parameters.
func WithMaxLimit(n int) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(l logger.Logger) ServerOption {
	return func(c *serverConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{maxLimit: DefaultMaxLimit, log: logger.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	v := newValidator()
	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(statsProvider),
		matchesHandler:         NewMatchesHandler(deps, v, cfg.maxLimit),
		recommendationsHandler: NewRecommendationsHandler(deps, v, cfg.maxLimit),
		scoreHandler:           NewScoreHandler(deps, v),
		log:                    cfg.log.Named("http"),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /matches/{userID}", s.wrap(s.matchesHandler.HandleGetMatches, "matches"))
	mux.HandleFunc("GET /recommendations/{userID}", s.wrap(s.recommendationsHandler.HandleGetRecommendations, "recommendations"))
	mux.HandleFunc("GET /score", s.wrap(s.scoreHandler.HandleGetScore, "score"))
}

func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(LoggingMiddleware(h, s.log, endpoint), endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return matching.IsNotFound(err)
}

func isUnavailable(err error) bool {
	return errors.Is(err, repository.ErrUnavailable) ||
		errors.Is(err, matching.ErrNoStore) ||
		errors.Is(err, context.DeadlineExceeded)
}
