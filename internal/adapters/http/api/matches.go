package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/scoutmatch/internal/domain/matching"
	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/internal/domain/types"
)

// RankDependencies defines the interface for match ranking.
type RankDependencies interface {
	Rank(ctx context.Context, strategy matching.Strategy, q matching.Query) matching.Outcome
}

// MatchesHandler handles match requests.
type MatchesHandler struct {
	deps     RankDependencies
	validate *validator.Validate
	maxLimit int
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps RankDependencies, v *validator.Validate, maxLimit int) *MatchesHandler {
	return &MatchesHandler{deps: deps, validate: v, maxLimit: maxLimit}
}

type matchesQuery struct {
	UserID   string `query:"userID" validate:"required,max=128"`
	Type     string `query:"type" validate:"omitempty,oneof=all player coach club agent sponsor equipment_supplier"`
	K        int    `query:"k" validate:"gte=0"`
	Strategy string `query:"strategy" validate:"omitempty,oneof=neighbor direct"`
}

type matchesResponse struct {
	UserID   string                  `json:"userId"`
	Strategy matching.Strategy       `json:"strategy"`
	Fallback bool                    `json:"fallback"`
	Reason   matching.FallbackReason `json:"reason"`
	Matches  []types.Match           `json:"matches"`
}

// HandleGetMatches handles GET /matches/{userID} requests.
func (h *MatchesHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	k, err := queryInt(q, "k")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	req := matchesQuery{
		UserID:   strings.TrimSpace(r.PathValue("userID")),
		Type:     strings.ToLower(strings.TrimSpace(q.Get("type"))),
		K:        k,
		Strategy: strings.ToLower(strings.TrimSpace(q.Get("strategy"))),
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", validationError(err))
		return
	}
	if req.K > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: k > %d", ErrLimitExceeded, h.maxLimit))
		return
	}

	filter, err := model.ParseStakeholderType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	strategy, err := matching.ParseStrategy(req.Strategy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	out := h.deps.Rank(r.Context(), strategy, matching.Query{UserID: req.UserID, Filter: filter, Count: req.K})
	writeJSON(w, http.StatusOK, matchesResponse{
		UserID:   req.UserID,
		Strategy: strategy,
		Fallback: out.Fallback(),
		Reason:   out.Reason,
		Matches:  out.Matches,
	})
}
