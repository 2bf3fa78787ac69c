package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/scoutmatch/internal/domain/matching"
	"github.com/okian/scoutmatch/internal/domain/types"
)

// ScoreDependencies defines the interface for pairwise scoring.
type ScoreDependencies interface {
	PairScore(ctx context.Context, a, b, method string) (types.PairScore, error)
}

// ScoreHandler handles pairwise score requests.
type ScoreHandler struct {
	deps     ScoreDependencies
	validate *validator.Validate
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies, v *validator.Validate) *ScoreHandler {
	return &ScoreHandler{deps: deps, validate: v}
}

type scoreQuery struct {
	A      string `query:"a" validate:"required,max=128"`
	B      string `query:"b" validate:"required,max=128"`
	Method string `query:"method" validate:"omitempty,oneof=cosine euclidean"`
}

// HandleGetScore handles GET /score?a=&b=&method= requests.
func (h *ScoreHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := scoreQuery{
		A:      strings.TrimSpace(q.Get("a")),
		B:      strings.TrimSpace(q.Get("b")),
		Method: strings.ToLower(strings.TrimSpace(q.Get("method"))),
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", validationError(err))
		return
	}

	score, err := h.deps.PairScore(r.Context(), req.A, req.B, req.Method)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, score)
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, matching.ErrUnknownMethod):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case isUnavailable(err):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
