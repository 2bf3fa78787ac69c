package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/internal/domain/types"
)

// RecommendationDependencies defines the interface for recommendation operations.
type RecommendationDependencies interface {
	GetRecommendations(ctx context.Context, userID string, t model.StakeholderType, limit int) []types.Recommendation
}

// RecommendationsHandler handles recommendation requests.
type RecommendationsHandler struct {
	deps     RecommendationDependencies
	validate *validator.Validate
	maxLimit int
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationDependencies, v *validator.Validate, maxLimit int) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps, validate: v, maxLimit: maxLimit}
}

type recommendationsQuery struct {
	UserID string `query:"userID" validate:"required,max=128"`
	Type   string `query:"type" validate:"omitempty,oneof=all player coach club agent sponsor equipment_supplier"`
	Limit  int    `query:"limit" validate:"gte=0"`
}

type recommendationsResponse struct {
	UserID          string                 `json:"userId"`
	Type            model.StakeholderType  `json:"type"`
	Recommendations []types.Recommendation `json:"recommendations"`
}

// HandleGetRecommendations handles GET /recommendations/{userID} requests.
// Type "all" or an empty type fans out across stakeholder types.
func (h *RecommendationsHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	req := recommendationsQuery{
		UserID: strings.TrimSpace(r.PathValue("userID")),
		Type:   strings.ToLower(strings.TrimSpace(q.Get("type"))),
		Limit:  limit,
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", validationError(err))
		return
	}
	if req.Limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: limit > %d", ErrLimitExceeded, h.maxLimit))
		return
	}
	t, err := model.ParseStakeholderType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	recs := h.deps.GetRecommendations(r.Context(), req.UserID, t, req.Limit)
	if recs == nil {
		recs = []types.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{UserID: req.UserID, Type: t, Recommendations: recs})
}
