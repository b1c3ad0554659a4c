package api

import (
	"context"
	"net/http"

	"github.com/okian/matchclock/internal/domain/model"
)

const defaultScorersLimit = 10

// ScorerDependencies serves the top scorers table.
type ScorerDependencies interface {
	TopScorers(ctx context.Context, n int) ([]model.ScorerEntry, error)
}

// ScorersHandler handles GET /scorers.
type ScorersHandler struct {
	deps ScorerDependencies
}

func NewScorersHandler(deps ScorerDependencies) *ScorersHandler {
	return &ScorersHandler{deps: deps}
}

type scorersResponse struct {
	Items []model.ScorerEntry `json:"items"`
}

// HandleGetScorers handles GET /scorers?limit=n.
func (h *ScorersHandler) HandleGetScorers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := limitParam(r, defaultScorersLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind("top scorers", ErrBadRequest, err))
		return
	}
	items, err := h.deps.TopScorers(r.Context(), n)
	if err != nil {
		writeServiceError(w, "top scorers", err)
		return
	}
	if items == nil {
		items = []model.ScorerEntry{}
	}
	writeJSON(w, http.StatusOK, scorersResponse{Items: items})
}
