package api

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/okian/matchclock/internal/app"
	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/domain/match"
	"github.com/okian/matchclock/internal/domain/model"
)

// IdempotencyHeader carries the client request id for goals and cards.
const IdempotencyHeader = "Idempotency-Key"

// MatchDependencies is the live match surface.
type MatchDependencies interface {
	StartMatch(ctx context.Context, matchID int64) (service.ClockView, error)
	ScoreGoal(ctx context.Context, req service.GoalRequest) (service.GoalResult, error)
	IssueCard(ctx context.Context, req service.CardRequest) (service.CardResult, error)
	FinalizeMatch(ctx context.Context) (model.Match, error)
	Reconcile(ctx context.Context) (clock.Score, error)
	Roster(ctx context.Context, matchID int64) ([]model.RosterEntry, error)
}

// MatchHandler handles /match routes.
type MatchHandler struct {
	deps MatchDependencies
}

func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

type startMatchRequest struct {
	MatchID int64 `json:"match_id"`
}

type goalRequest struct {
	Side          string `json:"side"`
	ParticipantID int64  `json:"participant_id"`
}

type cardRequest struct {
	Kind          string `json:"kind"`
	ParticipantID int64  `json:"participant_id"`
}

type reconcileResponse struct {
	Score clock.Score `json:"score"`
}

// HandleStart handles POST /match/start.
func (h *MatchHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req startMatchRequest
	if err := decode(r, &req); err != nil || req.MatchID <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind("start match", ErrBadRequest, err))
		return
	}
	v, err := h.deps.StartMatch(r.Context(), req.MatchID)
	if err != nil {
		writeServiceError(w, "start match", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandlePostGoal handles POST /match/goals.
func (h *MatchHandler) HandlePostGoal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req goalRequest
	if err := decode(r, &req); err != nil || req.ParticipantID <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind("score goal", ErrBadRequest, err))
		return
	}
	side, err := clock.ParseSide(req.Side)
	if err != nil {
		writeServiceError(w, "score goal", err)
		return
	}
	res, err := h.deps.ScoreGoal(r.Context(), service.GoalRequest{
		Side:          side,
		ParticipantID: req.ParticipantID,
		RequestID:     r.Header.Get(IdempotencyHeader),
	})
	if err != nil {
		writeServiceError(w, "score goal", err)
		return
	}
	writeAccepted(w, res.Duplicate, res)
}

// HandlePostCard handles POST /match/cards.
func (h *MatchHandler) HandlePostCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req cardRequest
	if err := decode(r, &req); err != nil || req.ParticipantID <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind("issue card", ErrBadRequest, err))
		return
	}
	kind, err := match.ParseCardKind(req.Kind)
	if err != nil {
		writeServiceError(w, "issue card", err)
		return
	}
	res, err := h.deps.IssueCard(r.Context(), service.CardRequest{
		ParticipantID: req.ParticipantID,
		Kind:          kind,
		RequestID:     r.Header.Get(IdempotencyHeader),
	})
	if err != nil {
		writeServiceError(w, "issue card", err)
		return
	}
	writeAccepted(w, res.Duplicate, res)
}

// HandleFinalize handles POST /match/finalize.
func (h *MatchHandler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	m, err := h.deps.FinalizeMatch(r.Context())
	if err != nil {
		writeServiceError(w, "finalize match", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleReconcile handles POST /match/reconcile.
func (h *MatchHandler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	score, err := h.deps.Reconcile(r.Context())
	if err != nil {
		writeServiceError(w, "reconcile", err)
		return
	}
	writeJSON(w, http.StatusOK, reconcileResponse{Score: score})
}

// HandleRoster handles GET /match/roster?match_id=. Without match_id the
// active match is used.
func (h *MatchHandler) HandleRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	var id int64
	if s := r.URL.Query().Get("match_id"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind("roster", ErrBadRequest))
			return
		}
		id = n
	}
	roster, err := h.deps.Roster(r.Context(), id)
	if err != nil {
		writeServiceError(w, "roster", err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// writeAccepted answers 202 for new events and 200 for replays.
func writeAccepted(w http.ResponseWriter, duplicate bool, v any) {
	if duplicate {
		writeJSON(w, http.StatusOK, v)
		return
	}
	writeJSON(w, http.StatusAccepted, v)
}
