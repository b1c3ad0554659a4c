// Package api exposes the match clock over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	service "github.com/okian/matchclock/internal/app"
	"github.com/okian/matchclock/internal/adapters/loop"
	"github.com/okian/matchclock/internal/adapters/repository"
	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/domain/match"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	ClockDependencies
	MatchDependencies
	ScorerDependencies
	NotificationDependencies
	StatsProvider
}

// Server wires HTTP routes for the match clock API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	clockHandler         *ClockHandler
	matchHandler         *MatchHandler
	scorersHandler       *ScorersHandler
	notificationsHandler *NotificationsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(deps),
		clockHandler:         NewClockHandler(deps),
		matchHandler:         NewMatchHandler(deps),
		scorersHandler:       NewScorersHandler(deps),
		notificationsHandler: NewNotificationsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/clock", MetricsMiddleware(s.clockHandler.HandleGetClock, "clock"))
	mux.HandleFunc("/clock/mode", MetricsMiddleware(s.clockHandler.HandleSetMode, "clock_mode"))
	mux.HandleFunc("/clock/start", MetricsMiddleware(s.clockHandler.HandleStart, "clock_start"))
	mux.HandleFunc("/clock/pause", MetricsMiddleware(s.clockHandler.HandlePause, "clock_pause"))
	mux.HandleFunc("/clock/reset", MetricsMiddleware(s.clockHandler.HandleReset, "clock_reset"))
	mux.HandleFunc("/clock/duration", MetricsMiddleware(s.clockHandler.HandleSetDuration, "clock_duration"))
	mux.HandleFunc("/clock/alarm", MetricsMiddleware(s.clockHandler.HandleAlarm, "clock_alarm"))
	mux.HandleFunc("/clock/format", MetricsMiddleware(s.clockHandler.HandleSetFormat, "clock_format"))

	mux.HandleFunc("/match/start", MetricsMiddleware(s.matchHandler.HandleStart, "match_start"))
	mux.HandleFunc("/match/goals", MetricsMiddleware(s.matchHandler.HandlePostGoal, "match_goals"))
	mux.HandleFunc("/match/cards", MetricsMiddleware(s.matchHandler.HandlePostCard, "match_cards"))
	mux.HandleFunc("/match/finalize", MetricsMiddleware(s.matchHandler.HandleFinalize, "match_finalize"))
	mux.HandleFunc("/match/reconcile", MetricsMiddleware(s.matchHandler.HandleReconcile, "match_reconcile"))
	mux.HandleFunc("/match/roster", MetricsMiddleware(s.matchHandler.HandleRoster, "match_roster"))

	mux.HandleFunc("/notifications", MetricsMiddleware(s.notificationsHandler.HandleGetNotifications, "notifications"))
	mux.HandleFunc("/scorers", MetricsMiddleware(s.scorersHandler.HandleGetScorers, "scorers"))
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

// statusOf maps an error from the service layer to an HTTP status and code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, match.ErrUnknownCard),
		errors.Is(err, clock.ErrUnknownSide),
		errors.Is(err, clock.ErrUnknownMode),
		errors.Is(err, clock.ErrInvalidTimeOfDay),
		errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrMatchFinalized):
		return http.StatusConflict, "match_finalized"
	case errors.Is(err, service.ErrMatchInProgress):
		return http.StatusConflict, "match_in_progress"
	case errors.Is(err, service.ErrNoActiveMatch):
		return http.StatusConflict, "no_active_match"
	case errors.Is(err, clock.ErrWrongMode):
		return http.StatusConflict, "wrong_mode"
	case errors.Is(err, repository.ErrParticipantNotInMatch),
		errors.Is(err, service.ErrSideMismatch):
		return http.StatusUnprocessableEntity, "invalid_participant"
	case errors.Is(err, service.ErrBackpressure), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, loop.ErrStopped):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	status, code := statusOf(err)
	writeError(w, status, code, Wrap(op, err))
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// limitParam parses ?limit=, falling back to def when absent.
func limitParam(r *http.Request, def int) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	return n, nil
}
