package api

import (
	"context"
	"fmt"
	"net/http"

	service "github.com/okian/matchclock/internal/app"
	"github.com/okian/matchclock/internal/domain/clock"
)

// ClockDependencies is the clock command surface.
type ClockDependencies interface {
	Snapshot(ctx context.Context) (service.ClockView, error)
	SetMode(ctx context.Context, m clock.Mode) (service.CommandResult, error)
	StartClock(ctx context.Context) (service.CommandResult, error)
	PauseClock(ctx context.Context) (service.CommandResult, error)
	ResetClock(ctx context.Context) (service.CommandResult, error)
	SetDuration(ctx context.Context, minutes int) (service.CommandResult, error)
	SetAlarm(ctx context.Context, at clock.TimeOfDay, message string) (service.CommandResult, error)
	ClearAlarm(ctx context.Context) (service.CommandResult, error)
	SetFormat24h(ctx context.Context, on bool) (service.CommandResult, error)
}

// ClockHandler handles /clock routes.
type ClockHandler struct {
	deps ClockDependencies
}

func NewClockHandler(deps ClockDependencies) *ClockHandler {
	return &ClockHandler{deps: deps}
}

type modeRequest struct {
	Mode *clock.Mode `json:"mode"`
}

type durationRequest struct {
	Minutes *int `json:"minutes"`
}

type alarmRequest struct {
	At      *clock.TimeOfDay `json:"at"`
	Message string           `json:"message"`
}

type formatRequest struct {
	Format24h *bool `json:"format_24h"`
}

// HandleGetClock handles GET /clock.
func (h *ClockHandler) HandleGetClock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	v, err := h.deps.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, "get clock", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleSetMode handles POST /clock/mode.
func (h *ClockHandler) HandleSetMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req modeRequest
	if err := decode(r, &req); err != nil || req.Mode == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind("set mode", ErrBadRequest, err))
		return
	}
	res, err := h.deps.SetMode(r.Context(), *req.Mode)
	writeCommand(w, "set mode", res, err)
}

// HandleStart handles POST /clock/start.
func (h *ClockHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	res, err := h.deps.StartClock(r.Context())
	writeCommand(w, "start clock", res, err)
}

// HandlePause handles POST /clock/pause.
func (h *ClockHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	res, err := h.deps.PauseClock(r.Context())
	writeCommand(w, "pause clock", res, err)
}

// HandleReset handles POST /clock/reset.
func (h *ClockHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	res, err := h.deps.ResetClock(r.Context())
	writeCommand(w, "reset clock", res, err)
}

// HandleSetDuration handles POST /clock/duration.
func (h *ClockHandler) HandleSetDuration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req durationRequest
	if err := decode(r, &req); err != nil || req.Minutes == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind("set duration", ErrBadRequest, err))
		return
	}
	if *req.Minutes < 0 || *req.Minutes > clock.MaxDurationMinutes {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind("set duration", ErrBadRequest, fmt.Errorf("minutes must be between 0 and %d", clock.MaxDurationMinutes)))
		return
	}
	res, err := h.deps.SetDuration(r.Context(), *req.Minutes)
	writeCommand(w, "set duration", res, err)
}

// HandleAlarm handles POST /clock/alarm and DELETE /clock/alarm.
func (h *ClockHandler) HandleAlarm(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req alarmRequest
		if err := decode(r, &req); err != nil || req.At == nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind("set alarm", ErrBadRequest, err))
			return
		}
		res, err := h.deps.SetAlarm(r.Context(), *req.At, req.Message)
		writeCommand(w, "set alarm", res, err)
	case http.MethodDelete:
		res, err := h.deps.ClearAlarm(r.Context())
		writeCommand(w, "clear alarm", res, err)
	default:
		http.NotFound(w, r)
	}
}

// HandleSetFormat handles POST /clock/format.
func (h *ClockHandler) HandleSetFormat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req formatRequest
	if err := decode(r, &req); err != nil || req.Format24h == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind("set format", ErrBadRequest, err))
		return
	}
	res, err := h.deps.SetFormat24h(r.Context(), *req.Format24h)
	writeCommand(w, "set format", res, err)
}

// writeCommand answers 200 for applied commands and 409 with the clock state
// for rejected ones.
func writeCommand(w http.ResponseWriter, op string, res service.CommandResult, err error) {
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	status := http.StatusOK
	if !res.Accepted {
		status = http.StatusConflict
	}
	writeJSON(w, status, res)
}
