// Package clock implements the tick driven timekeeping engine behind a match
// clock display. One Engine runs exactly one mode at a time (wall clock,
// chronometer, countdown timer, football match or alarm clock) and reports
// changes to registered listeners synchronously.
//
// An Engine is not safe for concurrent use. All calls, including Tick, must
// come from a single goroutine; see the loop adapter for the usual driver.
package clock

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/okian/matchclock/pkg/logger"
)

const (
	defaultAlarmMessage     = "Alarm activated!"
	defaultCountdownMinutes = 90

	// MaxDurationMinutes is the longest countdown SetDuration accepts.
	MaxDurationMinutes = 24 * 60

	layout24h = "15:04:05"
	layout12h = "03:04:05 PM"
)

// TickSource is the periodic trigger that calls Engine.Tick. The engine only
// tells it when ticks are wanted.
type TickSource interface {
	Start()
	Stop()
	Active() bool
}

// manualSource is used when no tick source is attached; callers drive Tick
// directly.
type manualSource struct{ active bool }

func (m *manualSource) Start()       { m.active = true }
func (m *manualSource) Stop()        { m.active = false }
func (m *manualSource) Active() bool { return m.active }

type state struct {
	mode     Mode
	running  bool
	paused   bool
	elapsed  int
	duration int
	alarm    *Alarm
	score    Score
}

type listeners struct {
	timeUpdated []func(display string)
	alarm       []func(message string)
	finished    []func()
	status      []func(Status)
	reset       []func()
	mode        []func(Mode)
}

// Engine is the clock state machine.
type Engine struct {
	clock               clockwork.Clock
	ticks               TickSource
	log                 logger.Logger
	format24h           bool
	defaultAlarmMessage string
	defaultCountdown    int

	st     state
	status Status
	on     listeners
}

// New builds an engine in WallClock mode, not running, with ticks started.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:               clockwork.NewRealClock(),
		ticks:               &manualSource{},
		format24h:           true,
		defaultAlarmMessage: defaultAlarmMessage,
		defaultCountdown:    defaultCountdownMinutes * 60,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	e.SetMode(WallClock)
	return e
}

// OnTimeUpdated registers a listener for display refreshes.
func (e *Engine) OnTimeUpdated(fn func(display string)) {
	e.on.timeUpdated = append(e.on.timeUpdated, fn)
}

// OnAlarm registers a listener fired once per triggered alarm.
func (e *Engine) OnAlarm(fn func(message string)) { e.on.alarm = append(e.on.alarm, fn) }

// OnFinished registers a listener fired when a countdown reaches zero.
func (e *Engine) OnFinished(fn func()) { e.on.finished = append(e.on.finished, fn) }

// OnStatus registers a listener for status changes, including rejections.
func (e *Engine) OnStatus(fn func(Status)) { e.on.status = append(e.on.status, fn) }

// OnReset registers a listener fired at the start of every reset, before the
// fresh display is published.
func (e *Engine) OnReset(fn func()) { e.on.reset = append(e.on.reset, fn) }

// OnModeChanged registers a listener fired after a mode switch completes.
func (e *Engine) OnModeChanged(fn func(Mode)) { e.on.mode = append(e.on.mode, fn) }

// SetMode switches mode, recreates the state and forces a reset. Time of day
// modes tick continuously; counting modes only tick while running.
func (e *Engine) SetMode(m Mode) bool {
	if !m.Valid() {
		e.setStatus(StatusWrongMode, m.String())
		return false
	}
	prev := e.st.mode
	e.st = state{mode: m}
	if m == CountdownTimer {
		e.st.duration = e.defaultCountdown
	}
	e.Reset()
	if m.TimeOfDay() {
		e.ticks.Start()
	} else {
		e.ticks.Stop()
	}
	e.log.Debug(context.Background(), "mode changed",
		logger.String("from", prev.String()), logger.String("to", m.String()))
	for _, fn := range e.on.mode {
		fn(m)
	}
	return true
}

// Start begins counting. A countdown without a duration is refused. A
// countdown that already ran out reloads its duration.
func (e *Engine) Start() bool {
	if e.st.mode == CountdownTimer {
		if e.st.duration == 0 {
			e.setStatus(StatusConfigureTimer, "")
			return false
		}
		if e.st.elapsed == 0 {
			e.st.elapsed = e.st.duration
		}
	}
	if e.st.running {
		return true
	}
	e.st.running = true
	e.st.paused = false
	if e.st.mode.Counting() && !e.ticks.Active() {
		e.ticks.Start()
	}
	e.setStatus(StatusRunning, "")
	return true
}

// Pause stops counting without losing the value. Ticks stop before Pause
// returns, so no further increments are applied.
func (e *Engine) Pause() bool {
	if !e.st.running {
		e.setStatus(StatusNotRunning, "")
		return false
	}
	e.st.running = false
	e.st.paused = true
	if e.st.mode.Counting() {
		e.ticks.Stop()
	}
	if e.st.mode == Chronometer {
		e.setStatus(StatusChronometerPaused, FormatElapsed(e.st.elapsed))
	} else {
		e.setStatus(StatusPaused, "")
	}
	return true
}

// Reset returns the mode to its initial value. It emits reset then
// time-updated.
func (e *Engine) Reset() bool {
	e.st.running = false
	e.st.paused = false
	switch e.st.mode {
	case CountdownTimer:
		e.st.elapsed = e.st.duration
	case FootballMatch:
		e.st.elapsed = 0
		e.st.score = Score{}
	default:
		e.st.elapsed = 0
	}
	if e.st.mode.Counting() {
		e.ticks.Stop()
	}
	for _, fn := range e.on.reset {
		fn()
	}
	e.emitTime()
	e.setStatus(StatusReady, "")
	return true
}

// SetDuration configures the countdown length. Only valid in CountdownTimer
// while not running.
func (e *Engine) SetDuration(minutes int) bool {
	switch {
	case e.st.mode != CountdownTimer:
		e.setStatus(StatusWrongMode, e.st.mode.String())
		return false
	case e.st.running:
		e.setStatus(StatusDurationLocked, "")
		return false
	case minutes < 0 || minutes > MaxDurationMinutes:
		e.setStatus(StatusInvalidDuration, "")
		return false
	}
	e.st.duration = minutes * 60
	e.st.elapsed = e.st.duration
	e.st.paused = false
	e.emitTime()
	e.setStatus(StatusDurationSet, FormatElapsed(e.st.duration))
	return true
}

// SetAlarm arms the one-shot alarm. An empty message uses the default.
func (e *Engine) SetAlarm(at TimeOfDay, message string) bool {
	if !e.st.mode.TimeOfDay() {
		e.setStatus(StatusWrongMode, e.st.mode.String())
		return false
	}
	if !at.Valid() {
		e.setStatus(StatusInvalidAlarm, at.String())
		return false
	}
	if message == "" {
		message = e.defaultAlarmMessage
	}
	e.st.alarm = &Alarm{At: at, Message: message}
	e.setStatus(StatusAlarmSet, at.String())
	return true
}

// ClearAlarm disarms a pending alarm.
func (e *Engine) ClearAlarm() {
	e.st.alarm = nil
}

// SetFormat24h switches between 24 and 12 hour wall display.
func (e *Engine) SetFormat24h(on bool) {
	e.format24h = on
	if e.st.mode.TimeOfDay() {
		e.emitTime()
	}
}

// Tick applies one second. Stale ticks in stopped counting modes are ignored.
func (e *Engine) Tick() {
	switch {
	case e.st.mode.TimeOfDay():
		e.emitTime()
		e.checkAlarm()
	case !e.st.running:
		return
	case e.st.mode == CountdownTimer:
		if e.st.elapsed <= 0 {
			return
		}
		e.st.elapsed--
		e.emitTime()
		if e.st.elapsed == 0 {
			e.ticks.Stop()
			e.st.running = false
			e.setStatus(StatusFinished, "")
			for _, fn := range e.on.finished {
				fn()
			}
		}
	default:
		e.st.elapsed++
		e.emitTime()
	}
}

func (e *Engine) checkAlarm() {
	a := e.st.alarm
	if a == nil {
		return
	}
	if TimeOfDayOf(e.clock.Now()).Seconds() < a.At.Seconds() {
		return
	}
	e.st.alarm = nil
	e.setStatus(StatusAlarm, a.Message)
	for _, fn := range e.on.alarm {
		fn(a.Message)
	}
}

// AddGoal bumps the running score. Only valid in FootballMatch.
func (e *Engine) AddGoal(side Side) error {
	if e.st.mode != FootballMatch {
		return ErrWrongMode
	}
	if side == Away {
		e.st.score.Away++
	} else {
		e.st.score.Home++
	}
	return nil
}

// RevertGoal undoes one goal for side.
func (e *Engine) RevertGoal(side Side) error {
	if e.st.mode != FootballMatch {
		return ErrWrongMode
	}
	p := &e.st.score.Home
	if side == Away {
		p = &e.st.score.Away
	}
	if *p == 0 {
		return ErrNoGoalToRevert
	}
	*p--
	return nil
}

// SetScore overwrites the running score, used to resync with stored goals.
func (e *Engine) SetScore(s Score) error {
	if e.st.mode != FootballMatch {
		return ErrWrongMode
	}
	if s.Home < 0 || s.Away < 0 {
		return ErrInvalidScore
	}
	e.st.score = s
	return nil
}

func (e *Engine) Mode() Mode           { return e.st.mode }
func (e *Engine) Running() bool        { return e.st.running }
func (e *Engine) Paused() bool         { return e.st.paused }
func (e *Engine) ElapsedSeconds() int  { return e.st.elapsed }
func (e *Engine) ElapsedMinutes() int  { return e.st.elapsed / 60 }
func (e *Engine) DurationSeconds() int { return e.st.duration }
func (e *Engine) Score() Score         { return e.st.score }
func (e *Engine) Status() Status       { return e.status }
func (e *Engine) Format24h() bool      { return e.format24h }

// Alarm returns the armed alarm, if any.
func (e *Engine) Alarm() (Alarm, bool) {
	if e.st.alarm == nil {
		return Alarm{}, false
	}
	return *e.st.alarm, true
}

// Display returns the string shown on screen for the current state.
func (e *Engine) Display() string {
	if e.st.mode.TimeOfDay() {
		layout := layout24h
		if !e.format24h {
			layout = layout12h
		}
		return e.clock.Now().Format(layout)
	}
	return FormatElapsed(e.st.elapsed)
}

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	Mode            Mode   `json:"mode"`
	Running         bool   `json:"running"`
	Paused          bool   `json:"paused"`
	ElapsedSeconds  int    `json:"elapsed_seconds"`
	ElapsedMinutes  int    `json:"elapsed_minutes"`
	DurationSeconds int    `json:"duration_seconds"`
	Display         string `json:"display"`
	Score           Score  `json:"score"`
	Alarm           *Alarm `json:"alarm,omitempty"`
	Status          Status `json:"status"`
	Format24h       bool   `json:"format_24h"`
}

func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Mode:            e.st.mode,
		Running:         e.st.running,
		Paused:          e.st.paused,
		ElapsedSeconds:  e.st.elapsed,
		ElapsedMinutes:  e.ElapsedMinutes(),
		DurationSeconds: e.st.duration,
		Display:         e.Display(),
		Score:           e.st.score,
		Status:          e.status,
		Format24h:       e.format24h,
	}
	if e.st.alarm != nil {
		a := *e.st.alarm
		s.Alarm = &a
	}
	return s
}

func (e *Engine) emitTime() {
	if len(e.on.timeUpdated) == 0 {
		return
	}
	d := e.Display()
	for _, fn := range e.on.timeUpdated {
		fn(d)
	}
}

func (e *Engine) setStatus(code StatusCode, detail string) {
	e.status = Status{Code: code, Detail: detail}
	if code.Rejected() {
		e.log.Debug(context.Background(), "command rejected",
			logger.String("mode", e.st.mode.String()), logger.String("status", string(code)))
	}
	for _, fn := range e.on.status {
		fn(e.status)
	}
}
