package clock

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode is the behaviour the engine is currently running.
type Mode int

const (
	WallClock Mode = iota
	Chronometer
	CountdownTimer
	FootballMatch
	AlarmClock
)

var modeNames = map[Mode]string{
	WallClock:      "wall_clock",
	Chronometer:    "chronometer",
	CountdownTimer: "countdown_timer",
	FootballMatch:  "football_match",
	AlarmClock:     "alarm_clock",
}

var modeAliases = map[string]Mode{
	"clock":     WallClock,
	"stopwatch": Chronometer,
	"timer":     CountdownTimer,
	"countdown": CountdownTimer,
	"football":  FootballMatch,
	"match":     FootballMatch,
	"alarm":     AlarmClock,
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// Counting reports whether the mode counts elapsed or remaining seconds and
// only ticks while running.
func (m Mode) Counting() bool {
	return m == Chronometer || m == CountdownTimer || m == FootballMatch
}

// TimeOfDay reports whether the mode shows the wall time and always ticks.
func (m Mode) TimeOfDay() bool {
	return m == WallClock || m == AlarmClock
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode accepts canonical names and a few short aliases.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == key {
			return m, nil
		}
	}
	if m, ok := modeAliases[key]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Side identifies a team in a match.
type Side int

const (
	Home Side = iota
	Away
)

func (s Side) String() string {
	switch s {
	case Home:
		return "home"
	case Away:
		return "away"
	default:
		return "side(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseSide parses "home" or "away" (also "local"/"visitor").
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home", "local":
		return Home, nil
	case "away", "visitor":
		return Away, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSide, s)
}

func (s Side) MarshalText() ([]byte, error) {
	if s != Home && s != Away {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSide, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Score is the running tally of a match.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Of returns the goals for one side.
func (s Score) Of(side Side) int {
	if side == Away {
		return s.Away
	}
	return s.Home
}

func (s Score) String() string {
	return fmt.Sprintf("%d - %d", s.Home, s.Away)
}

// TimeOfDay is a wall time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS" on a 24 hour dial.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		vals[i] = n
	}
	t := TimeOfDay{Hour: vals[0], Minute: vals[1], Second: vals[2]}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return t, nil
}

// TimeOfDayOf extracts the wall time from t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60 && t.Second >= 0 && t.Second < 60
}

// Seconds since midnight.
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (t TimeOfDay) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Alarm is a one-shot daily alarm.
type Alarm struct {
	At      TimeOfDay `json:"at"`
	Message string    `json:"message"`
}

// StatusCode classifies the user facing status line.
type StatusCode string

const (
	StatusReady             StatusCode = "ready"
	StatusRunning           StatusCode = "running"
	StatusPaused            StatusCode = "paused"
	StatusFinished          StatusCode = "finished"
	StatusConfigureTimer    StatusCode = "configure_timer"
	StatusNotRunning        StatusCode = "not_running"
	StatusDurationLocked    StatusCode = "duration_locked"
	StatusInvalidDuration   StatusCode = "invalid_duration"
	StatusWrongMode         StatusCode = "wrong_mode"
	StatusAlarmSet          StatusCode = "alarm_set"
	StatusAlarm             StatusCode = "alarm"
	StatusChronometerPaused StatusCode = "chronometer_paused"
	StatusDurationSet       StatusCode = "duration_set"
	StatusInvalidAlarm      StatusCode = "invalid_alarm"
)

// Rejected reports whether the code describes a refused command.
func (c StatusCode) Rejected() bool {
	switch c {
	case StatusConfigureTimer, StatusNotRunning, StatusDurationLocked, StatusInvalidDuration, StatusWrongMode, StatusInvalidAlarm:
		return true
	}
	return false
}

// Status is what the display shows next to the time. Detail carries the
// variable part (elapsed time, alarm message, target time) and is rendered
// by the caller's translator.
type Status struct {
	Code   StatusCode `json:"code"`
	Detail string     `json:"detail,omitempty"`
}

// FormatElapsed renders seconds as HH:MM:SS. Hours are not capped.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
