package clock

import (
	"github.com/jonboulle/clockwork"

	"github.com/okian/matchclock/pkg/logger"
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the wall time source.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithTickSource attaches the periodic trigger the engine starts and stops.
func WithTickSource(src TickSource) Option {
	return func(e *Engine) {
		if src != nil {
			e.ticks = src
		}
	}
}

// WithFormat24h selects the 24 hour wall display (default true).
func WithFormat24h(on bool) Option {
	return func(e *Engine) { e.format24h = on }
}

// WithDefaultAlarmMessage sets the text used when an alarm is armed without one.
func WithDefaultAlarmMessage(msg string) Option {
	return func(e *Engine) {
		if msg != "" {
			e.defaultAlarmMessage = msg
		}
	}
}

// WithDefaultCountdownMinutes sets the duration loaded on entering CountdownTimer.
func WithDefaultCountdownMinutes(minutes int) Option {
	return func(e *Engine) {
		if minutes >= 0 && minutes <= MaxDurationMinutes {
			e.defaultCountdown = minutes * 60
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}
