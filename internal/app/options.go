package service

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/matchclock/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the time source of the clock, ticker and workers.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLocale selects the notification language.
func WithLocale(locale string) Option {
	return func(s *Service) { s.locale = locale }
}

// WithTickInterval sets the tick cadence.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// WithFormat24h sets the initial time-of-day display format.
func WithFormat24h(on bool) Option {
	return func(s *Service) { s.format24h = on }
}

// WithDefaultCountdownMinutes sets the countdown loaded on entering CountdownTimer.
func WithDefaultCountdownMinutes(minutes int) Option {
	return func(s *Service) {
		if minutes >= 0 {
			s.countdownMinutes = minutes
		}
	}
}

// WithHalfTimeMinute sets the minute that triggers half time.
func WithHalfTimeMinute(minute int) Option {
	return func(s *Service) {
		if minute > 0 {
			s.halfTimeMinute = minute
		}
	}
}

// WithMilestoneEvery sets the milestone cadence in minutes; 0 disables.
func WithMilestoneEvery(minutes int) Option {
	return func(s *Service) {
		if minutes >= 0 {
			s.milestoneEvery = minutes
		}
	}
}

// WithQueueSize sets the maximum number of pending persistence jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of persistence workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithRetries sets how often a failed write is retried.
func WithRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.retries = n
		}
	}
}

// WithRetryBackoff sets the base delay between write retries.
func WithRetryBackoff(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.retryBackoff = d
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRollbackOnPersistFailure reverts the running score of a goal that
// could not be stored.
func WithRollbackOnPersistFailure(on bool) Option {
	return func(s *Service) { s.rollback = on }
}

// WithMaxScorersLimit caps TopScorers.
func WithMaxScorersLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxScorers = n
		}
	}
}

// WithNotificationBuffer sets how many notifications are kept.
func WithNotificationBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.notificationBuffer = n
		}
	}
}

// WithTickHook runs fn after every processed tick.
func WithTickHook(fn func()) Option {
	return func(s *Service) { s.tickHook = fn }
}
