package simulate

import "github.com/okian/matchclock/pkg/logger"

// Option configures a Run.
type Option func(*runner)

// WithHalfTimeMinute sets the half-time minute (default 45).
func WithHalfTimeMinute(minute int) Option {
	return func(r *runner) {
		if minute > 0 {
			r.halfTimeMinute = minute
		}
	}
}

// WithMilestoneEvery sets the milestone period (default 15, 0 disables).
func WithMilestoneEvery(minutes int) Option {
	return func(r *runner) {
		if minutes >= 0 {
			r.milestoneEvery = minutes
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.log = l
		}
	}
}
