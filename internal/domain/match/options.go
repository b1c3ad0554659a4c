package match

import "github.com/okian/matchclock/pkg/logger"

const (
	defaultMilestoneEvery = 15
	defaultHalfTimeMinute = 45
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMilestoneEvery sets the milestone period in minutes. Zero disables milestones.
func WithMilestoneEvery(minutes int) Option {
	return func(c *Coordinator) {
		if minutes >= 0 {
			c.milestoneEvery = minutes
		}
	}
}

// WithHalfTimeMinute sets the minute the half-time event fires on.
func WithHalfTimeMinute(minute int) Option {
	return func(c *Coordinator) {
		if minute > 0 {
			c.halfTimeMinute = minute
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}
