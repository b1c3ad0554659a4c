package loop

import "github.com/okian/matchclock/pkg/logger"

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.log = l
		}
	}
}

// WithTickHook runs fn on the loop goroutine after every applied tick.
func WithTickHook(fn func()) Option {
	return func(lp *Loop) { lp.onTick = fn }
}
