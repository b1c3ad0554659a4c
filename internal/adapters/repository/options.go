package repository

import (
	"time"

	"github.com/okian/matchclock/pkg/logger"
)

const (
	defaultBusyTimeout = 5 * time.Second
	defaultMaxScorers  = 100
)

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithMaxScorers caps the TopScorers limit.
func WithMaxScorers(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.maxScorers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.log = l
		}
	}
}
