// Package config defines process configuration and its layered loading.
package config

import (
	"fmt"
	"time"

	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/i18n"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// SeedFile optionally replaces the built-in tournament loaded into an empty store.
	SeedFile string `koanf:"seed_file"`

	// Locale selects the language of statuses and notifications.
	Locale string `koanf:"locale"`

	ClockFormat24h          bool `koanf:"clock_format_24h"`
	DefaultCountdownMinutes int  `koanf:"default_countdown_minutes"`
	TickIntervalMS          int  `koanf:"tick_interval_ms"`

	// HalfTimeMinute and MilestoneEvery drive match notifications. A zero
	// MilestoneEvery disables milestones.
	HalfTimeMinute int `koanf:"half_time_minute"`
	MilestoneEvery int `koanf:"milestone_every"`

	// PersistQueueSize bounds the goal/card job queue.
	PersistQueueSize      int `koanf:"persist_queue_size"`
	PersistWorkers        int `koanf:"persist_workers"`
	PersistRetries        int `koanf:"persist_retries"`
	PersistRetryBackoffMS int `koanf:"persist_retry_backoff_ms"`

	// DedupeSize bounds the remembered idempotency keys.
	DedupeSize int `koanf:"dedupe_size"`

	// RollbackOnPersistFailure reverts the running score when a goal cannot be stored.
	RollbackOnPersistFailure bool `koanf:"rollback_on_persist_failure"`

	// MaxScorersLimit caps GET /scorers?limit.
	MaxScorersLimit int `koanf:"max_scorers_limit"`

	// NotificationBuffer is how many notifications are kept for GET /notifications.
	NotificationBuffer int `koanf:"notification_buffer"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Addr:                     ":9080",
		DBPath:                   "tournament.db",
		Locale:                   i18n.Default,
		ClockFormat24h:           true,
		DefaultCountdownMinutes:  90,
		TickIntervalMS:           1000,
		HalfTimeMinute:           45,
		MilestoneEvery:           15,
		PersistQueueSize:         1024,
		PersistWorkers:           1,
		PersistRetries:           3,
		PersistRetryBackoffMS:    100,
		DedupeSize:               4096,
		RollbackOnPersistFailure: false,
		MaxScorersLimit:          100,
		NotificationBuffer:       200,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.TickIntervalMS <= 0:
		return fmt.Errorf("%w: tick_interval_ms must be positive", ErrInvalidConfig)
	case c.DefaultCountdownMinutes < 0 || c.DefaultCountdownMinutes > clock.MaxDurationMinutes:
		return fmt.Errorf("%w: default_countdown_minutes must be between 0 and %d", ErrInvalidConfig, clock.MaxDurationMinutes)
	case c.HalfTimeMinute <= 0:
		return fmt.Errorf("%w: half_time_minute must be positive", ErrInvalidConfig)
	case c.MilestoneEvery < 0:
		return fmt.Errorf("%w: milestone_every must not be negative", ErrInvalidConfig)
	case c.PersistQueueSize <= 0:
		return fmt.Errorf("%w: persist_queue_size must be positive", ErrInvalidConfig)
	case c.PersistRetries < 0 || c.PersistRetryBackoffMS < 0:
		return fmt.Errorf("%w: persist retries and backoff must not be negative", ErrInvalidConfig)
	case c.MaxScorersLimit <= 0:
		return fmt.Errorf("%w: max_scorers_limit must be positive", ErrInvalidConfig)
	case c.NotificationBuffer <= 0:
		return fmt.Errorf("%w: notification_buffer must be positive", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := i18n.New(c.Locale); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// TickInterval is TickIntervalMS as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// RetryBackoff is PersistRetryBackoffMS as a duration.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.PersistRetryBackoffMS) * time.Millisecond
}
