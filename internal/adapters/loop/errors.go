package loop

import "errors"

var (
	ErrStopped         = errors.New("clock loop stopped")
	ErrCommandPanicked = errors.New("clock command panicked")
)
