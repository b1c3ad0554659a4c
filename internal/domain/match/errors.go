package match

import (
	"errors"

	"github.com/okian/matchclock/internal/domain/clock"
)

var (
	// ErrWrongMode is returned when a match operation runs outside FootballMatch mode.
	ErrWrongMode   = clock.ErrWrongMode
	ErrUnknownCard = errors.New("unknown card kind")
)
