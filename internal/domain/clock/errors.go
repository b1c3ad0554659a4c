package clock

import "errors"

var (
	ErrWrongMode        = errors.New("operation not valid in current mode")
	ErrUnknownMode      = errors.New("unknown clock mode")
	ErrUnknownSide      = errors.New("unknown side")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrNoGoalToRevert   = errors.New("no goal to revert")
	ErrInvalidScore     = errors.New("invalid score")
)
