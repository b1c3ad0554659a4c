package service

import "errors"

// Sentinel errors returned by Service commands.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrNoActiveMatch   = errors.New("no match in progress")
	ErrMatchInProgress = errors.New("another match is in progress")
	ErrSideMismatch    = errors.New("participant does not play for that side")
	ErrBackpressure    = errors.New("persistence queue is full")
	ErrInvalidLimit    = errors.New("invalid limit")
)
