package worker

import "errors"

// ErrUnknownJob is returned for a job kind the worker cannot persist.
var ErrUnknownJob = errors.New("unknown job kind")
