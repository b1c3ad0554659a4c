package simulate

import "errors"

var (
	ErrInvalidScript = errors.New("invalid match script")
	ErrInvariant     = errors.New("match invariant violated")
)
