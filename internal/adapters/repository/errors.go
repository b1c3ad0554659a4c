package repository

import "errors"

// Sentinel kinds for record store errors.
var (
	ErrNotFound              = errors.New("record not found")
	ErrInvalidLimit          = errors.New("invalid limit")
	ErrMatchFinalized        = errors.New("match already finalized")
	ErrParticipantNotInMatch = errors.New("participant does not play in this match")
	ErrSameTeam              = errors.New("home and away team must differ")
	ErrInvalidRound          = errors.New("invalid round")
	ErrInvalidCard           = errors.New("invalid card kind")
	ErrInvalidMinute         = errors.New("invalid minute")
	ErrNotPlayer             = errors.New("participant is not a player")
)

// Permanent reports whether retrying the write that produced err can never succeed.
func Permanent(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrMatchFinalized, ErrParticipantNotInMatch,
		ErrInvalidCard, ErrInvalidMinute, ErrNotPlayer,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
