// Package repository holds the tournament record store: teams, players,
// fixtures and the goals and cards recorded during a match.
package repository

import (
	"context"

	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/domain/match"
	"github.com/okian/matchclock/internal/domain/model"
)

// Store is what a live match needs from the record store.
type Store interface {
	// RecordGoal stores a goal. The participant must play for one of the two teams.
	RecordGoal(ctx context.Context, matchID, participantID int64, minute int) error
	// RecordCard stores a yellow or red card.
	RecordCard(ctx context.Context, matchID, participantID int64, kind match.CardKind, minute int) error
	// FinalizeMatch writes the final score and closes the match.
	FinalizeMatch(ctx context.Context, matchID int64, homeGoals, awayGoals int) error
	// GetMatch returns ErrNotFound for unknown ids.
	GetMatch(ctx context.Context, matchID int64) (model.Match, error)

	// SideOf resolves which side a participant plays for in a match.
	SideOf(ctx context.Context, matchID, participantID int64) (clock.Side, error)
	// GoalTally counts stored goals per side.
	GoalTally(ctx context.Context, matchID int64) (clock.Score, error)
	// Roster lists the players who may score in a match.
	Roster(ctx context.Context, matchID int64) ([]model.RosterEntry, error)
	// TopScorers returns the best n scorers across finalized and live matches.
	TopScorers(ctx context.Context, n int) ([]model.ScorerEntry, error)

	Close() error
}
