// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/domain/match"
)

// Round is the knockout stage a match belongs to.
type Round string

const (
	RoundOf16    Round = "round_of_16"
	QuarterFinal Round = "quarterfinal"
	SemiFinal    Round = "semifinal"
	Final        Round = "final"
)

// Rounds lists the stages in tournament order.
var Rounds = []Round{RoundOf16, QuarterFinal, SemiFinal, Final}

func (r Round) Valid() bool {
	for _, v := range Rounds {
		if r == v {
			return true
		}
	}
	return false
}

// ParseRound accepts canonical names and the spanish stage names.
func ParseRound(s string) (Round, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round_of_16", "octavos":
		return RoundOf16, nil
	case "quarterfinal", "cuartos":
		return QuarterFinal, nil
	case "semifinal":
		return SemiFinal, nil
	case "final":
		return Final, nil
	}
	return "", fmt.Errorf("unknown round %q", s)
}

// Team is a registered squad.
type Team struct {
	ID         int64  `json:"id" yaml:"-"`
	Name       string `json:"name" yaml:"name"`
	Course     string `json:"course" yaml:"course"`
	ShirtColor string `json:"shirt_color" yaml:"shirt_color"`
	Active     bool   `json:"active" yaml:"-"`
}

// Participant is a player or a referee.
type Participant struct {
	ID        int64  `json:"id" yaml:"-"`
	Name      string `json:"name" yaml:"name"`
	BirthDate string `json:"birth_date" yaml:"birth_date"`
	Course    string `json:"course" yaml:"course"`
	Player    bool   `json:"player" yaml:"player"`
	Referee   bool   `json:"referee" yaml:"referee"`
	Position  string `json:"position,omitempty" yaml:"position"`
	Active    bool   `json:"active" yaml:"-"`
}

// Match is a scheduled fixture and, once finalized, its result.
type Match struct {
	ID          int64     `json:"id"`
	HomeTeamID  int64     `json:"home_team_id"`
	AwayTeamID  int64     `json:"away_team_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	RefereeID   int64     `json:"referee_id,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Round       Round     `json:"round"`
	HomeGoals   int       `json:"home_goals"`
	AwayGoals   int       `json:"away_goals"`
	Finalized   bool      `json:"finalized"`
}

// ScorerEntry is one row of the top scorers table.
type ScorerEntry struct {
	Rank          int    `json:"rank"`
	ParticipantID int64  `json:"participant_id"`
	Name          string `json:"name"`
	Team          string `json:"team"`
	Goals         int    `json:"goals"`
}

// RosterEntry is a player eligible to score in a match.
type RosterEntry struct {
	ParticipantID int64      `json:"participant_id"`
	Name          string     `json:"name"`
	Position      string     `json:"position,omitempty"`
	Team          string     `json:"team"`
	Side          clock.Side `json:"side"`
}

// JobKind says which record a persistence job writes.
type JobKind string

const (
	JobGoal JobKind = "goal"
	JobCard JobKind = "card"
)

// Job is a goal or card waiting to be written to the record store.
type Job struct {
	ID            string         `json:"id"`
	Kind          JobKind        `json:"kind"`
	MatchID       int64          `json:"match_id"`
	ParticipantID int64          `json:"participant_id"`
	Side          clock.Side     `json:"side"`
	Card          match.CardKind `json:"card,omitempty"`
	Minute        int            `json:"minute"`
	RequestID     string         `json:"request_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewGoalJob builds the job for a recorded goal.
func NewGoalJob(matchID, participantID int64, ev match.GoalEvent, requestID string, now time.Time) Job {
	return Job{
		ID:            uuid.NewString(),
		Kind:          JobGoal,
		MatchID:       matchID,
		ParticipantID: participantID,
		Side:          ev.Side,
		Minute:        ev.ElapsedMinutes,
		RequestID:     requestID,
		CreatedAt:     now,
	}
}

// NewCardJob builds the job for an issued card.
func NewCardJob(matchID, participantID int64, ev match.CardEvent, requestID string, now time.Time) Job {
	return Job{
		ID:            uuid.NewString(),
		Kind:          JobCard,
		MatchID:       matchID,
		ParticipantID: participantID,
		Card:          ev.Kind,
		Minute:        ev.ElapsedMinutes,
		RequestID:     requestID,
		CreatedAt:     now,
	}
}
