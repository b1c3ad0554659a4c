package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/domain/match"
	"github.com/okian/matchclock/internal/domain/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "tournament.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seeded returns a store with the default seed and the id of the first semifinal.
func seeded(t *testing.T) (*SQLiteStore, model.Match) {
	t.Helper()
	s := openTestStore(t)
	ok, err := s.Seed(context.Background(), DefaultSeed())
	require.NoError(t, err)
	require.True(t, ok)

	matches, err := s.ListMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 2)
	return s, matches[0]
}

func participantID(t *testing.T, s *SQLiteStore, name string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, s.db.QueryRow(`SELECT id FROM participants WHERE name = ?`, name).Scan(&id))
	return id
}

func TestSeed(t *testing.T) {
	s, m := seeded(t)
	ctx := context.Background()

	assert.Equal(t, "Vipers", m.HomeTeam)
	assert.Equal(t, "Sharks", m.AwayTeam)
	assert.Equal(t, model.SemiFinal, m.Round)
	assert.False(t, m.Finalized)
	assert.NotZero(t, m.RefereeID)

	teams, err := s.ListTeams(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 4)

	again, err := s.Seed(ctx, DefaultSeed())
	require.NoError(t, err)
	assert.False(t, again, "seeding a non-empty store is a no-op")
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
teams:
  - name: Owls
    course: 3A
    shirt_color: White
    players:
      - {name: Ana, birth_date: "2008-01-02", position: Forward}
  - name: Foxes
    course: 3B
    players:
      - {name: Bea}
referees:
  - {name: Ref One}
matches:
  - {home: Owls, away: Foxes, referee: Ref One, round: final, scheduled_at: 2026-07-01T18:00:00Z}
`), 0o600))

	d, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, d.Teams, 2)
	assert.Equal(t, "Owls", d.Teams[0].Name)
	assert.Equal(t, "Forward", d.Teams[0].Players[0].Position)
	assert.Equal(t, model.Final, d.Matches[0].Round)

	s := openTestStore(t)
	ok, err := s.Seed(context.Background(), d)
	require.NoError(t, err)
	require.True(t, ok)

	matches, err := s.ListMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].ScheduledAt.Equal(time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC)))

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRecordGoalAndTally(t *testing.T) {
	s, m := seeded(t)
	ctx := context.Background()

	home := participantID(t, s, "David Sánchez")
	away := participantID(t, s, "Luis Torres")
	outsider := participantID(t, s, "Arturo Silva")

	require.NoError(t, s.RecordGoal(ctx, m.ID, home, 23))
	require.NoError(t, s.RecordGoal(ctx, m.ID, home, 51))
	require.NoError(t, s.RecordGoal(ctx, m.ID, away, 70))

	assert.ErrorIs(t, s.RecordGoal(ctx, m.ID, outsider, 10), ErrParticipantNotInMatch)
	assert.ErrorIs(t, s.RecordGoal(ctx, 999, home, 10), ErrNotFound)
	assert.ErrorIs(t, s.RecordGoal(ctx, m.ID, home, -1), ErrInvalidMinute)

	tally, err := s.GoalTally(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, clock.Score{Home: 2, Away: 1}, tally)

	side, err := s.SideOf(ctx, m.ID, away)
	require.NoError(t, err)
	assert.Equal(t, clock.Away, side)

	scorers, err := s.TopScorers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, scorers, 2)
	assert.Equal(t, "David Sánchez", scorers[0].Name)
	assert.Equal(t, 2, scorers[0].Goals)
	assert.Equal(t, 1, scorers[0].Rank)
	assert.Equal(t, "Vipers", scorers[0].Team)
	assert.Equal(t, 2, scorers[1].Rank)

	_, err = s.TopScorers(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestRecordCard(t *testing.T) {
	s, m := seeded(t)
	ctx := context.Background()
	pid := participantID(t, s, "Ricardo Pérez")

	require.NoError(t, s.RecordCard(ctx, m.ID, pid, match.Yellow, 12))
	require.NoError(t, s.RecordCard(ctx, m.ID, pid, match.Red, 40))
	assert.ErrorIs(t, s.RecordCard(ctx, m.ID, pid, match.CardKind("green"), 41), ErrInvalidCard)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM cards WHERE match_id = ?`, m.ID).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestFinalizeMatch(t *testing.T) {
	s, m := seeded(t)
	ctx := context.Background()
	pid := participantID(t, s, "Pedro García")

	require.NoError(t, s.FinalizeMatch(ctx, m.ID, 1, 0))

	got, err := s.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.Finalized)
	assert.Equal(t, 1, got.HomeGoals)
	assert.Equal(t, 0, got.AwayGoals)

	assert.ErrorIs(t, s.FinalizeMatch(ctx, m.ID, 2, 0), ErrMatchFinalized)
	assert.ErrorIs(t, s.RecordGoal(ctx, m.ID, pid, 90), ErrMatchFinalized)
	assert.ErrorIs(t, s.RecordCard(ctx, m.ID, pid, match.Yellow, 90), ErrMatchFinalized)

	_, err = s.GetMatch(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateMatchValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.CreateTeam(ctx, model.Team{Name: "A"})
	require.NoError(t, err)
	b, err := s.CreateTeam(ctx, model.Team{Name: "B"})
	require.NoError(t, err)

	_, err = s.CreateMatch(ctx, model.Match{HomeTeamID: a, AwayTeamID: a, Round: model.Final})
	assert.ErrorIs(t, err, ErrSameTeam)
	_, err = s.CreateMatch(ctx, model.Match{HomeTeamID: a, AwayTeamID: b, Round: "friendly"})
	assert.ErrorIs(t, err, ErrInvalidRound)
	_, err = s.CreateMatch(ctx, model.Match{HomeTeamID: a, AwayTeamID: 77, Round: model.Final})
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := s.CreateMatch(ctx, model.Match{HomeTeamID: a, AwayTeamID: b, Round: model.QuarterFinal, ScheduledAt: time.Now()})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestAssignPlayerAndSoftDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	team, err := s.CreateTeam(ctx, model.Team{Name: "Comets"})
	require.NoError(t, err)
	ref, err := s.CreateParticipant(ctx, model.Participant{Name: "Whistle", Referee: true})
	require.NoError(t, err)
	pl, err := s.CreateParticipant(ctx, model.Participant{Name: "Kicker", Player: true})
	require.NoError(t, err)

	assert.ErrorIs(t, s.AssignPlayer(ctx, team, ref), ErrNotPlayer)
	assert.ErrorIs(t, s.AssignPlayer(ctx, team, 404), ErrNotFound)
	require.NoError(t, s.AssignPlayer(ctx, team, pl))
	require.NoError(t, s.AssignPlayer(ctx, team, pl))

	require.NoError(t, s.SoftDeleteTeam(ctx, team))
	assert.ErrorIs(t, s.SoftDeleteTeam(ctx, team), ErrNotFound)
	teams, err := s.ListTeams(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestRosterAndFindParticipant(t *testing.T) {
	s, m := seeded(t)
	ctx := context.Background()

	p, err := s.FindParticipant(ctx, "Luis Torres")
	require.NoError(t, err)
	assert.True(t, p.Player)
	assert.Equal(t, "Forward", p.Position)

	_, err = s.FindParticipant(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	roster, err := s.Roster(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, roster, 10)
	assert.Equal(t, clock.Home, roster[0].Side)
	assert.Equal(t, "Vipers", roster[0].Team)
	assert.Equal(t, clock.Away, roster[9].Side)
	assert.Equal(t, "Sharks", roster[9].Team)

	_, err = s.Roster(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
