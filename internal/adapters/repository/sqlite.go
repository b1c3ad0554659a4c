package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/domain/match"
	"github.com/okian/matchclock/internal/domain/model"
	"github.com/okian/matchclock/pkg/logger"
	"github.com/okian/matchclock/pkg/metrics"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store on a SQLite file.
type SQLiteStore struct {
	db          *sql.DB
	log         logger.Logger
	busyTimeout time.Duration
	maxScorers  int
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		busyTimeout: defaultBusyTimeout,
		maxScorers:  defaultMaxScorers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Nop()
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", path, s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer; SQLite serializes anyway and this avoids SQLITE_BUSY between pool conns
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	s.db = db
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Info(ctx, "record store ready", logger.String("path", path))
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Empty reports whether no team has been registered yet.
func (s *SQLiteStore) Empty(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&n); err != nil {
		return false, fmt.Errorf("count teams: %w", err)
	}
	return n == 0, nil
}

// CreateTeam registers a team and returns its id.
func (s *SQLiteStore) CreateTeam(ctx context.Context, t model.Team) (int64, error) {
	return createTeam(ctx, s.db, t)
}

func createTeam(ctx context.Context, q querier, t model.Team) (int64, error) {
	if strings.TrimSpace(t.Name) == "" {
		return 0, errors.New("team name is required")
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO teams (name, course, shirt_color) VALUES (?, ?, ?)`,
		t.Name, t.Course, t.ShirtColor)
	if err != nil {
		return 0, fmt.Errorf("insert team %q: %w", t.Name, err)
	}
	return res.LastInsertId()
}

// ListTeams returns active teams ordered by name.
func (s *SQLiteStore) ListTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, course, shirt_color, active FROM teams WHERE active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var out []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Course, &t.ShirtColor, &t.Active); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SoftDeleteTeam hides a team from listings without touching its history.
func (s *SQLiteStore) SoftDeleteTeam(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE teams SET active = 0 WHERE id = ? AND active = 1`, id)
	if err != nil {
		return fmt.Errorf("deactivate team %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateParticipant registers a player or referee and returns its id.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, p model.Participant) (int64, error) {
	return createParticipant(ctx, s.db, p)
}

func createParticipant(ctx context.Context, q querier, p model.Participant) (int64, error) {
	if strings.TrimSpace(p.Name) == "" {
		return 0, errors.New("participant name is required")
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO participants (name, birth_date, course, is_player, is_referee, position)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.BirthDate, p.Course, p.Player, p.Referee, nullString(p.Position))
	if err != nil {
		return 0, fmt.Errorf("insert participant %q: %w", p.Name, err)
	}
	return res.LastInsertId()
}

// FindParticipant looks up an active participant by exact name.
func (s *SQLiteStore) FindParticipant(ctx context.Context, name string) (model.Participant, error) {
	defer observeQuery(time.Now())
	var (
		p        model.Participant
		position sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, birth_date, course, is_player, is_referee, position, active
		 FROM participants WHERE name = ? AND active = 1 ORDER BY id LIMIT 1`, name).
		Scan(&p.ID, &p.Name, &p.BirthDate, &p.Course, &p.Player, &p.Referee, &position, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Participant{}, fmt.Errorf("participant %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return model.Participant{}, fmt.Errorf("find participant %q: %w", name, err)
	}
	p.Position = position.String
	return p, nil
}

// Roster lists the players of both teams of a match, home first.
func (s *SQLiteStore) Roster(ctx context.Context, matchID int64) ([]model.RosterEntry, error) {
	defer observeQuery(time.Now())
	m, err := getMatch(ctx, s.db, matchID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, COALESCE(p.position, ''), tp.team_id, t.name
		 FROM team_participants tp
		 JOIN participants p ON p.id = tp.participant_id
		 JOIN teams t ON t.id = tp.team_id
		 WHERE tp.team_id IN (?, ?) AND p.active = 1
		 ORDER BY CASE WHEN tp.team_id = ? THEN 0 ELSE 1 END, p.name`,
		m.HomeTeamID, m.AwayTeamID, m.HomeTeamID)
	if err != nil {
		return nil, fmt.Errorf("roster of match %d: %w", matchID, err)
	}
	defer rows.Close()

	var out []model.RosterEntry
	for rows.Next() {
		var (
			e      model.RosterEntry
			teamID int64
		)
		if err := rows.Scan(&e.ParticipantID, &e.Name, &e.Position, &teamID, &e.Team); err != nil {
			return nil, fmt.Errorf("scan roster: %w", err)
		}
		e.Side = clock.Home
		if teamID == m.AwayTeamID {
			e.Side = clock.Away
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AssignPlayer puts a player on a team. Assigning twice is a no-op.
func (s *SQLiteStore) AssignPlayer(ctx context.Context, teamID, participantID int64) error {
	return assignPlayer(ctx, s.db, teamID, participantID)
}

func assignPlayer(ctx context.Context, q querier, teamID, participantID int64) error {
	var isPlayer bool
	err := q.QueryRowContext(ctx, `SELECT is_player FROM participants WHERE id = ?`, participantID).Scan(&isPlayer)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load participant %d: %w", participantID, err)
	}
	if !isPlayer {
		return ErrNotPlayer
	}
	if _, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO team_participants (team_id, participant_id) VALUES (?, ?)`,
		teamID, participantID); err != nil {
		return fmt.Errorf("assign player %d to team %d: %w", participantID, teamID, err)
	}
	return nil
}

// CreateMatch schedules a fixture between two different teams.
func (s *SQLiteStore) CreateMatch(ctx context.Context, m model.Match) (int64, error) {
	return createMatch(ctx, s.db, m)
}

func createMatch(ctx context.Context, q querier, m model.Match) (int64, error) {
	if m.HomeTeamID == m.AwayTeamID {
		return 0, ErrSameTeam
	}
	if !m.Round.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRound, m.Round)
	}
	var n int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM teams WHERE id IN (?, ?)`, m.HomeTeamID, m.AwayTeamID).Scan(&n); err != nil {
		return 0, fmt.Errorf("check teams: %w", err)
	}
	if n != 2 {
		return 0, ErrNotFound
	}
	var referee any
	if m.RefereeID != 0 {
		referee = m.RefereeID
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO matches (home_team_id, away_team_id, referee_id, scheduled_at, round)
		 VALUES (?, ?, ?, ?, ?)`,
		m.HomeTeamID, m.AwayTeamID, referee, m.ScheduledAt.UTC().Format(time.RFC3339), string(m.Round))
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}
	return res.LastInsertId()
}

const matchColumns = `m.id, m.home_team_id, m.away_team_id, h.name, a.name, COALESCE(m.referee_id, 0),
	m.scheduled_at, m.round, m.home_goals, m.away_goals, m.finalized
	FROM matches m
	JOIN teams h ON h.id = m.home_team_id
	JOIN teams a ON a.id = m.away_team_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (model.Match, error) {
	var (
		m         model.Match
		scheduled string
		round     string
	)
	if err := row.Scan(&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.HomeTeam, &m.AwayTeam, &m.RefereeID,
		&scheduled, &round, &m.HomeGoals, &m.AwayGoals, &m.Finalized); err != nil {
		return model.Match{}, err
	}
	m.Round = model.Round(round)
	if t, err := time.Parse(time.RFC3339, scheduled); err == nil {
		m.ScheduledAt = t
	}
	return m, nil
}

// GetMatch loads one match with team names.
func (s *SQLiteStore) GetMatch(ctx context.Context, matchID int64) (model.Match, error) {
	defer observeQuery(time.Now())
	return getMatch(ctx, s.db, matchID)
}

func getMatch(ctx context.Context, q querier, matchID int64) (model.Match, error) {
	m, err := scanMatch(q.QueryRowContext(ctx, `SELECT `+matchColumns+` WHERE m.id = ?`, matchID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Match{}, ErrNotFound
	}
	if err != nil {
		return model.Match{}, fmt.Errorf("load match %d: %w", matchID, err)
	}
	return m, nil
}

// ListMatches returns every fixture in schedule order.
func (s *SQLiteStore) ListMatches(ctx context.Context) ([]model.Match, error) {
	defer observeQuery(time.Now())
	rows, err := s.db.QueryContext(ctx, `SELECT `+matchColumns+` ORDER BY m.scheduled_at, m.id`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SideOf resolves the side a participant plays for. A player registered on
// both teams counts as home.
func (s *SQLiteStore) SideOf(ctx context.Context, matchID, participantID int64) (clock.Side, error) {
	defer observeQuery(time.Now())
	m, err := getMatch(ctx, s.db, matchID)
	if err != nil {
		return 0, err
	}
	_, side, err := sideOf(ctx, s.db, m, participantID)
	return side, err
}

func sideOf(ctx context.Context, q querier, m model.Match, participantID int64) (int64, clock.Side, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT team_id FROM team_participants WHERE participant_id = ? AND team_id IN (?, ?)`,
		participantID, m.HomeTeamID, m.AwayTeamID)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve team of participant %d: %w", participantID, err)
	}
	defer rows.Close()

	found := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, 0, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}
	switch {
	case found[m.HomeTeamID]:
		return m.HomeTeamID, clock.Home, nil
	case found[m.AwayTeamID]:
		return m.AwayTeamID, clock.Away, nil
	}
	return 0, 0, ErrParticipantNotInMatch
}

// openMatch loads a match that still accepts events.
func openMatch(ctx context.Context, q querier, matchID int64) (model.Match, error) {
	m, err := getMatch(ctx, q, matchID)
	if err != nil {
		return model.Match{}, err
	}
	if m.Finalized {
		return model.Match{}, ErrMatchFinalized
	}
	return m, nil
}

// RecordGoal stores a goal credited to the participant's team.
func (s *SQLiteStore) RecordGoal(ctx context.Context, matchID, participantID int64, minute int) error {
	if minute < 0 {
		return ErrInvalidMinute
	}
	defer observeUpdate(time.Now())
	return s.inTx(ctx, func(tx *sql.Tx) error {
		m, err := openMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		teamID, _, err := sideOf(ctx, tx, m, participantID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO goals (match_id, participant_id, team_id, minute) VALUES (?, ?, ?, ?)`,
			matchID, participantID, teamID, minute); err != nil {
			return fmt.Errorf("insert goal: %w", err)
		}
		return nil
	})
}

// RecordCard stores a card for a participant of the match.
func (s *SQLiteStore) RecordCard(ctx context.Context, matchID, participantID int64, kind match.CardKind, minute int) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCard, kind)
	}
	if minute < 0 {
		return ErrInvalidMinute
	}
	defer observeUpdate(time.Now())
	return s.inTx(ctx, func(tx *sql.Tx) error {
		m, err := openMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if _, _, err := sideOf(ctx, tx, m, participantID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cards (match_id, participant_id, kind, minute) VALUES (?, ?, ?, ?)`,
			matchID, participantID, string(kind), minute); err != nil {
			return fmt.Errorf("insert card: %w", err)
		}
		return nil
	})
}

// FinalizeMatch writes the result and closes the match for further events.
func (s *SQLiteStore) FinalizeMatch(ctx context.Context, matchID int64, homeGoals, awayGoals int) error {
	if homeGoals < 0 || awayGoals < 0 {
		return fmt.Errorf("negative score %d-%d", homeGoals, awayGoals)
	}
	defer observeUpdate(time.Now())
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := openMatch(ctx, tx, matchID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE matches SET home_goals = ?, away_goals = ?, finalized = 1 WHERE id = ?`,
			homeGoals, awayGoals, matchID); err != nil {
			return fmt.Errorf("finalize match %d: %w", matchID, err)
		}
		return nil
	})
}

// GoalTally counts the stored goals of a match per side.
func (s *SQLiteStore) GoalTally(ctx context.Context, matchID int64) (clock.Score, error) {
	defer observeQuery(time.Now())
	m, err := getMatch(ctx, s.db, matchID)
	if err != nil {
		return clock.Score{}, err
	}
	var sc clock.Score
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(team_id = ?), 0), COALESCE(SUM(team_id = ?), 0) FROM goals WHERE match_id = ?`,
		m.HomeTeamID, m.AwayTeamID, matchID).Scan(&sc.Home, &sc.Away)
	if err != nil {
		return clock.Score{}, fmt.Errorf("tally goals of match %d: %w", matchID, err)
	}
	return sc, nil
}

// TopScorers ranks players by goals. Players level on goals share a rank.
func (s *SQLiteStore) TopScorers(ctx context.Context, n int) ([]model.ScorerEntry, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	if n > s.maxScorers {
		n = s.maxScorers
	}
	defer observeQuery(time.Now())
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, t.name, COUNT(*) AS goals
		 FROM goals g
		 JOIN participants p ON p.id = g.participant_id
		 JOIN teams t ON t.id = g.team_id
		 GROUP BY g.participant_id, g.team_id
		 ORDER BY goals DESC, p.name
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("top scorers: %w", err)
	}
	defer rows.Close()

	var out []model.ScorerEntry
	for rows.Next() {
		var e model.ScorerEntry
		if err := rows.Scan(&e.ParticipantID, &e.Name, &e.Team, &e.Goals); err != nil {
			return nil, err
		}
		e.Rank = len(out) + 1
		if len(out) > 0 && out[len(out)-1].Goals == e.Goals {
			e.Rank = out[len(out)-1].Rank
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}

func observeUpdate(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
}
