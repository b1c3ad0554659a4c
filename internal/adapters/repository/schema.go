package repository

var schema = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		course TEXT NOT NULL DEFAULT '',
		shirt_color TEXT NOT NULL DEFAULT '',
		logo TEXT,
		active INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS participants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		birth_date TEXT NOT NULL DEFAULT '',
		course TEXT NOT NULL DEFAULT '',
		is_player INTEGER NOT NULL DEFAULT 0,
		is_referee INTEGER NOT NULL DEFAULT 0,
		position TEXT,
		active INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS team_participants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		participant_id INTEGER NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
		UNIQUE (team_id, participant_id)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		home_team_id INTEGER NOT NULL REFERENCES teams(id),
		away_team_id INTEGER NOT NULL REFERENCES teams(id),
		referee_id INTEGER REFERENCES participants(id),
		scheduled_at TEXT NOT NULL,
		round TEXT NOT NULL CHECK (round IN ('round_of_16', 'quarterfinal', 'semifinal', 'final')),
		home_goals INTEGER NOT NULL DEFAULT 0,
		away_goals INTEGER NOT NULL DEFAULT 0,
		finalized INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id INTEGER NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		participant_id INTEGER NOT NULL REFERENCES participants(id),
		team_id INTEGER NOT NULL REFERENCES teams(id),
		minute INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id INTEGER NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		participant_id INTEGER NOT NULL REFERENCES participants(id),
		kind TEXT NOT NULL CHECK (kind IN ('yellow', 'red')),
		minute INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS goals_match_idx ON goals (match_id)`,
	`CREATE INDEX IF NOT EXISTS cards_match_idx ON cards (match_id)`,
}
