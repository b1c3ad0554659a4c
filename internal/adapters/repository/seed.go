package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/matchclock/internal/domain/model"
	"github.com/okian/matchclock/pkg/logger"
)

// SeedData is the initial tournament loaded into an empty store.
type SeedData struct {
	Teams    []SeedTeam          `yaml:"teams"`
	Referees []model.Participant `yaml:"referees"`
	Matches  []SeedMatch         `yaml:"matches"`
}

// SeedTeam is a team with its squad.
type SeedTeam struct {
	model.Team `yaml:",inline"`
	Players    []model.Participant `yaml:"players"`
}

// SeedMatch refers to teams and referee by name.
type SeedMatch struct {
	Home        string      `yaml:"home"`
	Away        string      `yaml:"away"`
	Referee     string      `yaml:"referee"`
	Round       model.Round `yaml:"round"`
	ScheduledAt time.Time   `yaml:"scheduled_at"`
}

// LoadSeedFile reads seed data from a YAML file.
func LoadSeedFile(path string) (SeedData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("read seed file: %w", err)
	}
	var d SeedData
	if err := yaml.Unmarshal(b, &d); err != nil {
		return SeedData{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return d, nil
}

// Seed loads d when the store holds no teams. It reports whether anything was written.
func (s *SQLiteStore) Seed(ctx context.Context, d SeedData) (bool, error) {
	empty, err := s.Empty(ctx)
	if err != nil || !empty {
		return false, err
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		teamIDs := map[string]int64{}
		for _, t := range d.Teams {
			id, err := createTeam(ctx, tx, t.Team)
			if err != nil {
				return err
			}
			teamIDs[t.Name] = id
			for _, p := range t.Players {
				p.Player = true
				if p.Course == "" {
					p.Course = t.Course
				}
				pid, err := createParticipant(ctx, tx, p)
				if err != nil {
					return err
				}
				if err := assignPlayer(ctx, tx, id, pid); err != nil {
					return err
				}
			}
		}

		refIDs := map[string]int64{}
		for _, r := range d.Referees {
			r.Referee = true
			id, err := createParticipant(ctx, tx, r)
			if err != nil {
				return err
			}
			refIDs[r.Name] = id
		}

		for _, m := range d.Matches {
			home, ok := teamIDs[m.Home]
			if !ok {
				return fmt.Errorf("seed match: unknown team %q", m.Home)
			}
			away, ok := teamIDs[m.Away]
			if !ok {
				return fmt.Errorf("seed match: unknown team %q", m.Away)
			}
			if _, err := createMatch(ctx, tx, model.Match{
				HomeTeamID:  home,
				AwayTeamID:  away,
				RefereeID:   refIDs[m.Referee],
				Round:       m.Round,
				ScheduledAt: m.ScheduledAt,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	s.log.Info(ctx, "seeded record store",
		logger.Int("teams", len(d.Teams)),
		logger.Int("referees", len(d.Referees)),
		logger.Int("matches", len(d.Matches)))
	return true, nil
}

func player(name, birth, position string) model.Participant {
	return model.Participant{Name: name, BirthDate: birth, Position: position}
}

// DefaultSeed is the school tournament shipped with the tool: four teams of
// five, two referees and the two semifinals.
func DefaultSeed() SeedData {
	day := time.Date(2026, time.June, 12, 10, 0, 0, 0, time.UTC)
	return SeedData{
		Teams: []SeedTeam{
			{Team: model.Team{Name: "Vipers", Course: "1º ESO A", ShirtColor: "Red"}, Players: []model.Participant{
				player("Carlos González", "2010-03-15", "Goalkeeper"),
				player("Miguel López", "2010-05-20", "Defender"),
				player("Juan Martínez", "2010-07-10", "Midfielder"),
				player("David Sánchez", "2010-04-25", "Forward"),
				player("Pedro García", "2010-06-30", "Forward"),
			}},
			{Team: model.Team{Name: "Sharks", Course: "1º ESO B", ShirtColor: "Blue"}, Players: []model.Participant{
				player("Roberto Fernández", "2010-02-12", "Goalkeeper"),
				player("Antonio Rodríguez", "2010-08-18", "Defender"),
				player("Fernando Romero", "2010-09-22", "Midfielder"),
				player("Luis Torres", "2010-01-05", "Forward"),
				player("Ricardo Pérez", "2010-11-14", "Defender"),
			}},
			{Team: model.Team{Name: "Tigers", Course: "2º ESO A", ShirtColor: "Green"}, Players: []model.Participant{
				player("Arturo Silva", "2009-03-10", "Goalkeeper"),
				player("Javier Vargas", "2009-05-20", "Defender"),
				player("Sergio Castro", "2009-07-15", "Midfielder"),
				player("Oscar Álvarez", "2009-04-28", "Forward"),
				player("Manuel Díaz", "2009-06-12", "Forward"),
			}},
			{Team: model.Team{Name: "Eagles", Course: "2º ESO B", ShirtColor: "Yellow"}, Players: []model.Participant{
				player("Enrique Moreno", "2009-02-08", "Goalkeeper"),
				player("Gonzalo Ruiz", "2009-08-19", "Defender"),
				player("Jesús Soto", "2009-09-24", "Midfielder"),
				player("Vicente Herrera", "2009-01-11", "Forward"),
				player("Mariano Navarro", "2009-10-30", "Defender"),
			}},
		},
		Referees: []model.Participant{
			{Name: "Profesor Antonio", BirthDate: "1970-05-15", Course: "Profesorado"},
			{Name: "Profesor Juan", BirthDate: "1975-08-22", Course: "Profesorado"},
		},
		Matches: []SeedMatch{
			{Home: "Vipers", Away: "Sharks", Referee: "Profesor Antonio", Round: model.SemiFinal, ScheduledAt: day},
			{Home: "Tigers", Away: "Eagles", Referee: "Profesor Juan", Round: model.SemiFinal, ScheduledAt: day.Add(2 * time.Hour)},
		},
	}
}
