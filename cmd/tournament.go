package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/okian/matchclock/internal/adapters/repository"
	"github.com/okian/matchclock/internal/domain/model"
	"github.com/okian/matchclock/pkg/logger"
)

const defaultScorersLimit = 10

func seedCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the tournament into an empty record store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if file != "" {
				c.cfg.SeedFile = file
			}
			data, err := c.seedData()
			if err != nil {
				return err
			}
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(cmd, c, store)

			seeded, err := store.Seed(ctx, data)
			if err != nil {
				return err
			}
			if !seeded {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s already holds a tournament; nothing seeded\n", c.cfg.DBPath)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d teams, %d referees and %d matches into %s\n",
				len(data.Teams), len(data.Referees), len(data.Matches), c.cfg.DBPath)
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Seed YAML file (default: built-in tournament)")
	return cmd
}

func matchesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "matches",
		Short: "List scheduled and finalized matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := c.openSeededStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(cmd, c, store)

			matches, err := store.ListMatches(cmd.Context())
			if err != nil {
				return err
			}
			if c.output == "json" {
				return writeJSON(cmd.OutOrStdout(), matches)
			}
			return matchesTable(cmd.OutOrStdout(), matches)
		},
	}
}

func scorersCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "scorers",
		Short: "Show the top scorers table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := c.openSeededStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(cmd, c, store)

			entries, err := store.TopScorers(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if c.output == "json" {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			return scorersTable(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultScorersLimit, "Number of scorers to show")
	return cmd
}

func closeStore(cmd *cobra.Command, c *cli, store *repository.SQLiteStore) {
	if err := store.Close(); err != nil {
		c.log.Error(cmd.Context(), "close store", logger.Error(err))
	}
}

func matchesTable(w io.Writer, matches []model.Match) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "No matches found")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Append([]string{"ID", "Round", "Home", "Away", "Scheduled", "Score", "Status"})
	for _, m := range matches {
		status, score := "scheduled", "-"
		if m.Finalized {
			status = "final"
			score = fmt.Sprintf("%d - %d", m.HomeGoals, m.AwayGoals)
		}
		table.Append([]string{
			strconv.FormatInt(m.ID, 10),
			string(m.Round),
			m.HomeTeam,
			m.AwayTeam,
			m.ScheduledAt.Format("2006-01-02 15:04"),
			score,
			status,
		})
	}
	return table.Render()
}

func scorersTable(w io.Writer, entries []model.ScorerEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No goals recorded yet")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Append([]string{"Rank", "Player", "Team", "Goals"})
	for _, e := range entries {
		table.Append([]string{strconv.Itoa(e.Rank), e.Name, e.Team, strconv.Itoa(e.Goals)})
	}
	return table.Render()
}
