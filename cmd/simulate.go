package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/matchclock/internal/simulate"
)

const defaultMatchMinutes = 90

func simulateCmd(c *cli) *cobra.Command {
	var (
		minutes        int
		goals, cards   []string
		halfTime       int
		milestoneEvery int
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a scripted match offline and check its invariants",
		Example: `  matchclock simulate --goal home@23 --goal away@70 --card yellow@12
  matchclock simulate --minutes 40 --half-time 20 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			script := simulate.Script{Minutes: minutes}
			for _, g := range goals {
				sg, err := simulate.ParseGoal(g)
				if err != nil {
					return err
				}
				script.Goals = append(script.Goals, sg)
			}
			for _, s := range cards {
				sc, err := simulate.ParseCard(s)
				if err != nil {
					return err
				}
				script.Cards = append(script.Cards, sc)
			}

			if !cmd.Flags().Changed("half-time") {
				halfTime = c.cfg.HalfTimeMinute
			}
			if !cmd.Flags().Changed("milestone-every") {
				milestoneEvery = c.cfg.MilestoneEvery
			}

			rep, err := simulate.Run(cmd.Context(), script,
				simulate.WithHalfTimeMinute(halfTime),
				simulate.WithMilestoneEvery(milestoneEvery),
				simulate.WithLogger(c.log.Named("simulate")))
			if err != nil && !errors.Is(err, simulate.ErrInvariant) {
				return err
			}
			if werr := writeReport(cmd.OutOrStdout(), c.output, rep); werr != nil {
				return werr
			}
			return err
		},
	}
	cmd.Flags().IntVar(&minutes, "minutes", defaultMatchMinutes, "Match length in minutes")
	cmd.Flags().StringSliceVar(&goals, "goal", nil, "Goal as side@minute, repeatable (home@23)")
	cmd.Flags().StringSliceVar(&cards, "card", nil, "Card as kind@minute, repeatable (yellow@12)")
	cmd.Flags().IntVar(&halfTime, "half-time", 0, "Half-time minute (default from config)")
	cmd.Flags().IntVar(&milestoneEvery, "milestone-every", 0, "Milestone period in minutes, 0 disables (default from config)")
	return cmd
}

func writeReport(w io.Writer, format string, rep simulate.Report) error {
	if format == "json" {
		return writeJSON(w, rep)
	}
	if err := simulate.Render(w, rep); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
