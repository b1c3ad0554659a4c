package simulate

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Render writes the timeline and a summary table to w.
func Render(w io.Writer, r Report) error {
	timeline := tablewriter.NewWriter(w)
	timeline.Append([]string{"Minute", "Event", "Detail", "Score"})
	for _, ev := range r.Timeline {
		timeline.Append([]string{
			strconv.Itoa(ev.Minute),
			string(ev.Kind),
			ev.Detail,
			ev.Score.String(),
		})
	}
	if err := timeline.Render(); err != nil {
		return fmt.Errorf("render timeline: %w", err)
	}

	status := "ok"
	if !r.OK() {
		status = fmt.Sprintf("%d violations", len(r.Violations))
	}
	summary := tablewriter.NewWriter(w)
	summary.Append([]string{"Final", "Scripted", "Display", "Minutes", "Half time", "Invariants"})
	summary.Append([]string{
		r.Score.String(),
		r.Expected.String(),
		r.Display,
		strconv.Itoa(r.MinuteCalls),
		strconv.Itoa(r.HalfTimes),
		status,
	})
	if err := summary.Render(); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	for _, v := range r.Violations {
		if _, err := fmt.Fprintln(w, "violation:", v); err != nil {
			return err
		}
	}
	return nil
}
