// Package simulate plays a scripted football match through the clock engine
// and match coordinator without wall time, collecting the events they raise.
package simulate

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/domain/match"
	"github.com/okian/matchclock/pkg/logger"
)

// EventKind labels a timeline entry.
type EventKind string

const (
	EventMilestone EventKind = "milestone"
	EventHalfTime  EventKind = "half_time"
	EventGoal      EventKind = "goal"
	EventCard      EventKind = "card"
	EventFullTime  EventKind = "full_time"
)

// Event is one entry of the match timeline.
type Event struct {
	Minute int         `json:"minute"`
	Kind   EventKind   `json:"kind"`
	Detail string      `json:"detail,omitempty"`
	Score  clock.Score `json:"score"`
}

// Report is the outcome of a simulated match.
type Report struct {
	Timeline    []Event     `json:"timeline"`
	Score       clock.Score `json:"score"`
	Expected    clock.Score `json:"expected"`
	MinuteCalls int         `json:"minute_calls"`
	HalfTimes   int         `json:"half_times"`
	Display     string      `json:"display"`
	Violations  []string    `json:"violations,omitempty"`
}

// OK reports whether every invariant held.
func (r Report) OK() bool { return len(r.Violations) == 0 }

type runner struct {
	halfTimeMinute int
	milestoneEvery int
	log            logger.Logger
}

// Run plays script second by second. The returned error wraps ErrInvariant
// when the report carries violations; the report is returned either way.
func Run(ctx context.Context, script Script, opts ...Option) (Report, error) {
	r := &runner{halfTimeMinute: 45, milestoneEvery: 15, log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	if err := script.Validate(); err != nil {
		return Report{}, err
	}

	engine := clock.New(clock.WithLogger(r.log))
	coord := match.New(engine,
		match.WithHalfTimeMinute(r.halfTimeMinute),
		match.WithMilestoneEvery(r.milestoneEvery),
		match.WithLogger(r.log))

	rep := Report{Expected: script.Expected()}
	lastMinute := 0
	add := func(minute int, kind EventKind, detail string) {
		rep.Timeline = append(rep.Timeline, Event{Minute: minute, Kind: kind, Detail: detail, Score: engine.Score()})
	}
	coord.OnMatchMinute(func(minute int) {
		if minute != lastMinute+1 {
			rep.Violations = append(rep.Violations, fmt.Sprintf("minute %d followed minute %d", minute, lastMinute))
		}
		lastMinute = minute
		rep.MinuteCalls++
	})
	coord.OnMilestone(func(minute int) { add(minute, EventMilestone, "") })
	coord.OnHalfTime(func() {
		rep.HalfTimes++
		add(engine.ElapsedMinutes(), EventHalfTime, "")
	})
	coord.OnGoal(func(ev match.GoalEvent) { add(ev.ElapsedMinutes, EventGoal, ev.Side.String()) })
	coord.OnCard(func(ev match.CardEvent) { add(ev.ElapsedMinutes, EventCard, string(ev.Kind)) })

	if !engine.SetMode(clock.FootballMatch) || !engine.Start() {
		return Report{}, fmt.Errorf("simulate: engine refused to start: %s", engine.Status().Code)
	}

	goals, cards := script.byMinute()
	apply := func(minute int) error {
		for _, g := range goals[minute] {
			if _, err := coord.RecordGoal(g.Side); err != nil {
				return fmt.Errorf("simulate: goal at %d: %w", minute, err)
			}
		}
		for _, c := range cards[minute] {
			if _, err := coord.IssueCard(c.Kind); err != nil {
				return fmt.Errorf("simulate: card at %d: %w", minute, err)
			}
		}
		return nil
	}

	if err := apply(0); err != nil {
		return Report{}, err
	}
	for s := 1; s <= script.Minutes*60; s++ {
		engine.Tick()
		if engine.ElapsedSeconds()%60 != 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Report{}, fmt.Errorf("simulate: %w", err)
		}
		if err := apply(engine.ElapsedMinutes()); err != nil {
			return Report{}, err
		}
	}
	engine.Pause()

	rep.Score = engine.Score()
	rep.Display = engine.Display()
	add(engine.ElapsedMinutes(), EventFullTime, rep.Score.String())
	rep.Violations = append(rep.Violations, verify(script, r.halfTimeMinute, rep)...)

	r.log.Info(ctx, "simulated match",
		logger.Int("minutes", script.Minutes),
		logger.String("score", rep.Score.String()),
		logger.Int("events", len(rep.Timeline)),
		logger.Int("violations", len(rep.Violations)))

	if !rep.OK() {
		return rep, fmt.Errorf("%w: %s", ErrInvariant, strings.Join(rep.Violations, "; "))
	}
	return rep, nil
}

func verify(script Script, halfTimeMinute int, rep Report) []string {
	var out []string
	if rep.Score != rep.Expected {
		out = append(out, fmt.Sprintf("final score %s, scripted %s", rep.Score, rep.Expected))
	}
	wantHalf := 0
	if script.Minutes >= halfTimeMinute {
		wantHalf = 1
	}
	if rep.HalfTimes != wantHalf {
		out = append(out, fmt.Sprintf("half time fired %d times, want %d", rep.HalfTimes, wantHalf))
	}
	if rep.MinuteCalls != script.Minutes {
		out = append(out, fmt.Sprintf("%d minute calls for a %d minute match", rep.MinuteCalls, script.Minutes))
	}
	if want := clock.FormatElapsed(script.Minutes * 60); rep.Display != want {
		out = append(out, fmt.Sprintf("display %s at full time, want %s", rep.Display, want))
	}
	return out
}
