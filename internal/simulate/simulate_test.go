package simulate

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/domain/match"
)

func kinds(r Report) []EventKind {
	out := make([]EventKind, 0, len(r.Timeline))
	for _, ev := range r.Timeline {
		out = append(out, ev.Kind)
	}
	return out
}

func TestParse(t *testing.T) {
	Convey("Goals and cards parse from name@minute", t, func() {
		g, err := ParseGoal("away@23")
		So(err, ShouldBeNil)
		So(g, ShouldResemble, ScriptedGoal{Side: clock.Away, Minute: 23})

		g, err = ParseGoal("local@0")
		So(err, ShouldBeNil)
		So(g.Side, ShouldEqual, clock.Home)

		c, err := ParseCard("amarilla@12")
		So(err, ShouldBeNil)
		So(c, ShouldResemble, ScriptedCard{Kind: match.Yellow, Minute: 12})

		for _, bad := range []string{"home", "home@", "home@-1", "middle@3"} {
			_, err := ParseGoal(bad)
			So(errors.Is(err, ErrInvalidScript), ShouldBeTrue)
		}
		_, err = ParseCard("green@3")
		So(errors.Is(err, ErrInvalidScript), ShouldBeTrue)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a full scripted match", t, func() {
		script := Script{
			Minutes: 90,
			Goals: []ScriptedGoal{
				{Side: clock.Away, Minute: 70},
				{Side: clock.Home, Minute: 23},
				{Side: clock.Home, Minute: 51},
			},
			Cards: []ScriptedCard{{Kind: match.Yellow, Minute: 12}},
		}

		rep, err := Run(context.Background(), script)

		So(err, ShouldBeNil)
		So(rep.OK(), ShouldBeTrue)

		Convey("Then the final score matches the script", func() {
			So(rep.Score, ShouldResemble, clock.Score{Home: 2, Away: 1})
			So(rep.Expected, ShouldResemble, rep.Score)
			So(rep.Display, ShouldEqual, "01:30:00")
		})

		Convey("And every minute is called once and half time once", func() {
			So(rep.MinuteCalls, ShouldEqual, 90)
			So(rep.HalfTimes, ShouldEqual, 1)
		})

		Convey("And the timeline is in clock order", func() {
			So(kinds(rep), ShouldResemble, []EventKind{
				EventCard,      // 12
				EventMilestone, // 15
				EventGoal,      // 23
				EventMilestone, // 30
				EventMilestone, // 45
				EventHalfTime,  // 45
				EventGoal,      // 51
				EventMilestone, // 60
				EventGoal,      // 70
				EventMilestone, // 75
				EventMilestone, // 90
				EventFullTime,
			})
			for i := 1; i < len(rep.Timeline); i++ {
				So(rep.Timeline[i].Minute, ShouldBeGreaterThanOrEqualTo, rep.Timeline[i-1].Minute)
			}
			So(rep.Timeline[2].Detail, ShouldEqual, "home")
			So(rep.Timeline[2].Score, ShouldResemble, clock.Score{Home: 1})
		})
	})

	Convey("A short match never reaches half time", t, func() {
		rep, err := Run(context.Background(), Script{Minutes: 20}, WithMilestoneEvery(0))
		So(err, ShouldBeNil)
		So(rep.HalfTimes, ShouldEqual, 0)
		So(kinds(rep), ShouldResemble, []EventKind{EventFullTime})
	})

	Convey("Half time follows the configured minute", t, func() {
		rep, err := Run(context.Background(), Script{Minutes: 40}, WithHalfTimeMinute(20), WithMilestoneEvery(0))
		So(err, ShouldBeNil)
		So(rep.Timeline[0], ShouldResemble, Event{Minute: 20, Kind: EventHalfTime})
	})

	Convey("A goal at kick off counts at minute zero", t, func() {
		rep, err := Run(context.Background(), Script{Minutes: 1, Goals: []ScriptedGoal{{Side: clock.Away}}})
		So(err, ShouldBeNil)
		So(rep.Timeline[0].Minute, ShouldEqual, 0)
		So(rep.Score, ShouldResemble, clock.Score{Away: 1})
	})

	Convey("Invalid scripts are refused", t, func() {
		_, err := Run(context.Background(), Script{})
		So(errors.Is(err, ErrInvalidScript), ShouldBeTrue)

		_, err = Run(context.Background(), Script{Minutes: 10, Goals: []ScriptedGoal{{Minute: 11}}})
		So(errors.Is(err, ErrInvalidScript), ShouldBeTrue)

		_, err = Run(context.Background(), Script{Minutes: 10, Cards: []ScriptedCard{{Kind: match.Red, Minute: 12}}})
		So(errors.Is(err, ErrInvalidScript), ShouldBeTrue)
	})

	Convey("A cancelled context stops the run", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Run(ctx, Script{Minutes: 90})
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestVerify(t *testing.T) {
	Convey("Violations are reported", t, func() {
		script := Script{Minutes: 50, Goals: []ScriptedGoal{{Side: clock.Home, Minute: 3}}}
		rep := Report{
			Score:       clock.Score{},
			Expected:    script.Expected(),
			MinuteCalls: 50,
			HalfTimes:   2,
			Display:     "00:50:00",
		}
		v := verify(script, 45, rep)
		So(v, ShouldHaveLength, 2)
		So(v[0], ShouldContainSubstring, "final score 0 - 0, scripted 1 - 0")
		So(v[1], ShouldContainSubstring, "half time fired 2 times")
	})
}

func TestRender(t *testing.T) {
	Convey("Render prints the timeline and summary", t, func() {
		rep, err := Run(context.Background(), Script{Minutes: 30, Goals: []ScriptedGoal{{Side: clock.Home, Minute: 5}}})
		So(err, ShouldBeNil)

		var buf bytes.Buffer
		So(Render(&buf, rep), ShouldBeNil)
		out := buf.String()
		So(out, ShouldContainSubstring, "goal")
		So(out, ShouldContainSubstring, "full_time")
		So(out, ShouldContainSubstring, "1 - 0")
		So(out, ShouldContainSubstring, "00:30:00")
		So(out, ShouldNotContainSubstring, "violation:")

		rep.Violations = []string{"forced"}
		buf.Reset()
		So(Render(&buf, rep), ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, "violation: forced")
	})
}
