package match

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchclock/internal/domain/clock"
)

func tickN(e *clock.Engine, n int) {
	for range n {
		e.Tick()
	}
}

func TestCoordinatorMinutes(t *testing.T) {
	Convey("Given a running football clock", t, func() {
		e := clock.New()
		c := New(e)
		e.SetMode(clock.FootballMatch)
		So(e.Start(), ShouldBeTrue)

		var minutes, milestones []int
		halves := 0
		c.OnMatchMinute(func(m int) { minutes = append(minutes, m) })
		c.OnMilestone(func(m int) { milestones = append(milestones, m) })
		c.OnHalfTime(func() { halves++ })

		Convey("When 180 ticks pass", func() {
			tickN(e, 180)

			Convey("Then minutes 1, 2 and 3 are called once each", func() {
				So(minutes, ShouldResemble, []int{1, 2, 3})
				So(milestones, ShouldBeEmpty)
				So(halves, ShouldEqual, 0)
			})
		})

		Convey("When the clock runs past minute 46", func() {
			tickN(e, 46*60)

			Convey("Then half-time fires once and milestones land every 15", func() {
				So(halves, ShouldEqual, 1)
				So(c.HalfTimeFired(), ShouldBeTrue)
				So(milestones, ShouldResemble, []int{15, 30, 45})
				So(len(minutes), ShouldEqual, 46)
			})

			Convey("And after a reset the whistle is armed again", func() {
				e.Reset()
				So(c.HalfTimeFired(), ShouldBeFalse)
				e.Start()
				tickN(e, 45*60)
				So(halves, ShouldEqual, 2)
			})
		})

		Convey("When the clock is paused between minutes", func() {
			tickN(e, 90)
			So(e.Pause(), ShouldBeTrue)
			tickN(e, 600)

			Convey("Then no further minutes are called", func() {
				So(minutes, ShouldResemble, []int{1})
				So(e.ElapsedSeconds(), ShouldEqual, 90)
			})
		})

		Convey("When the engine leaves football mode", func() {
			e.SetMode(clock.Chronometer)
			e.Start()
			tickN(e, 120)

			Convey("Then the coordinator stays quiet", func() {
				So(minutes, ShouldBeEmpty)
			})
		})
	})
}

func TestCoordinatorGoals(t *testing.T) {
	Convey("Given a football clock at minute 23", t, func() {
		e := clock.New()
		c := New(e, WithMilestoneEvery(0))
		e.SetMode(clock.FootballMatch)
		e.Start()
		tickN(e, 23*60+20)

		var seen []GoalEvent
		c.OnGoal(func(ev GoalEvent) { seen = append(seen, ev) })

		Convey("When the home side scores", func() {
			ev, err := c.RecordGoal(clock.Home)

			Convey("Then the event carries minute 23 and the score is 1-0", func() {
				So(err, ShouldBeNil)
				So(ev, ShouldResemble, GoalEvent{Side: clock.Home, ElapsedMinutes: 23})
				So(e.Score(), ShouldResemble, clock.Score{Home: 1})
				So(seen, ShouldResemble, []GoalEvent{ev})
			})

			Convey("And reverting restores 0-0", func() {
				So(c.RevertGoal(ev), ShouldBeNil)
				So(e.Score(), ShouldResemble, clock.Score{})
			})
		})

		Convey("When a card is shown", func() {
			ev, err := c.IssueCard(Red)
			So(err, ShouldBeNil)
			So(ev, ShouldResemble, CardEvent{Kind: Red, ElapsedMinutes: 23})

			_, err = c.IssueCard(CardKind("green"))
			So(err, ShouldEqual, ErrUnknownCard)
		})

		Convey("When the clock is not in football mode", func() {
			e.SetMode(clock.WallClock)
			_, err := c.RecordGoal(clock.Away)
			So(err, ShouldEqual, ErrWrongMode)
			_, err = c.IssueCard(Yellow)
			So(err, ShouldEqual, ErrWrongMode)
			So(seen, ShouldBeEmpty)
		})

		Convey("Re-entering football mode starts the score at 0-0", func() {
			_, _ = c.RecordGoal(clock.Away)
			e.SetMode(clock.Chronometer)
			e.SetMode(clock.FootballMatch)
			So(e.Score(), ShouldResemble, clock.Score{})
		})
	})
}

func TestParseCardKind(t *testing.T) {
	Convey("Card kinds parse in both languages", t, func() {
		k, err := ParseCardKind("amarilla")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, Yellow)
		k, err = ParseCardKind("RED")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, Red)
		_, err = ParseCardKind("blue")
		So(err, ShouldNotBeNil)
	})
}
