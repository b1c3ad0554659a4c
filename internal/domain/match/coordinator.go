// Package match layers football semantics on top of a clock engine: minute
// calls, milestone notices, the half-time whistle and goal/card events pinned
// to the minute on the clock.
package match

import (
	"context"

	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/pkg/logger"
)

// Engine is the part of clock.Engine the coordinator relies on.
type Engine interface {
	Mode() clock.Mode
	ElapsedMinutes() int
	Score() clock.Score
	AddGoal(side clock.Side) error
	RevertGoal(side clock.Side) error
	OnTimeUpdated(fn func(display string))
	OnReset(fn func())
}

// GoalEvent is produced by RecordGoal. ElapsedMinutes is the minute shown on
// the clock when the goal was recorded.
type GoalEvent struct {
	Side           clock.Side `json:"side"`
	ElapsedMinutes int        `json:"elapsed_minutes"`
}

// CardEvent is produced by IssueCard.
type CardEvent struct {
	Kind           CardKind `json:"kind"`
	ElapsedMinutes int      `json:"elapsed_minutes"`
}

// Coordinator watches a football clock and raises match events.
type Coordinator struct {
	engine         Engine
	log            logger.Logger
	milestoneEvery int
	halfTimeMinute int

	lastMinute   int
	halfTimeDone bool

	onMinute    []func(int)
	onMilestone []func(int)
	onHalfTime  []func()
	onGoal      []func(GoalEvent)
	onCard      []func(CardEvent)
}

// New attaches a coordinator to engine.
func New(engine Engine, opts ...Option) *Coordinator {
	c := &Coordinator{
		engine:         engine,
		milestoneEvery: defaultMilestoneEvery,
		halfTimeMinute: defaultHalfTimeMinute,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	engine.OnReset(c.rearm)
	engine.OnTimeUpdated(c.observe)
	return c
}

func (c *Coordinator) OnMatchMinute(fn func(minute int)) { c.onMinute = append(c.onMinute, fn) }
func (c *Coordinator) OnMilestone(fn func(minute int))   { c.onMilestone = append(c.onMilestone, fn) }
func (c *Coordinator) OnHalfTime(fn func())              { c.onHalfTime = append(c.onHalfTime, fn) }
func (c *Coordinator) OnGoal(fn func(GoalEvent))         { c.onGoal = append(c.onGoal, fn) }
func (c *Coordinator) OnCard(fn func(CardEvent))         { c.onCard = append(c.onCard, fn) }

// HalfTimeFired reports whether the half-time whistle already went in this session.
func (c *Coordinator) HalfTimeFired() bool { return c.halfTimeDone }

func (c *Coordinator) rearm() {
	c.lastMinute = 0
	c.halfTimeDone = false
}

func (c *Coordinator) observe(string) {
	if c.engine.Mode() != clock.FootballMatch {
		return
	}
	minute := c.engine.ElapsedMinutes()
	if minute == c.lastMinute {
		return
	}
	c.lastMinute = minute

	for _, fn := range c.onMinute {
		fn(minute)
	}
	if c.milestoneEvery > 0 && minute > 0 && minute%c.milestoneEvery == 0 {
		for _, fn := range c.onMilestone {
			fn(minute)
		}
	}
	if !c.halfTimeDone && minute == c.halfTimeMinute {
		c.halfTimeDone = true
		c.log.Info(context.Background(), "half time", logger.Int("minute", minute))
		for _, fn := range c.onHalfTime {
			fn()
		}
	}
}

// RecordGoal pins a goal to the current minute and bumps the running score.
// Listeners run before RecordGoal returns.
func (c *Coordinator) RecordGoal(side clock.Side) (GoalEvent, error) {
	if c.engine.Mode() != clock.FootballMatch {
		return GoalEvent{}, ErrWrongMode
	}
	if side != clock.Home && side != clock.Away {
		return GoalEvent{}, clock.ErrUnknownSide
	}
	ev := GoalEvent{Side: side, ElapsedMinutes: c.engine.ElapsedMinutes()}
	if err := c.engine.AddGoal(side); err != nil {
		return GoalEvent{}, err
	}
	c.log.Debug(context.Background(), "goal",
		logger.String("side", side.String()),
		logger.Int("minute", ev.ElapsedMinutes),
		logger.String("score", c.engine.Score().String()))
	for _, fn := range c.onGoal {
		fn(ev)
	}
	return ev, nil
}

// RevertGoal undoes the score change of ev. Used when the goal could not be
// stored and the caller chose to compensate.
func (c *Coordinator) RevertGoal(ev GoalEvent) error {
	if c.engine.Mode() != clock.FootballMatch {
		return ErrWrongMode
	}
	return c.engine.RevertGoal(ev.Side)
}

// IssueCard pins a card to the current minute.
func (c *Coordinator) IssueCard(kind CardKind) (CardEvent, error) {
	if c.engine.Mode() != clock.FootballMatch {
		return CardEvent{}, ErrWrongMode
	}
	if !kind.Valid() {
		return CardEvent{}, ErrUnknownCard
	}
	ev := CardEvent{Kind: kind, ElapsedMinutes: c.engine.ElapsedMinutes()}
	for _, fn := range c.onCard {
		fn(ev)
	}
	return ev, nil
}
