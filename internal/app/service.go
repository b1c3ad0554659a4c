// Package service runs one live match clock session: it owns the clock loop,
// turns goals and cards into persistence jobs and exposes the commands the
// HTTP API and CLI call.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/matchclock/internal/adapters/loop"
	eventqueue "github.com/okian/matchclock/internal/adapters/mq/queue"
	workerpool "github.com/okian/matchclock/internal/adapters/mq/worker"
	"github.com/okian/matchclock/internal/adapters/repository"
	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/domain/dedupe"
	"github.com/okian/matchclock/internal/domain/match"
	"github.com/okian/matchclock/internal/domain/model"
	"github.com/okian/matchclock/internal/i18n"
	"github.com/okian/matchclock/pkg/logger"
	"github.com/okian/matchclock/pkg/metrics"
)

// ClockView is the engine state as shown to users.
type ClockView struct {
	clock.Snapshot
	Message       string       `json:"message"`
	HalfTimeFired bool         `json:"half_time_fired"`
	Match         *model.Match `json:"match,omitempty"`
}

// CommandResult reports whether a clock command was applied.
type CommandResult struct {
	Accepted bool      `json:"accepted"`
	Clock    ClockView `json:"clock"`
}

// GoalRequest asks to record a goal for the active match.
type GoalRequest struct {
	Side          clock.Side
	ParticipantID int64
	// RequestID makes the request idempotent when set.
	RequestID string
}

// GoalResult is the outcome of ScoreGoal.
type GoalResult struct {
	Event     match.GoalEvent `json:"event"`
	Score     clock.Score     `json:"score"`
	JobID     string          `json:"job_id,omitempty"`
	Duplicate bool            `json:"duplicate"`
}

// CardRequest asks to record a card for the active match.
type CardRequest struct {
	ParticipantID int64
	Kind          match.CardKind
	RequestID     string
}

// CardResult is the outcome of IssueCard.
type CardResult struct {
	Event     match.CardEvent `json:"event"`
	JobID     string          `json:"job_id,omitempty"`
	Duplicate bool            `json:"duplicate"`
}

// Service wires the clock loop to the record store.
type Service struct {
	mu sync.RWMutex

	store repository.Store
	clock clockwork.Clock

	// Core components, built by Start
	tr      *i18n.Translator
	ticker  *loop.Ticker
	engine  *clock.Engine
	coord   *match.Coordinator
	loop    *loop.Loop
	queue   *eventqueue.InMemoryQueue
	pool    *workerpool.Pool
	deduper dedupe.Deduper
	notes   *ring

	// current is the match being played, nil outside a match.
	current atomic.Pointer[model.Match]
	// closing is set while FinalizeMatch runs. Loop goroutine only.
	closing bool
	// lifecycle serializes StartMatch and FinalizeMatch.
	lifecycle sync.Mutex
	pendingMu sync.Mutex
	pending   map[string]match.GoalEvent

	// Configuration
	locale             string
	tickInterval       time.Duration
	format24h          bool
	countdownMinutes   int
	halfTimeMinute     int
	milestoneEvery     int
	queueSize          int
	workerCount        int
	retries            int
	retryBackoff       time.Duration
	dedupeSize         int
	rollback           bool
	maxScorers         int
	notificationBuffer int
	tickHook           func()

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service over store with default configuration.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:              store,
		clock:              clockwork.NewRealClock(),
		locale:             i18n.Default,
		tickInterval:       time.Second,
		format24h:          true,
		countdownMinutes:   90,
		halfTimeMinute:     45,
		milestoneEvery:     15,
		queueSize:          1024,
		workerCount:        1,
		retries:            3,
		retryBackoff:       100 * time.Millisecond,
		dedupeSize:         4096,
		maxScorers:         100,
		notificationBuffer: 200,
		pending:            map[string]match.GoalEvent{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the clock session and starts the loop and persistence workers.
// Their lifetime ends with Stop, not with ctx.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	tr, err := i18n.New(s.locale)
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	s.tr = tr
	s.notes = newRing(s.notificationBuffer)

	s.ticker = loop.NewTicker(s.clock, s.tickInterval)
	s.engine = clock.New(
		clock.WithClock(s.clock),
		clock.WithTickSource(s.ticker),
		clock.WithFormat24h(s.format24h),
		clock.WithDefaultAlarmMessage(tr.DefaultAlarmMessage()),
		clock.WithDefaultCountdownMinutes(s.countdownMinutes),
		clock.WithLogger(s.logger.Named("clock")),
	)
	s.coord = match.New(s.engine,
		match.WithHalfTimeMinute(s.halfTimeMinute),
		match.WithMilestoneEvery(s.milestoneEvery),
		match.WithLogger(s.logger.Named("match")),
	)
	s.subscribe()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.loop = loop.New(s.engine, s.ticker,
		loop.WithLogger(s.logger.Named("loop")),
		loop.WithTickHook(s.tickHook),
	)
	go s.loop.Run(runCtx)

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store,
		workerpool.WithRetries(s.retries),
		workerpool.WithBackoff(s.retryBackoff),
		workerpool.WithRetryable(retryable),
		workerpool.WithFailureHandler(s.onPersistFailure),
		workerpool.WithLogger(s.logger.Named("worker")),
	)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "match clock service started",
		logger.String("locale", tr.Locale()),
		logger.Duration("tick", s.tickInterval),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("rollback", s.rollback),
	)
	return nil
}

// Stop drains pending writes, then stops the loop. The store stays open.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	pool, lp, cancel := s.pool, s.loop, s.cancel
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping match clock service")

	// workers may still need the loop to revert goals, so they go first
	err := pool.Shutdown(ctx)
	cancel()
	select {
	case <-lp.Done():
	case <-ctx.Done():
		err = errors.Join(err, ctx.Err())
	}
	s.logger.Info(ctx, "match clock service stopped")
	return err
}

func retryable(err error) bool {
	return !repository.Permanent(err) && !errors.Is(err, context.Canceled)
}

// subscribe turns engine and coordinator events into metrics and notifications.
// Listeners run on the loop goroutine.
func (s *Service) subscribe() {
	s.engine.OnStatus(func(st clock.Status) {
		if st.Code.Rejected() {
			metrics.RecordRejectedCommand(string(st.Code))
		}
	})
	s.engine.OnModeChanged(func(m clock.Mode) {
		metrics.RecordModeSwitch(m.String())
		s.notify(i18n.KeyModeChanged, 0, s.tr.Word(m.String()))
	})
	s.engine.OnAlarm(func(msg string) {
		metrics.RecordAlarmTriggered()
		s.notify(i18n.KeyAlarm, 0, msg)
	})
	s.engine.OnFinished(func() {
		metrics.RecordTimerFinished()
		s.notify(i18n.KeyTimerFinished, 0)
	})

	s.coord.OnMatchMinute(func(minute int) {
		metrics.RecordMatchMinute()
		s.notify(i18n.KeyMatchMinute, minute, minute)
	})
	s.coord.OnMilestone(func(minute int) {
		s.notify(i18n.KeyMilestone, minute, minute)
	})
	s.coord.OnHalfTime(func() {
		metrics.RecordHalfTime()
		s.notify(i18n.KeyHalfTime, s.engine.ElapsedMinutes())
	})
	s.coord.OnGoal(func(ev match.GoalEvent) {
		metrics.RecordGoal(ev.Side.String())
		s.notify(i18n.KeyGoal, ev.ElapsedMinutes, s.tr.Word(ev.Side.String()), ev.ElapsedMinutes, s.engine.Score().String())
	})
	s.coord.OnCard(func(ev match.CardEvent) {
		metrics.RecordCard(string(ev.Kind))
		s.notify(i18n.KeyCard, ev.ElapsedMinutes, s.tr.Word(string(ev.Kind)), ev.ElapsedMinutes)
	})
}

func (s *Service) notify(key i18n.Key, minute int, args ...any) {
	var matchID int64
	if m := s.current.Load(); m != nil {
		matchID = m.ID
	}
	s.push(key, matchID, minute, args...)
}

func (s *Service) push(key i18n.Key, matchID int64, minute int, args ...any) {
	n := Notification{
		Kind:    strings.TrimPrefix(string(key), "notify."),
		Message: s.tr.Message(key, args...),
		MatchID: matchID,
		Minute:  minute,
		At:      s.clock.Now(),
	}
	s.notes.push(n)
	s.logger.Info(context.Background(), n.Message,
		logger.String("kind", n.Kind),
		logger.Int64("match_id", matchID),
		logger.Int("minute", minute))
}

// loopRef returns the loop once Start has run.
func (s *Service) loopRef() (*loop.Loop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loop == nil {
		return nil, ErrNotStarted
	}
	return s.loop, nil
}

// do runs fn on the loop goroutine.
func (s *Service) do(ctx context.Context, op string, fn func()) error {
	lp, err := s.loopRef()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := lp.Do(ctx, fn); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// view must run on the loop goroutine.
func (s *Service) view() ClockView {
	snap := s.engine.Snapshot()
	return ClockView{
		Snapshot:      snap,
		Message:       s.tr.Status(snap.Status),
		HalfTimeFired: s.coord.HalfTimeFired(),
		Match:         s.current.Load(),
	}
}

func (s *Service) command(ctx context.Context, op string, fn func(e *clock.Engine) bool) (CommandResult, error) {
	var res CommandResult
	err := s.do(ctx, op, func() {
		res.Accepted = fn(s.engine)
		res.Clock = s.view()
	})
	return res, err
}

// SetMode switches the clock mode. Leaving a match abandons it; goals already
// stored are kept.
func (s *Service) SetMode(ctx context.Context, m clock.Mode) (CommandResult, error) {
	return s.command(ctx, "set mode", func(e *clock.Engine) bool {
		if !e.SetMode(m) {
			return false
		}
		s.closing = false
		if prev := s.current.Swap(nil); prev != nil {
			s.logger.Warn(ctx, "match abandoned by mode change",
				logger.Int64("match_id", prev.ID), logger.String("mode", m.String()))
		}
		return true
	})
}

func (s *Service) StartClock(ctx context.Context) (CommandResult, error) {
	return s.command(ctx, "start clock", (*clock.Engine).Start)
}

func (s *Service) PauseClock(ctx context.Context) (CommandResult, error) {
	return s.command(ctx, "pause clock", (*clock.Engine).Pause)
}

func (s *Service) ResetClock(ctx context.Context) (CommandResult, error) {
	return s.command(ctx, "reset clock", (*clock.Engine).Reset)
}

// SetDuration sets the countdown length in minutes.
func (s *Service) SetDuration(ctx context.Context, minutes int) (CommandResult, error) {
	return s.command(ctx, "set duration", func(e *clock.Engine) bool { return e.SetDuration(minutes) })
}

// SetAlarm arms the alarm. An empty message uses the localized default.
func (s *Service) SetAlarm(ctx context.Context, at clock.TimeOfDay, message string) (CommandResult, error) {
	return s.command(ctx, "set alarm", func(e *clock.Engine) bool { return e.SetAlarm(at, message) })
}

func (s *Service) ClearAlarm(ctx context.Context) (CommandResult, error) {
	return s.command(ctx, "clear alarm", func(e *clock.Engine) bool {
		e.ClearAlarm()
		return true
	})
}

func (s *Service) SetFormat24h(ctx context.Context, on bool) (CommandResult, error) {
	return s.command(ctx, "set format", func(e *clock.Engine) bool {
		e.SetFormat24h(on)
		return true
	})
}

// Snapshot returns the current clock view.
func (s *Service) Snapshot(ctx context.Context) (ClockView, error) {
	var v ClockView
	err := s.do(ctx, "snapshot", func() { v = s.view() })
	return v, err
}

// StartMatch enters football mode for matchID and starts the clock from zero.
// Finalized and unknown matches are refused.
func (s *Service) StartMatch(ctx context.Context, matchID int64) (ClockView, error) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if _, err := s.loopRef(); err != nil {
		return ClockView{}, fmt.Errorf("start match: %w", err)
	}
	if cur := s.current.Load(); cur != nil {
		return ClockView{}, fmt.Errorf("start match %d: %w (match %d)", matchID, ErrMatchInProgress, cur.ID)
	}
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return ClockView{}, fmt.Errorf("start match %d: %w", matchID, err)
	}
	if m.Finalized {
		return ClockView{}, fmt.Errorf("start match %d: %w", matchID, repository.ErrMatchFinalized)
	}
	s.clearPending()

	var v ClockView
	err = s.do(ctx, "start match", func() {
		s.current.Store(&m)
		s.closing = false
		s.engine.SetMode(clock.FootballMatch)
		s.engine.Start()
		v = s.view()
	})
	if err != nil {
		s.current.Store(nil)
		return ClockView{}, err
	}
	s.push(i18n.KeyMatchStarted, m.ID, 0, m.HomeTeam, m.AwayTeam)
	return v, nil
}

// ActiveMatch returns the match being played.
func (s *Service) ActiveMatch() (model.Match, bool) {
	m := s.current.Load()
	if m == nil {
		return model.Match{}, false
	}
	return *m, true
}

func dedupeKey(kind model.JobKind, requestID string) string {
	if requestID == "" {
		return ""
	}
	return string(kind) + ":" + requestID
}

// claim records key. It reports false for a repeated request.
func (s *Service) claim(ctx context.Context, key string) bool {
	if key == "" {
		return true
	}
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordDuplicateEvent()
		s.logger.Debug(ctx, "duplicate request", logger.String("key", key))
		return false
	}
	return true
}

func (s *Service) release(ctx context.Context, key string) {
	if key != "" {
		s.deduper.Unrecord(ctx, key)
	}
}

// ScoreGoal records a goal at the current minute, updates the running score
// and queues the write to the store. The score is not rolled back if the
// write later fails unless rollback was enabled.
func (s *Service) ScoreGoal(ctx context.Context, req GoalRequest) (GoalResult, error) {
	m := s.current.Load()
	if m == nil {
		return GoalResult{}, fmt.Errorf("score goal: %w", ErrNoActiveMatch)
	}
	side, err := s.store.SideOf(ctx, m.ID, req.ParticipantID)
	if err != nil {
		return GoalResult{}, fmt.Errorf("score goal: %w", err)
	}
	if side != req.Side {
		return GoalResult{}, fmt.Errorf("score goal: participant %d plays %s: %w", req.ParticipantID, side, ErrSideMismatch)
	}

	key := dedupeKey(model.JobGoal, req.RequestID)
	if !s.claim(ctx, key) {
		return GoalResult{Duplicate: true}, nil
	}

	var (
		ev    match.GoalEvent
		score clock.Score
		gerr  error
	)
	err = s.do(ctx, "score goal", func() {
		if !s.accepting(m.ID) {
			gerr = ErrNoActiveMatch
			return
		}
		ev, gerr = s.coord.RecordGoal(side)
		score = s.engine.Score()
	})
	if err == nil {
		err = gerr
	}
	if err != nil {
		s.release(ctx, key)
		return GoalResult{}, fmt.Errorf("score goal: %w", err)
	}

	job := model.NewGoalJob(m.ID, req.ParticipantID, ev, req.RequestID, s.clock.Now())
	if s.rollback {
		s.trackPending(job.ID, ev)
	}
	if !s.queue.Enqueue(ctx, job) {
		s.takePending(job.ID)
		if err := s.do(ctx, "revert goal", func() { gerr = s.coord.RevertGoal(ev) }); err != nil || gerr != nil {
			s.logger.Error(ctx, "could not revert unqueued goal", logger.Error(errors.Join(err, gerr)))
		}
		s.release(ctx, key)
		return GoalResult{}, fmt.Errorf("score goal: %w", ErrBackpressure)
	}
	return GoalResult{Event: ev, Score: score, JobID: job.ID}, nil
}

// accepting reports whether events for matchID may still be recorded. It must
// run on the loop goroutine.
func (s *Service) accepting(matchID int64) bool {
	cur := s.current.Load()
	return cur != nil && cur.ID == matchID && !s.closing
}

// IssueCard records a card at the current minute and queues the write.
func (s *Service) IssueCard(ctx context.Context, req CardRequest) (CardResult, error) {
	m := s.current.Load()
	if m == nil {
		return CardResult{}, fmt.Errorf("issue card: %w", ErrNoActiveMatch)
	}
	if !req.Kind.Valid() {
		return CardResult{}, fmt.Errorf("issue card: %w", match.ErrUnknownCard)
	}
	if _, err := s.store.SideOf(ctx, m.ID, req.ParticipantID); err != nil {
		return CardResult{}, fmt.Errorf("issue card: %w", err)
	}

	key := dedupeKey(model.JobCard, req.RequestID)
	if !s.claim(ctx, key) {
		return CardResult{Duplicate: true}, nil
	}

	var (
		ev   match.CardEvent
		cerr error
	)
	err := s.do(ctx, "issue card", func() {
		if !s.accepting(m.ID) {
			cerr = ErrNoActiveMatch
			return
		}
		ev, cerr = s.coord.IssueCard(req.Kind)
	})
	if err == nil {
		err = cerr
	}
	if err != nil {
		s.release(ctx, key)
		return CardResult{}, fmt.Errorf("issue card: %w", err)
	}

	job := model.NewCardJob(m.ID, req.ParticipantID, ev, req.RequestID, s.clock.Now())
	if !s.queue.Enqueue(ctx, job) {
		s.release(ctx, key)
		return CardResult{}, fmt.Errorf("issue card: %w", ErrBackpressure)
	}
	return CardResult{Event: ev, JobID: job.ID}, nil
}

func (s *Service) trackPending(jobID string, ev match.GoalEvent) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.pending[jobID] = ev
}

func (s *Service) takePending(jobID string) (match.GoalEvent, bool) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	ev, ok := s.pending[jobID]
	delete(s.pending, jobID)
	return ev, ok
}

func (s *Service) clearPending() {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	clear(s.pending)
}

// onPersistFailure runs on a worker goroutine after a job exhausted its retries.
func (s *Service) onPersistFailure(ctx context.Context, j model.Job, err error) { //nolint:gocritic // hugeParam: jobs travel by value
	s.push(i18n.KeyPersistFailed, j.MatchID, j.Minute, s.tr.Word(string(j.Kind)), j.Minute)
	s.release(ctx, dedupeKey(j.Kind, j.RequestID))

	if j.Kind != model.JobGoal {
		return
	}
	ev, ok := s.takePending(j.ID)
	if !ok {
		return
	}
	if m := s.current.Load(); m == nil || m.ID != j.MatchID {
		return
	}
	var rerr error
	if derr := s.do(ctx, "revert goal", func() { rerr = s.coord.RevertGoal(ev) }); derr != nil || rerr != nil {
		s.logger.Error(ctx, "could not revert goal", logger.String("job_id", j.ID), logger.Error(errors.Join(derr, rerr)))
		return
	}
	s.logger.Warn(ctx, "goal reverted after failed write",
		logger.String("job_id", j.ID),
		logger.String("side", ev.Side.String()),
		logger.Error(err))
}

// FinalizeMatch pauses the clock, waits for queued writes, stores the result
// tallied from the recorded goals and resets the clock.
func (s *Service) FinalizeMatch(ctx context.Context) (model.Match, error) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	m := s.current.Load()
	if m == nil {
		return model.Match{}, fmt.Errorf("finalize match: %w", ErrNoActiveMatch)
	}

	var running clock.Score
	if err := s.do(ctx, "finalize match", func() {
		s.closing = true
		if s.engine.Running() {
			s.engine.Pause()
		}
		running = s.engine.Score()
	}); err != nil {
		return model.Match{}, err
	}
	if err := s.queue.Wait(ctx); err != nil {
		s.reopen(ctx, m.ID)
		return model.Match{}, fmt.Errorf("finalize match %d: waiting for pending writes: %w", m.ID, err)
	}

	tally, err := s.store.GoalTally(ctx, m.ID)
	if err != nil {
		s.reopen(ctx, m.ID)
		return model.Match{}, fmt.Errorf("finalize match %d: %w", m.ID, err)
	}
	if tally != running {
		s.logger.Warn(ctx, "running score differs from recorded goals",
			logger.Int64("match_id", m.ID),
			logger.String("running", running.String()),
			logger.String("recorded", tally.String()))
	}
	if err := s.store.FinalizeMatch(ctx, m.ID, tally.Home, tally.Away); err != nil {
		s.reopen(ctx, m.ID)
		return model.Match{}, fmt.Errorf("finalize match %d: %w", m.ID, err)
	}

	if err := s.do(ctx, "finalize match", func() {
		s.current.Store(nil)
		s.closing = false
		s.engine.Reset()
	}); err != nil {
		return model.Match{}, err
	}
	s.clearPending()
	metrics.RecordMatchFinalized()
	s.push(i18n.KeyMatchFinal, m.ID, 0, tally.Home, tally.Away)

	return s.store.GetMatch(ctx, m.ID)
}

// reopen lets events for matchID through again after a failed finalize. The
// clock stays paused.
func (s *Service) reopen(ctx context.Context, matchID int64) {
	err := s.do(context.WithoutCancel(ctx), "reopen match", func() {
		if cur := s.current.Load(); cur != nil && cur.ID == matchID {
			s.closing = false
		}
	})
	if err != nil {
		s.logger.Warn(ctx, "could not reopen match after failed finalize",
			logger.Int64("match_id", matchID), logger.Error(err))
	}
}

// Reconcile waits for queued writes and replaces the running score with the
// recorded goals.
func (s *Service) Reconcile(ctx context.Context) (clock.Score, error) {
	m := s.current.Load()
	if m == nil {
		return clock.Score{}, fmt.Errorf("reconcile: %w", ErrNoActiveMatch)
	}
	if err := s.queue.Wait(ctx); err != nil {
		return clock.Score{}, fmt.Errorf("reconcile: %w", err)
	}
	tally, err := s.store.GoalTally(ctx, m.ID)
	if err != nil {
		return clock.Score{}, fmt.Errorf("reconcile: %w", err)
	}
	var serr error
	if err := s.do(ctx, "reconcile", func() { serr = s.engine.SetScore(tally) }); err != nil {
		return clock.Score{}, err
	}
	if serr != nil {
		return clock.Score{}, fmt.Errorf("reconcile: %w", serr)
	}
	s.notify(i18n.KeyReconciled, 0, tally.String())
	return tally, nil
}

// Notifications returns up to n recent notifications, oldest first. n <= 0
// returns all kept.
func (s *Service) Notifications(n int) []Notification {
	s.mu.RLock()
	notes := s.notes
	s.mu.RUnlock()
	if notes == nil {
		return nil
	}
	return notes.last(n)
}

// Roster lists the players of matchID, or of the active match when matchID is 0.
func (s *Service) Roster(ctx context.Context, matchID int64) ([]model.RosterEntry, error) {
	if matchID == 0 {
		m := s.current.Load()
		if m == nil {
			return nil, fmt.Errorf("roster: %w", ErrNoActiveMatch)
		}
		matchID = m.ID
	}
	return s.store.Roster(ctx, matchID)
}

// TopScorers returns the n best scorers across all matches.
func (s *Service) TopScorers(ctx context.Context, n int) ([]model.ScorerEntry, error) {
	if n <= 0 || n > s.maxScorers {
		return nil, fmt.Errorf("top scorers: %w: %d (max %d)", ErrInvalidLimit, n, s.maxScorers)
	}
	return s.store.TopScorers(ctx, n)
}

// MaxScorersLimit is the largest n TopScorers accepts.
func (s *Service) MaxScorersLimit() int { return s.maxScorers }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	started := s.started
	stats := map[string]any{
		"started":     started,
		"locale":      s.locale,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"rollback":    s.rollback,
	}
	if started {
		stats["queueLength"] = s.queue.Len()
		stats["pendingWrites"] = s.queue.Pending()
		stats["dedupeKeys"] = s.deduper.Size()
		stats["notifications"] = s.notes.len()
	}
	s.mu.RUnlock()

	if m := s.current.Load(); m != nil {
		stats["activeMatch"] = m.ID
	}
	if started {
		if v, err := s.Snapshot(ctx); err == nil {
			stats["mode"] = v.Mode.String()
			stats["running"] = v.Running
			stats["score"] = v.Score.String()
		}
	}
	return stats
}
