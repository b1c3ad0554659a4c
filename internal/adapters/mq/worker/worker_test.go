package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchclock/internal/adapters/mq/queue"
	"github.com/okian/matchclock/internal/adapters/mq/worker"
	"github.com/okian/matchclock/internal/domain/match"
	"github.com/okian/matchclock/internal/domain/model"
	logging "github.com/okian/matchclock/pkg/logger"
)

var errFlaky = errors.New("database is locked")
var errFinal = errors.New("match already finalized")

type write struct {
	kind    string
	matchID int64
	minute  int
	card    match.CardKind
}

type fakePersister struct {
	mu       sync.Mutex
	writes   []write
	failures int
	err      error
	calls    int
}

func (f *fakePersister) fail() error {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return f.err
	}
	return nil
}

func (f *fakePersister) RecordGoal(_ context.Context, matchID, _ int64, minute int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	f.writes = append(f.writes, write{kind: "goal", matchID: matchID, minute: minute})
	return nil
}

func (f *fakePersister) RecordCard(_ context.Context, matchID, _ int64, kind match.CardKind, minute int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	f.writes = append(f.writes, write{kind: "card", matchID: matchID, minute: minute, card: kind})
	return nil
}

func (f *fakePersister) snapshot() ([]write, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]write(nil), f.writes...), f.calls
}

func TestPool(t *testing.T) {
	logging.Init(logging.WithWriter(&nopWriter{}))

	convey.Convey("Given a pool draining a queue into a persister", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		p := &fakePersister{}

		var failedMu sync.Mutex
		var failed []model.Job
		onFailure := func(_ context.Context, j model.Job, _ error) {
			failedMu.Lock()
			defer failedMu.Unlock()
			failed = append(failed, j)
		}

		start := func(opts ...worker.Option) *worker.Pool {
			opts = append(opts, worker.WithBackoff(0), worker.WithFailureHandler(onFailure))
			pool := worker.NewPool(1, q, p, opts...)
			pool.Start(ctx)
			return pool
		}

		convey.Convey("Goals and cards are written in order", func() {
			pool := start()
			convey.So(pool.Size(), convey.ShouldEqual, 1)

			q.Enqueue(ctx, model.Job{ID: "1", Kind: model.JobGoal, MatchID: 7, Minute: 23})
			q.Enqueue(ctx, model.Job{ID: "2", Kind: model.JobCard, MatchID: 7, Minute: 30, Card: match.Yellow})
			convey.So(q.Wait(ctx), convey.ShouldBeNil)

			writes, _ := p.snapshot()
			convey.So(writes, convey.ShouldResemble, []write{
				{kind: "goal", matchID: 7, minute: 23},
				{kind: "card", matchID: 7, minute: 30, card: match.Yellow},
			})
			convey.So(failed, convey.ShouldBeEmpty)
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
		})

		convey.Convey("Transient failures are retried", func() {
			p.failures, p.err = 2, errFlaky
			start(worker.WithRetries(3))

			q.Enqueue(ctx, model.Job{ID: "1", Kind: model.JobGoal, MatchID: 7, Minute: 5})
			convey.So(q.Wait(ctx), convey.ShouldBeNil)

			writes, calls := p.snapshot()
			convey.So(writes, convey.ShouldHaveLength, 1)
			convey.So(calls, convey.ShouldEqual, 3)
			convey.So(failed, convey.ShouldBeEmpty)
		})

		convey.Convey("Exhausted retries reach the failure handler", func() {
			p.failures, p.err = 10, errFlaky
			start(worker.WithRetries(1))

			q.Enqueue(ctx, model.Job{ID: "lost", Kind: model.JobGoal, MatchID: 7, Minute: 5})
			convey.So(q.Wait(ctx), convey.ShouldBeNil)

			_, calls := p.snapshot()
			convey.So(calls, convey.ShouldEqual, 2)
			failedMu.Lock()
			defer failedMu.Unlock()
			convey.So(failed, convey.ShouldHaveLength, 1)
			convey.So(failed[0].ID, convey.ShouldEqual, "lost")
		})

		convey.Convey("Permanent failures are not retried", func() {
			p.failures, p.err = 1, errFinal
			start(worker.WithRetries(5), worker.WithRetryable(func(err error) bool {
				return !errors.Is(err, errFinal)
			}))

			q.Enqueue(ctx, model.Job{ID: "x", Kind: model.JobGoal, MatchID: 7, Minute: 5})
			convey.So(q.Wait(ctx), convey.ShouldBeNil)

			_, calls := p.snapshot()
			convey.So(calls, convey.ShouldEqual, 1)
			failedMu.Lock()
			defer failedMu.Unlock()
			convey.So(failed, convey.ShouldHaveLength, 1)
		})

		convey.Convey("Unknown job kinds fail", func() {
			start(worker.WithRetries(0))
			q.Enqueue(ctx, model.Job{ID: "?", Kind: "penalty"})
			convey.So(q.Wait(ctx), convey.ShouldBeNil)

			failedMu.Lock()
			defer failedMu.Unlock()
			convey.So(failed, convey.ShouldHaveLength, 1)
		})
	})
}

func TestWorkerBackoff(t *testing.T) {
	convey.Convey("Given a worker whose first write fails", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fc := clockwork.NewFakeClock()
		q := queue.NewInMemoryQueue()
		p := &fakePersister{failures: 1, err: errFlaky}
		w := worker.NewInMemoryWorker(q, p, worker.WithClock(fc), worker.WithRetries(2), worker.WithBackoff(time.Second))
		go w.Run(ctx)

		q.Enqueue(ctx, model.Job{ID: "1", Kind: model.JobGoal, MatchID: 3, Minute: 10})

		convey.Convey("The retry waits for the backoff to elapse", func() {
			convey.So(fc.BlockUntilContext(ctx, 1), convey.ShouldBeNil)
			_, calls := p.snapshot()
			convey.So(calls, convey.ShouldEqual, 1)

			fc.Advance(time.Second)
			convey.So(q.Wait(ctx), convey.ShouldBeNil)
			writes, calls := p.snapshot()
			convey.So(calls, convey.ShouldEqual, 2)
			convey.So(writes, convey.ShouldHaveLength, 1)
		})
	})
}

func TestWorkerShutdown(t *testing.T) {
	convey.Convey("Given an idle worker", t, func() {
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, &fakePersister{})
		go w.Run(context.Background())

		convey.Convey("Shutdown returns promptly", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
		})
	})
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
