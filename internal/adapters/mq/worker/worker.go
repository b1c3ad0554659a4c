// Package worker drains persistence jobs from the queue into the record store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/matchclock/internal/domain/match"
	"github.com/okian/matchclock/internal/domain/model"
	"github.com/okian/matchclock/pkg/logger"
	"github.com/okian/matchclock/pkg/metrics"
)

const (
	defaultRetries      = 3
	defaultBackoff      = 100 * time.Millisecond
	poolShutdownTimeout = 30 * time.Second
)

// Persister writes goals and cards to the record store.
type Persister interface {
	RecordGoal(ctx context.Context, matchID, participantID int64, minute int) error
	RecordCard(ctx context.Context, matchID, participantID int64, kind match.CardKind, minute int) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Job
	Ack()
}

// FailureHandler is told about a job that could not be persisted.
type FailureHandler func(ctx context.Context, j model.Job, err error)

// Worker processes jobs until its context ends or the queue closes.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	persister Persister
	name      string

	retries   int
	backoff   time.Duration
	retryable func(error) bool
	onFailure FailureHandler
	clock     clockwork.Clock
	active    *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, p Persister, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		persister: p,
		name:      "worker",
		retries:   defaultRetries,
		backoff:   defaultBackoff,
		retryable: func(err error) bool { return !errors.Is(err, context.Canceled) },
		clock:     clockwork.NewRealClock(),
		active:    &atomic.Int64{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.handle(ctx, j)
		}
	}
}

// Shutdown stops the worker once the job in hand is finished.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) handle(ctx context.Context, j model.Job) { //nolint:gocritic // hugeParam: jobs travel by value
	defer w.queue.Ack()
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() { metrics.UpdateWorkerActiveCount(int(w.active.Add(-1))) }()

	start := w.clock.Now()
	err := w.persist(ctx, j)
	metrics.RecordPersistLatency(float64(w.clock.Since(start).Milliseconds()))

	if err == nil {
		metrics.RecordPersistJob(string(j.Kind), "ok")
		return
	}
	metrics.RecordPersistJob(string(j.Kind), "failed")
	metrics.RecordErrorByComponent("worker", "persist_failed")
	w.logger.Error(ctx, "persist failed",
		logger.String("job_id", j.ID),
		logger.String("kind", string(j.Kind)),
		logger.Int64("match_id", j.MatchID),
		logger.Error(err))
	if w.onFailure != nil {
		w.onFailure(ctx, j, err)
	}
}

// persist writes j, retrying transient failures with linear backoff.
func (w *InMemoryWorker) persist(ctx context.Context, j model.Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	var err error
	for attempt := 0; ; attempt++ {
		if err = w.write(ctx, j); err == nil {
			return nil
		}
		if attempt >= w.retries || !w.retryable(err) {
			return err
		}
		metrics.RecordPersistRetry()
		w.logger.Warn(ctx, "retrying persist",
			logger.String("job_id", j.ID),
			logger.Int("attempt", attempt+1),
			logger.Error(err))
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-w.clock.After(w.backoff * time.Duration(attempt+1)):
		}
	}
}

func (w *InMemoryWorker) write(ctx context.Context, j model.Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	switch j.Kind {
	case model.JobGoal:
		return w.persister.RecordGoal(ctx, j.MatchID, j.ParticipantID, j.Minute)
	case model.JobCard:
		return w.persister.RecordCard(ctx, j.MatchID, j.ParticipantID, j.Card, j.Minute)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, j.Kind)
	}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers. Options apply to every worker.
func NewPool(workerCount int, q Queue, p Persister, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	active := &atomic.Int64{}
	for i := range pool.workers {
		wopts := append([]Option{withActive(active)}, opts...)
		wopts = append(wopts, WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(q, p, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool: %w", shutdownCtx.Err())
	}
	return nil
}
