// Package loop serializes every call into a clock engine on one goroutine.
// Commands from HTTP handlers or the CLI are submitted with Do and run
// between ticks, so the engine never sees two operations at once.
package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/pkg/logger"
	"github.com/okian/matchclock/pkg/metrics"
)

// Engine is what the loop drives.
type Engine interface {
	Tick()
	Mode() clock.Mode
}

// Source delivers ticks. A nil channel means no ticks are wanted.
type Source interface {
	C() <-chan time.Time
}

type command struct {
	fn   func()
	done chan error
}

// Loop owns the engine goroutine.
type Loop struct {
	engine Engine
	src    Source
	log    logger.Logger

	cmds    chan command
	stopped chan struct{}
	onTick  func()
}

// New builds a loop. Call Run to start it.
func New(engine Engine, src Source, opts ...Option) *Loop {
	l := &Loop{
		engine:  engine,
		src:     src,
		cmds:    make(chan command),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.Nop()
	}
	return l
}

// Run processes commands and ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)
	l.log.Info(ctx, "clock loop started", logger.String("mode", l.engine.Mode().String()))
	for {
		select {
		case <-ctx.Done():
			l.log.Info(ctx, "clock loop stopped")
			return
		case cmd := <-l.cmds:
			cmd.done <- l.exec(ctx, cmd.fn)
		case <-l.src.C():
			start := time.Now()
			mode := l.engine.Mode()
			if err := l.exec(ctx, l.engine.Tick); err != nil {
				continue
			}
			metrics.RecordTick(mode.String(), float64(time.Since(start).Microseconds())/1000)
			if l.onTick != nil {
				l.onTick()
			}
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case l.cmds <- cmd:
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-l.stopped:
		return ErrStopped
	}
}

// Done is closed once Run returns.
func (l *Loop) Done() <-chan struct{} { return l.stopped }

func (l *Loop) exec(ctx context.Context, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCommandPanicked, r)
			metrics.RecordErrorByComponent("loop", "panic")
			l.log.Error(ctx, "clock command panicked", logger.Any("panic", r))
		}
	}()
	fn()
	return nil
}
