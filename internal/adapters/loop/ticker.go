package loop

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Ticker is a restartable one second trigger. It satisfies clock.TickSource
// and must only be used from the loop goroutine.
type Ticker struct {
	clock    clockwork.Clock
	interval time.Duration
	t        clockwork.Ticker
}

// NewTicker returns a stopped ticker.
func NewTicker(c clockwork.Clock, interval time.Duration) *Ticker {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{clock: c, interval: interval}
}

// Start creates a fresh underlying ticker so ticks from a previous run are
// never delivered.
func (t *Ticker) Start() {
	if t.t != nil {
		return
	}
	t.t = t.clock.NewTicker(t.interval)
}

func (t *Ticker) Stop() {
	if t.t == nil {
		return
	}
	t.t.Stop()
	t.t = nil
}

func (t *Ticker) Active() bool { return t.t != nil }

// C returns the tick channel, or nil while stopped.
func (t *Ticker) C() <-chan time.Time {
	if t.t == nil {
		return nil
	}
	return t.t.Chan()
}

func (t *Ticker) Interval() time.Duration { return t.interval }
