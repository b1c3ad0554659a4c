package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification is a localized, user facing event.
type Notification struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	MatchID int64     `json:"match_id,omitempty"`
	Minute  int       `json:"minute"`
	At      time.Time `json:"at"`
}

// ring keeps the most recent notifications.
type ring struct {
	mu    sync.Mutex
	buf   []Notification
	next  int
	count int
}

func newRing(size int) *ring {
	if size < 1 {
		size = 1
	}
	return &ring{buf: make([]Notification, size)}
}

func (r *ring) push(n Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = n
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// last returns up to n notifications, oldest first.
func (r *ring) last(n int) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]Notification, n)
	start := (r.next - n + len(r.buf)) % len(r.buf)
	for i := range out {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

func (r *ring) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
