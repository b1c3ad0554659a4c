// Package dedupe remembers idempotency keys so a retried goal or card
// request is applied at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 4096

// Deduper records seen request keys.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded, recording it if not.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so the request may be retried. Used when the
	// request was rejected after its key had been recorded.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// entry is a node of the insertion-ordered list. head is the newest key.
type entry struct {
	key        string
	prev, next *entry
}

// inMemoryDeduper keeps keys in a map plus an insertion-ordered list so the
// oldest key can be evicted once maxSize is reached. maxSize <= 0 disables
// eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*entry
	head    *entry
	tail    *entry
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*entry)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.remove(d.tail)
	}

	e := &entry{key: key, next: d.head}
	if d.head != nil {
		d.head.prev = e
	}
	d.head = e
	if d.tail == nil {
		d.tail = e
	}
	d.seen[key] = e
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.seen[key]; ok {
		d.remove(e)
	}
}

// remove unlinks e. Caller holds d.mu.
func (d *inMemoryDeduper) remove(e *entry) {
	if e == nil {
		return
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		d.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		d.tail = e.prev
	}
	delete(d.seen, e.key)
	d.size.Add(-1)
}

// Size returns the current number of recorded keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
