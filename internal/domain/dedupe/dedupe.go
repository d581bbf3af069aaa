// Package dedupe defines the interface for idempotency tracking.
//
// The session layer already enforces a single in-flight turn per debate;
// this guard backstops it at the API edge so a rapidly re-sent turn id can
// never append a second scored message.
package dedupe

import (
	"context"
	"sync"
)

// Default deduper configuration constants.
const (
	defaultMaxSize = 10_000
)

// Deduper records seen turn ids to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an id from the seen set, allowing it to be retried.
	// Used when a turn was marked seen but was never accepted by the
	// session machine (validation failure, single-flight rejection).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a bounded FIFO ring: once maxSize
// ids are tracked, the oldest is forgotten to admit the newest.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	oldest  int
	maxSize int
}

// Option applies a configuration option to the deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of ids kept in memory.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		if maxSize > 0 {
			d.maxSize = maxSize
		}
	}
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, d.maxSize)
	d.order = make([]string, 0, d.maxSize)

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	return false
}

// Unrecord removes an id from the seen set.
func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.seen, id)
	// The stale slot in the order ring is skipped at eviction time.
}

// Size returns the current number of tracked ids.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

// evictOldest forgets the oldest still-tracked id. Must be called with
// d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	for d.oldest < len(d.order) {
		id := d.order[d.oldest]
		d.oldest++
		if _, live := d.seen[id]; live {
			delete(d.seen, id)
			break
		}
	}

	// Compact the ring once the consumed prefix dominates it.
	if d.oldest > 0 && d.oldest*2 >= len(d.order) {
		d.order = append(d.order[:0], d.order[d.oldest:]...)
		d.oldest = 0
	}
}
