package session

import (
	"context"
	"sync"
	"time"

	"github.com/agonhq/agon/internal/adapters/provider"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/pkg/metrics"
)

// EventKind labels what happened inside a session.
type EventKind string

// Session event kinds.
const (
	EventDebateStarted EventKind = "debate_started"
	EventTurnReceived  EventKind = "turn_received"
	EventDebateScored  EventKind = "debate_scored"
	EventTick          EventKind = "tick"
)

// Event is a session lifecycle notification. Consumers such as the voice
// speaker subscribe to these instead of polling the machine.
type Event struct {
	Kind      EventKind
	AccountID string
	DebateID  string
	// Message carries the transcript entry for turn events, including the
	// AI reply and the apology fallback.
	Message *model.DebateMessage
	// Verdict is set on debate_scored events.
	Verdict *provider.Verdict
	// Elapsed is set on tick events.
	Elapsed time.Duration
	At      time.Time
}

const defaultBusBuffer = 1024

// Bus fans session events out to consumers over a buffered channel.
// Publishing never blocks; events are dropped, and counted, when the
// consumer falls behind.
type Bus struct {
	events chan Event
	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus with the given buffer, falling back to the default
// for non-positive values.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = defaultBusBuffer
	}

	return &Bus{events: make(chan Event, buffer)}
}

// Publish offers an event to the bus. Returns false when the event was
// dropped because the bus is closed or full.
func (b *Bus) Publish(ctx context.Context, e Event) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		metrics.RecordSessionEventDropped()

		return false
	}

	select {
	case b.events <- e:
		metrics.RecordSessionEvent()

		return true
	case <-ctx.Done():
		metrics.RecordSessionEventDropped()

		return false
	default:
		metrics.RecordSessionEventDropped()

		return false
	}
}

// Subscribe returns the receive side of the bus. The channel closes when
// the bus closes or the context is cancelled.
func (b *Bus) Subscribe(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for evt := range b.events {
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Len returns the number of buffered events.
func (b *Bus) Len() int {
	return len(b.events)
}

// Close shuts the bus down. Closing twice is a no-op.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	close(b.events)
	b.closed = true

	return nil
}
