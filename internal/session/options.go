package session

import (
	"github.com/agonhq/agon/internal/domain/dedupe"
	"github.com/agonhq/agon/internal/domain/scoring"
)

// Option customizes a Registry.
type Option func(*Registry)

// WithScorer substitutes the per-turn impact scorer.
func WithScorer(scorer scoring.TurnScorer) Option {
	return func(r *Registry) {
		if scorer != nil {
			r.scorer = scorer
		}
	}
}

// WithDeduper substitutes the turn-id idempotency tracker.
func WithDeduper(deduper dedupe.Deduper) Option {
	return func(r *Registry) {
		if deduper != nil {
			r.deduper = deduper
		}
	}
}

// WithBus attaches an event bus that machines publish lifecycle events to.
func WithBus(bus *Bus) Option {
	return func(r *Registry) {
		r.bus = bus
	}
}
