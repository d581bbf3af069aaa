// Package scoring produces per-turn score impacts for debate messages.
//
// This is the local heuristic path: the live running score shown during a
// debate. The judge's transcript verdict at the end of a debate is the
// source of truth for persisted final scores.
package scoring

import (
	"math/rand"
	"sync"
)

// Default impact configuration constants.
const (
	defaultMinImpact  = 5
	defaultMaxImpact  = 19
	defaultRandomSeed = 42
)

// Option applies a configuration option to the HeuristicScorer.
type Option func(*HeuristicScorer)

// WithImpactRange sets the inclusive bounds for per-turn impacts.
func WithImpactRange(minImpact, maxImpact int) Option {
	return func(s *HeuristicScorer) {
		if minImpact >= 0 && maxImpact >= minImpact {
			s.minImpact = minImpact
			s.maxImpact = maxImpact
		}
	}
}

// WithSeed sets the random seed for reproducible impact sequences.
func WithSeed(seed int64) Option {
	return func(s *HeuristicScorer) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // non-cryptographic scoring heuristic
	}
}

// TurnScorer computes the score impact of a single message.
type TurnScorer interface {
	// Impact returns a bounded non-negative contribution for the message.
	Impact(content string) int
}

// HeuristicScorer implements TurnScorer with a bounded pseudo-random draw.
type HeuristicScorer struct {
	mu        sync.Mutex
	minImpact int
	maxImpact int
	rng       *rand.Rand
}

// NewHeuristicScorer creates a scorer with configuration options.
func NewHeuristicScorer(opts ...Option) *HeuristicScorer {
	s := &HeuristicScorer{
		minImpact: defaultMinImpact,
		maxImpact: defaultMaxImpact,
		rng:       rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible scoring
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Impact returns a draw in [minImpact, maxImpact]. Empty content scores zero.
func (s *HeuristicScorer) Impact(content string) int {
	if content == "" {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	span := s.maxImpact - s.minImpact + 1
	return s.minImpact + s.rng.Intn(span)
}
