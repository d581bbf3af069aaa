package session

import (
	"sync"

	"github.com/agonhq/agon/internal/adapters/provider"
	"github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/dedupe"
	"github.com/agonhq/agon/internal/domain/scoring"
	"github.com/agonhq/agon/pkg/logger"
	"github.com/agonhq/agon/pkg/metrics"
)

// Registry hands out one session machine per account. Machines share the
// store, partner, scorer, deduper, and bus; session-local state stays
// private to each machine.
type Registry struct {
	store   *repository.Store
	partner provider.Partner
	scorer  scoring.TurnScorer
	deduper dedupe.Deduper
	bus     *Bus
	log     logger.Logger

	mu       sync.Mutex
	machines map[string]*Machine
}

// NewRegistry builds a registry with a heuristic scorer and an in-memory
// deduper unless overridden.
func NewRegistry(store *repository.Store, partner provider.Partner, options ...Option) *Registry {
	r := &Registry{
		store:    store,
		partner:  partner,
		scorer:   scoring.NewHeuristicScorer(),
		deduper:  dedupe.NewInMemoryDeduper(),
		log:      logger.Named("session"),
		machines: make(map[string]*Machine),
	}
	for _, opt := range options {
		opt(r)
	}

	return r
}

// Machine returns the account's session machine, creating it on first use.
func (r *Registry) Machine(accountID string) *Machine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.machines[accountID]; ok {
		return m
	}

	m := newMachine(accountID, r.store, r.partner, r.scorer, r.deduper, r.bus, r.log)
	r.machines[accountID] = m
	metrics.UpdateActiveSessions(len(r.machines))

	return m
}

// Drop closes and forgets the account's machine, if any.
func (r *Registry) Drop(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.machines[accountID]; ok {
		m.Close()
		delete(r.machines, accountID)
		metrics.UpdateActiveSessions(len(r.machines))
	}
}

// Size returns the number of live machines.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.machines)
}

// Close tears down every machine.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, m := range r.machines {
		m.Close()
		delete(r.machines, id)
	}
	metrics.UpdateActiveSessions(0)
}
