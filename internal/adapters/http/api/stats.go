package api

import (
	"net/http"

	"github.com/agonhq/agon/internal/adapters/repository"
)

// StatsHandler reports collection sizes and live session counts.
type StatsHandler struct {
	store    *repository.Store
	sessions Sessions
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(store *repository.Store, sessions Sessions) *StatsHandler {
	return &StatsHandler{store: store, sessions: sessions}
}

type statsResponse struct {
	Accounts         int `json:"accounts"`
	Profiles         int `json:"profiles"`
	Debates          int `json:"debates"`
	CompletedDebates int `json:"completed_debates"`
	Messages         int `json:"messages"`
	Analyses         int `json:"analyses"`
	ActiveSessions   int `json:"active_sessions"`
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)

		return
	}

	ctx := r.Context()
	var stats statsResponse

	accounts, err := h.store.Accounts(ctx)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}
	stats.Accounts = len(accounts)

	profiles, err := h.store.Profiles(ctx)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}
	stats.Profiles = len(profiles)

	debates, err := h.store.Debates(ctx)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}
	stats.Debates = len(debates)
	for _, d := range debates {
		if d.Completed() {
			stats.CompletedDebates++
		}
	}

	messages, err := h.store.Messages(ctx)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}
	stats.Messages = len(messages)

	analyses, err := h.store.Analyses(ctx)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}
	stats.Analyses = len(analyses)

	stats.ActiveSessions = h.sessions.Size()

	writeJSON(w, http.StatusOK, stats)
}
