package api

import (
	"net/http"
	"strconv"

	"github.com/agonhq/agon/internal/domain/ranking"
)

// LeaderboardHandler serves the derived standings views.
type LeaderboardHandler struct {
	ident    Identity
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(ident Identity, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{ident: ident, maxLimit: maxLimit}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)

		return
	}

	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))

			return
		}
		if parsed > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))

			return
		}
		n = parsed
	}

	profiles, err := h.ident.ListProfiles(r.Context())
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusOK, ranking.Leaderboard(profiles, n))
}

// HandleGetPodium handles GET /podium requests.
func (h *LeaderboardHandler) HandleGetPodium(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_podium"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)

		return
	}

	profiles, err := h.ident.ListProfiles(r.Context())
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusOK, ranking.Podium(profiles))
}
