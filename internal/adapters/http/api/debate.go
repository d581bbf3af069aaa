package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agonhq/agon/internal/adapters/provider"
	"github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/ranking"
	"github.com/agonhq/agon/internal/session"
)

// DebateHandler drives the debate session machine over HTTP.
type DebateHandler struct {
	ident    Identity
	sessions Sessions
	store    *repository.Store
}

// NewDebateHandler creates a new debate handler.
func NewDebateHandler(ident Identity, sessions Sessions, store *repository.Store) *DebateHandler {
	return &DebateHandler{ident: ident, sessions: sessions, store: store}
}

type startDebateRequest struct {
	Topic   string `json:"topic"`
	Persona string `json:"persona"`
}

type startDebateResponse struct {
	Debate  model.Debate        `json:"debate"`
	Opening model.DebateMessage `json:"opening"`
}

type turnRequest struct {
	TurnID string `json:"turn_id"`
	Text   string `json:"text"`
}

type turnResponse struct {
	UserMessage model.DebateMessage `json:"user_message"`
	AIMessage   model.DebateMessage `json:"ai_message"`
	Snapshot    session.Snapshot    `json:"snapshot"`
}

type endResponse struct {
	Debate  model.Debate     `json:"debate"`
	Verdict provider.Verdict `json:"verdict"`
}

// machine resolves the signed-in account's session machine.
func (h *DebateHandler) machine(r *http.Request) (*session.Machine, error) {
	account, _, err := h.ident.Session(r.Context())
	if err != nil {
		return nil, err
	}

	return h.sessions.Machine(account.ID), nil
}

// HandleDebates handles POST /debates (start) and GET /debates (history for
// the signed-in account).
func (h *DebateHandler) HandleDebates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleStart(w, r)
	case http.MethodGet:
		h.handleHistory(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *DebateHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_debate"

	var req startDebateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))

		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))

		return
	}

	machine, err := h.machine(r)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	debate, opening, err := machine.Start(r.Context(), req.Topic, req.Persona)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusCreated, startDebateResponse{Debate: debate, Opening: opening})
}

func (h *DebateHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.debate_history"

	account, _, err := h.ident.Session(r.Context())
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	debates, err := h.store.Debates(r.Context())
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	mine := make([]model.Debate, 0, len(debates))
	for _, d := range debates {
		if d.AccountID == account.ID {
			mine = append(mine, d)
		}
	}

	writeJSON(w, http.StatusOK, mine)
}

// HandleTurn handles POST /debates/turns.
func (h *DebateHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_turn"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)

		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))

		return
	}

	machine, err := h.machine(r)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	userMsg, aiMsg, err := machine.SubmitTurn(r.Context(), req.TurnID, req.Text)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusOK, turnResponse{
		UserMessage: userMsg,
		AIMessage:   aiMsg,
		Snapshot:    machine.View(),
	})
}

// HandleEnd handles POST /debates/end.
func (h *DebateHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	const op = "api.end_debate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)

		return
	}

	machine, err := h.machine(r)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	debate, verdict, err := machine.End(r.Context())
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusOK, endResponse{Debate: debate, Verdict: verdict})
}

// HandleRestart handles POST /debates/restart.
func (h *DebateHandler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	const op = "api.restart"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)

		return
	}

	machine, err := h.machine(r)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	machine.Restart()
	writeJSON(w, http.StatusOK, machine.View())
}

// HandleLeaderboardView handles POST /debates/leaderboard-view, the results
// screen's transition into the standings view.
func (h *DebateHandler) HandleLeaderboardView(w http.ResponseWriter, r *http.Request) {
	const op = "api.leaderboard_view"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)

		return
	}

	machine, err := h.machine(r)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	entries, err := machine.ViewLeaderboard(r.Context(), ranking.DefaultLeaderboardLimit)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleSession handles GET /session, the live machine snapshot.
func (h *DebateHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_view"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)

		return
	}

	machine, err := h.machine(r)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusOK, machine.View())
}
