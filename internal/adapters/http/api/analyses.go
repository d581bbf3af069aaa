package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/agonhq/agon/internal/adapters/provider"
	"github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/model"
)

// AnalysesHandler runs topic analyses and keeps them per account.
type AnalysesHandler struct {
	ident   Identity
	partner provider.Partner
	store   *repository.Store
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(ident Identity, partner provider.Partner, store *repository.Store) *AnalysesHandler {
	return &AnalysesHandler{ident: ident, partner: partner, store: store}
}

type analyzeRequest struct {
	Topic string `json:"topic"`
}

// HandleAnalyses handles POST /analyses (analyze and save) and GET /analyses
// (saved analyses for the signed-in account).
func (h *AnalysesHandler) HandleAnalyses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleAnalyze(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AnalysesHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_topic"

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))

		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))

		return
	}

	account, _, err := h.ident.Session(r.Context())
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	analysis, err := h.partner.AnalyzeTopic(r.Context(), req.Topic)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	record := model.MediaAnalysis{
		ID:             model.NewID(),
		AccountID:      account.ID,
		Topic:          analysis.Topic,
		Summary:        analysis.Summary,
		Pros:           analysis.Pros,
		Cons:           analysis.Cons,
		SentimentScore: analysis.SentimentScore,
		CreatedAt:      time.Now().UTC(),
	}

	stored, err := h.store.Analyses(r.Context())
	if err != nil {
		writeDomainError(w, op, err)

		return
	}
	if err := h.store.ReplaceAnalyses(r.Context(), append(stored, record)); err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (h *AnalysesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_analyses"

	account, _, err := h.ident.Session(r.Context())
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	stored, err := h.store.Analyses(r.Context())
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	mine := make([]model.MediaAnalysis, 0, len(stored))
	for _, a := range stored {
		if a.AccountID == account.ID {
			mine = append(mine, a)
		}
	}

	writeJSON(w, http.StatusOK, mine)
}
