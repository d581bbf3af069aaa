// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agonhq/agon/internal/adapters/provider"
	"github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/ranking"
	"github.com/agonhq/agon/internal/identity"
	"github.com/agonhq/agon/internal/session"
)

// Identity bundles the account operations handlers need. Keeping it an
// interface keeps the handler layer loosely coupled to the manager.
type Identity interface {
	SignUp(ctx context.Context, email, password, username string) (model.Account, model.Profile, error)
	SignIn(ctx context.Context, email, password string) (model.Account, model.Profile, error)
	SignOut(ctx context.Context) error
	Session(ctx context.Context) (model.Account, model.Profile, error)
	UpdateProfile(ctx context.Context, username, avatarURL string) (model.Profile, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
}

// Sessions hands out per-account debate machines.
type Sessions interface {
	Machine(accountID string) *session.Machine
	Size() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	authHandler        *AuthHandler
	profileHandler     *ProfileHandler
	debateHandler      *DebateHandler
	leaderboardHandler *LeaderboardHandler
	analysesHandler    *AnalysesHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(ident Identity, sessions Sessions, partner provider.Partner, store *repository.Store, options ...Option) *Server {
	s := &Server{
		authHandler:        NewAuthHandler(ident),
		profileHandler:     NewProfileHandler(ident),
		debateHandler:      NewDebateHandler(ident, sessions, store),
		leaderboardHandler: NewLeaderboardHandler(ident, ranking.DefaultLeaderboardLimit),
		analysesHandler:    NewAnalysesHandler(ident, partner, store),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(store, sessions),
	}
	for _, opt := range options {
		opt(s)
	}

	return s
}

// Option customizes a Server.
type Option func(*Server)

// WithLeaderboardLimit caps GET /leaderboard?limit.
func WithLeaderboardLimit(limit int) Option {
	return func(s *Server) {
		if limit > 0 {
			s.leaderboardHandler.maxLimit = limit
		}
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/auth/signup", MetricsMiddleware(s.authHandler.HandleSignUp, "auth_signup"))
	mux.HandleFunc("/auth/signin", MetricsMiddleware(s.authHandler.HandleSignIn, "auth_signin"))
	mux.HandleFunc("/auth/signout", MetricsMiddleware(s.authHandler.HandleSignOut, "auth_signout"))
	mux.HandleFunc("/auth/session", MetricsMiddleware(s.authHandler.HandleSession, "auth_session"))

	mux.HandleFunc("/profiles", MetricsMiddleware(s.profileHandler.HandleProfiles, "profiles"))
	mux.HandleFunc("/profiles/me", MetricsMiddleware(s.profileHandler.HandleUpdateMe, "profiles_me"))

	mux.HandleFunc("/debates", MetricsMiddleware(s.debateHandler.HandleDebates, "debates"))
	mux.HandleFunc("/debates/turns", MetricsMiddleware(s.debateHandler.HandleTurn, "debate_turns"))
	mux.HandleFunc("/debates/end", MetricsMiddleware(s.debateHandler.HandleEnd, "debate_end"))
	mux.HandleFunc("/debates/restart", MetricsMiddleware(s.debateHandler.HandleRestart, "debate_restart"))
	mux.HandleFunc("/debates/leaderboard-view", MetricsMiddleware(s.debateHandler.HandleLeaderboardView, "debate_leaderboard_view"))
	mux.HandleFunc("/session", MetricsMiddleware(s.debateHandler.HandleSession, "session"))

	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/podium", MetricsMiddleware(s.leaderboardHandler.HandleGetPodium, "podium"))

	mux.HandleFunc("/analyses", MetricsMiddleware(s.analysesHandler.HandleAnalyses, "analyses"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, Wrap(op, err))
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, identity.ErrValidation),
		errors.Is(err, session.ErrValidation):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, identity.ErrInvalidCredential):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, identity.ErrDuplicateAccount):
		return http.StatusConflict, "duplicate_account"
	case errors.Is(err, session.ErrTurnInFlight):
		return http.StatusConflict, "turn_in_flight"
	case errors.Is(err, session.ErrDuplicateTurn):
		return http.StatusConflict, "duplicate_turn"
	case errors.Is(err, session.ErrStaleTurn):
		return http.StatusConflict, "stale_turn"
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, identity.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, provider.ErrProvider):
		return http.StatusBadGateway, "provider_error"
	case errors.Is(err, repository.ErrCorruptData):
		return http.StatusInternalServerError, "corrupt_data"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
