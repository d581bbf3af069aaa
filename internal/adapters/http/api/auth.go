package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/identity"
)

// AuthHandler handles sign-up, sign-in, sign-out, and session resolution.
type AuthHandler struct {
	ident Identity
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(ident Identity) *AuthHandler {
	return &AuthHandler{ident: ident}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

func (r signUpRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Email) == "":
		return errors.New("missing email")
	case r.Password == "":
		return errors.New("missing password")
	case strings.TrimSpace(r.Username) == "":
		return errors.New("missing username")
	}

	return nil
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	SignedIn bool           `json:"signed_in"`
	Account  *accountView   `json:"account,omitempty"`
	Profile  *model.Profile `json:"profile,omitempty"`
}

// accountView hides the credential hash from API responses.
type accountView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func newAccountView(a model.Account) *accountView {
	return &accountView{
		ID:        a.ID,
		Email:     a.Email,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// HandleSignUp handles POST /auth/signup.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	const op = "api.auth_signup"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)

		return
	}

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))

		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))

		return
	}

	account, profile, err := h.ident.SignUp(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		SignedIn: true,
		Account:  newAccountView(account),
		Profile:  &profile,
	})
}

// HandleSignIn handles POST /auth/signin.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	const op = "api.auth_signin"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)

		return
	}

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))

		return
	}

	account, profile, err := h.ident.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SignedIn: true,
		Account:  newAccountView(account),
		Profile:  &profile,
	})
}

// HandleSignOut handles POST /auth/signout.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	const op = "api.auth_signout"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)

		return
	}

	if err := h.ident.SignOut(r.Context()); err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{SignedIn: false})
}

// HandleSession handles GET /auth/session. A signed-out state is a normal
// 200, not an error.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.auth_session"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)

		return
	}

	account, profile, err := h.ident.Session(r.Context())
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			writeJSON(w, http.StatusOK, sessionResponse{SignedIn: false})

			return
		}
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SignedIn: true,
		Account:  newAccountView(account),
		Profile:  &profile,
	})
}
