package api

import (
	"encoding/json"
	"net/http"
)

// ProfileHandler handles profile listing and edits.
type ProfileHandler struct {
	ident Identity
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(ident Identity) *ProfileHandler {
	return &ProfileHandler{ident: ident}
}

type updateProfileRequest struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// HandleProfiles handles GET /profiles.
func (h *ProfileHandler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	const op = "api.profiles"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)

		return
	}

	profiles, err := h.ident.ListProfiles(r.Context())
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusOK, profiles)
}

// HandleUpdateMe handles PATCH /profiles/me for the signed-in user.
func (h *ProfileHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_profile"
	if r.Method != http.MethodPatch {
		http.NotFound(w, r)

		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))

		return
	}

	profile, err := h.ident.UpdateProfile(r.Context(), req.Username, req.AvatarURL)
	if err != nil {
		writeDomainError(w, op, err)

		return
	}

	writeJSON(w, http.StatusOK, profile)
}
