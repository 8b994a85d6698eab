// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/clubops/gpscanon/internal/domain/canon"
	"github.com/clubops/gpscanon/internal/profile"
)

// ProfileHandler manages GPS column mapping profiles.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

// HandleProfiles handles POST /profiles requests.
func (h *ProfileHandler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var in profile.SaveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", Wrap("decode profile", err))
		return
	}
	in.ID = ""

	h.save(w, r, in, http.StatusCreated)
}

// HandleProfileByID handles GET and PUT /profiles/{id} requests.
func (h *ProfileHandler) HandleProfileByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/profiles/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.deps.GetProfile(r.Context(), id)
		if err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "profile_not_found", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "profile_read_failed", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		var in profile.SaveInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", Wrap("decode profile", err))
			return
		}
		in.ID = id
		h.save(w, r, in, http.StatusOK)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *ProfileHandler) save(w http.ResponseWriter, r *http.Request, in profile.SaveInput, okStatus int) {
	p, err := h.deps.SaveProfile(r.Context(), in)
	switch {
	case errors.Is(err, profile.ErrProfileGuardViolation):
		writeError(w, http.StatusConflict, "profile_locked", err)
		return
	case errors.Is(err, profile.ErrDuplicateCanonicalKey),
		errors.Is(err, profile.ErrUnsupportedDisplayUnit),
		errors.Is(err, profile.ErrUnsupportedSourceUnit),
		errors.Is(err, profile.ErrEmptyProfile),
		errors.Is(err, canon.ErrMetricNotFound):
		writeError(w, http.StatusBadRequest, "invalid_profile", err)
		return
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "profile_not_found", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "profile_save_failed", err)
		return
	}

	writeJSON(w, okStatus, p)
}
