// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/clubops/gpscanon/internal/app"
	"github.com/clubops/gpscanon/internal/domain/reconcile"
)

// PlayerHandler resolves report names against the team roster.
type PlayerHandler struct {
	deps PlayerDependencies
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(deps PlayerDependencies) *PlayerHandler {
	return &PlayerHandler{deps: deps}
}

type matchRequest struct {
	ReportName string `json:"reportName"`
	TeamID     string `json:"teamId"`
	GpsSystem  string `json:"gpsSystem"`
}

// HandlePostMatch handles POST /players/match requests.
func (h *PlayerHandler) HandlePostMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", Wrap("decode match request", err))
		return
	}

	result, err := h.deps.AutoMatch(r.Context(), req.ReportName, req.TeamID, req.GpsSystem)
	switch {
	case errors.Is(err, reconcile.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "empty_name", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "match_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandlePostMapping handles POST /players/mappings requests.
func (h *PlayerHandler) HandlePostMapping(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var in service.SaveMappingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", Wrap("decode mapping", err))
		return
	}
	if in.ReportName == "" || in.TeamID == "" || in.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", NewKind("validate mapping", ErrBadRequest))
		return
	}

	if err := h.deps.SaveMapping(r.Context(), in); err != nil {
		writeError(w, http.StatusInternalServerError, "mapping_save_failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "saved"})
}
