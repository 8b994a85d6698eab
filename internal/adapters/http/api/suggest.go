// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clubops/gpscanon/internal/domain/suggest"
)

// SuggestHandler proposes a canonical metric for a raw column header.
type SuggestHandler struct {
	deps SuggestDependencies
}

// NewSuggestHandler creates a new suggest handler.
func NewSuggestHandler(deps SuggestDependencies) *SuggestHandler {
	return &SuggestHandler{deps: deps}
}

type suggestRequest struct {
	Header string `json:"header"`
}

// HandlePostSuggest handles POST /suggest requests.
func (h *SuggestHandler) HandlePostSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", Wrap("decode suggest request", err))
		return
	}

	s, err := h.deps.SuggestMapping(req.Header)
	switch {
	case errors.Is(err, suggest.ErrEmptyHeader):
		writeError(w, http.StatusBadRequest, "empty_header", err)
		return
	case errors.Is(err, suggest.ErrNoSuggestion):
		writeError(w, http.StatusNotFound, "no_suggestion", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "suggest_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, s)
}
