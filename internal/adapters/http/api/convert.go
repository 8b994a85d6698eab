// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/clubops/gpscanon/internal/app"
	"github.com/clubops/gpscanon/internal/domain/units"
)

// ConvertHandler converts a value between units of one dimension.
type ConvertHandler struct {
	deps ConvertDependencies
}

// NewConvertHandler creates a new convert handler.
func NewConvertHandler(deps ConvertDependencies) *ConvertHandler {
	return &ConvertHandler{deps: deps}
}

type convertRequest struct {
	Value     float64 `json:"value"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Dimension string  `json:"dimension"`
}

type convertResponse struct {
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Dimension string  `json:"dimension"`
}

// HandlePostConvert handles POST /convert requests.
func (h *ConvertHandler) HandlePostConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", Wrap("decode convert request", err))
		return
	}

	out, err := h.deps.Convert(r.Context(), req.Value, req.From, req.To, req.Dimension)
	switch {
	case errors.Is(err, service.ErrUnknownDimension),
		errors.Is(err, units.ErrUnknownDimension),
		errors.Is(err, units.ErrUnsupportedUnit),
		errors.Is(err, units.ErrIdentityConversion):
		writeError(w, http.StatusBadRequest, "invalid_conversion", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "convert_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{Value: out, Unit: req.To, Dimension: req.Dimension})
}
