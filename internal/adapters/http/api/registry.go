// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// RegistryHandler exposes the canonical metric catalog.
type RegistryHandler struct {
	deps RegistryDependencies
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(deps RegistryDependencies) *RegistryHandler {
	return &RegistryHandler{deps: deps}
}

type metricResponse struct {
	Code           string   `json:"code"`
	Label          string   `json:"label"`
	Category       string   `json:"category"`
	Dimension      string   `json:"dimension"`
	CanonicalUnit  string   `json:"canonicalUnit"`
	SupportedUnits []string `json:"supportedUnits"`
	IsDerived      bool     `json:"isDerived"`
	Formula        string   `json:"formula,omitempty"`
}

// HandleGetRegistry handles GET /metrics-registry requests.
func (h *RegistryHandler) HandleGetRegistry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	catalog := h.deps.MetricCatalog()
	out := make([]metricResponse, 0, len(catalog))
	for _, m := range catalog {
		out = append(out, metricResponse{
			Code:           m.Code,
			Label:          m.Label,
			Category:       m.Category,
			Dimension:      string(m.Dimension),
			CanonicalUnit:  m.CanonicalUnit,
			SupportedUnits: m.SupportedUnits,
			IsDerived:      m.IsDerived,
			Formula:        m.Formula,
		})
	}

	writeJSON(w, http.StatusOK, out)
}
