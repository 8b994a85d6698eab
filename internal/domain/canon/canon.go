// Package canon defines the canonical metric registry: the catalog of
// named, dimensioned measurements vendor columns are mapped onto. Seeded
// once, read-only at runtime.
package canon

import (
	"sort"
	"strings"

	"github.com/clubops/gpscanon/internal/domain/units"
)

// Metric describes one canonical metric. CanonicalUnit is always the base
// unit of the metric's dimension, independent of any profile's display
// unit choice.
type Metric struct {
	Code           string
	Label          string
	Category       string
	Dimension      units.Dimension
	CanonicalUnit  string
	SupportedUnits []string
	IsDerived      bool
	Formula        string
}

// SupportsUnit reports whether unit is a valid display unit for the metric.
func (m Metric) SupportsUnit(unit string) bool {
	for _, u := range m.SupportedUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// Registry holds the seeded metric catalog.
type Registry struct {
	byCode  map[string]Metric
	ordered []Metric
}

// NewRegistry builds a registry from the built-in seed.
func NewRegistry() *Registry {
	seed := seedMetrics()
	r := &Registry{
		byCode:  make(map[string]Metric, len(seed)),
		ordered: seed,
	}
	for _, m := range seed {
		r.byCode[m.Code] = m
	}
	return r
}

// Lookup returns the metric for a code. Codes are case-insensitive.
func (r *Registry) Lookup(code string) (Metric, error) {
	m, ok := r.byCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Metric{}, wrapCode(ErrMetricNotFound, code)
	}
	return m, nil
}

// CanonicalUnitFor returns the canonical (base) unit of a metric's
// dimension.
func (r *Registry) CanonicalUnitFor(code string) (string, error) {
	m, err := r.Lookup(code)
	if err != nil {
		return "", err
	}
	return m.CanonicalUnit, nil
}

// SupportedUnitsFor returns the display units a metric accepts. The
// returned slice is a copy.
func (r *Registry) SupportedUnitsFor(code string) ([]string, error) {
	m, err := r.Lookup(code)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(m.SupportedUnits))
	copy(out, m.SupportedUnits)
	return out, nil
}

// SupportsUnit reports whether unit is valid for the metric code.
func (r *Registry) SupportsUnit(code, unit string) bool {
	m, err := r.Lookup(code)
	if err != nil {
		return false
	}
	return m.SupportsUnit(unit)
}

// All returns every metric in seed order.
func (r *Registry) All() []Metric {
	out := make([]Metric, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Codes returns all metric codes, sorted.
func (r *Registry) Codes() []string {
	out := make([]string, 0, len(r.byCode))
	for code := range r.byCode {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
