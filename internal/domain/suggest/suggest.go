// Package suggest maps vendor column headers to canonical metric keys.
// Matching is heuristic and advisory; callers treat the result as a
// proposal for a human to confirm, never as a binding mapping.
package suggest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/clubops/gpscanon/internal/domain/canon"
	"github.com/clubops/gpscanon/internal/domain/units"
	"github.com/clubops/gpscanon/pkg/logger"
)

// Confidence levels by match source.
const (
	confidenceQuick   = 0.9
	confidencePattern = 0.8
	confidenceClosest = 0.5
)

// minHeaderLen is the shortest normalized header worth matching.
const minHeaderLen = 2

// Suggestion is a proposed mapping for one column header.
type Suggestion struct {
	CanonicalKey string  `json:"canonicalKey"`
	DisplayUnit  string  `json:"displayUnit"`
	Confidence   float64 `json:"confidence"`
}

// Suggester proposes canonical metrics for raw column headers.
type Suggester interface {
	Suggest(header string) (Suggestion, error)
}

// Option configures a Heuristic.
type Option func(*Heuristic)

// WithLogger sets the logger used for match tracing.
func WithLogger(log logger.Logger) Option {
	return func(h *Heuristic) {
		h.log = log
	}
}

// Heuristic is the built-in Suggester backed by the canonical registry.
type Heuristic struct {
	registry *canon.Registry
	log      logger.Logger
}

// New creates a Heuristic over the given registry.
func New(registry *canon.Registry, opts ...Option) *Heuristic {
	h := &Heuristic{registry: registry}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Suggest resolves a header to a canonical key and display unit. Matching
// runs in order: exact quick matches on the normalized header, zone-numbered
// patterns, generic metric patterns, then substring closeness against
// registry codes. First hit wins.
func (h *Heuristic) Suggest(header string) (Suggestion, error) {
	if strings.TrimSpace(header) == "" {
		return Suggestion{}, ErrEmptyHeader
	}

	normalized := Normalize(header)
	if len(normalized) < minHeaderLen {
		return Suggestion{}, fmt.Errorf("%w: %q", ErrNoSuggestion, header)
	}

	raw := strings.ToLower(strings.TrimSpace(header))

	key, confidence := h.matchKey(normalized, raw)
	if key == "" {
		return Suggestion{}, fmt.Errorf("%w: %q", ErrNoSuggestion, header)
	}

	s := Suggestion{
		CanonicalKey: key,
		DisplayUnit:  h.displayUnit(key, raw),
		Confidence:   confidence,
	}
	if h.log != nil {
		h.log.Debug(context.Background(), "header matched",
			logger.String("header", header),
			logger.String("canonical_key", s.CanonicalKey),
			logger.String("display_unit", s.DisplayUnit))
	}
	return s, nil
}

func (h *Heuristic) matchKey(normalized, raw string) (string, float64) {
	for _, qm := range quickMatches {
		if qm.pattern.MatchString(normalized) {
			return qm.key, confidenceQuick
		}
	}

	for _, zm := range zoneMatchers {
		groups := zm.pattern.FindStringSubmatch(raw)
		if groups == nil {
			continue
		}
		zone, err := strconv.Atoi(groups[1])
		if err != nil || zone < 1 || zone > 6 {
			continue
		}
		key := fmt.Sprintf(zm.keyFormat, zone)
		if _, err := h.registry.Lookup(key); err == nil {
			return key, confidencePattern
		}
	}

	for _, mm := range metricMatchers {
		if mm.pattern.MatchString(raw) {
			return mm.key, confidencePattern
		}
	}

	if closest := h.closestCode(normalized); closest != "" {
		return closest, confidenceClosest
	}
	return "", 0
}

// closestCode matches by substring containment between the normalized header
// and separator-stripped registry codes. Applies only to headers of three or
// more characters to keep short fragments from matching everything.
func (h *Heuristic) closestCode(normalized string) string {
	if len(normalized) < 3 {
		return ""
	}
	for _, code := range h.registry.Codes() {
		stripped := strings.ReplaceAll(code, "_", "")
		if strings.Contains(stripped, normalized) || strings.Contains(normalized, stripped) {
			return code
		}
	}
	return ""
}

func (h *Heuristic) displayUnit(key, raw string) string {
	if strings.Contains(key, "count") || strings.Contains(key, "entries") {
		return "count"
	}

	for _, um := range unitMatchers {
		if um.pattern.MatchString(raw) && h.registry.SupportsUnit(key, um.unit) {
			return um.unit
		}
	}

	m, err := h.registry.Lookup(key)
	if err != nil {
		return ""
	}
	return dimensionDefault(m.Dimension, m.CanonicalUnit)
}

// dimensionDefault is the display unit proposed when the header itself names
// no usable unit. Speed defaults to km/h rather than the canonical m/s
// because that is how vendor exports overwhelmingly label speed columns.
func dimensionDefault(d units.Dimension, canonical string) string {
	switch d {
	case units.Distance:
		return "m"
	case units.Speed:
		return "km/h"
	case units.HeartRate:
		return "bpm"
	case units.Time:
		return "s"
	case units.Count:
		return "count"
	case units.Ratio:
		return "%"
	case units.Identity:
		return "string"
	default:
		return canonical
	}
}
