// Package units defines the physical dimension catalog, the units within
// each dimension, and conversion between them via the base-unit pivot.
package units

import "sort"

// Dimension is a physical quantity category whose units are mutually
// convertible.
type Dimension string

// Known dimensions. Immutable, defined at build time.
const (
	Distance      Dimension = "distance"
	Time          Dimension = "time"
	Speed         Dimension = "speed"
	Acceleration  Dimension = "acceleration"
	HeartRate     Dimension = "heart_rate"
	Load          Dimension = "load"
	PowerMassNorm Dimension = "power_mass_norm"
	Ratio         Dimension = "ratio"
	Count         Dimension = "count"
	Identity      Dimension = "identity"
)

// Unit describes one unit of a dimension. Factor is the multiplicative
// factor to the dimension's base unit; within a dimension exactly one unit
// has Factor 1 and is the base unit.
type Unit struct {
	Code   string
	Name   string
	Factor float64
}

// factors holds the conversion factor tables per dimension. The values are
// the ones vendor exports actually use; adding a unit here is a registry
// change, not a data mutation.
var factors = map[Dimension][]Unit{
	Distance: {
		{Code: "m", Name: "Meters", Factor: 1},
		{Code: "km", Name: "Kilometers", Factor: 1000},
		{Code: "yd", Name: "Yards", Factor: 0.9144},
	},
	Time: {
		{Code: "s", Name: "Seconds", Factor: 1},
		{Code: "min", Name: "Minutes", Factor: 60},
		{Code: "h", Name: "Hours", Factor: 3600},
		{Code: "ms", Name: "Milliseconds", Factor: 0.001},
	},
	Speed: {
		{Code: "m/s", Name: "m/s", Factor: 1},
		{Code: "km/h", Name: "km/h", Factor: 0.2777777778},
		{Code: "m/min", Name: "m/min", Factor: 0.0166666667},
		{Code: "mph", Name: "mph", Factor: 0.44704},
	},
	Acceleration: {
		{Code: "m/s^2", Name: "m/s²", Factor: 1},
		{Code: "g", Name: "g", Factor: 9.80665},
	},
	HeartRate: {
		{Code: "bpm", Name: "bpm", Factor: 1},
		// %HRmax has no fixed basis without an athlete's max HR; see
		// RequiresContext and the engine's advisory.
		{Code: "%HRmax", Name: "%HRmax", Factor: 1},
	},
	Load: {
		{Code: "AU", Name: "AU", Factor: 1},
	},
	PowerMassNorm: {
		{Code: "W/kg", Name: "W/kg", Factor: 1},
	},
	Ratio: {
		{Code: "ratio", Name: "ratio", Factor: 1},
		{Code: "%", Name: "%", Factor: 0.01},
	},
	Count: {
		{Code: "count", Name: "count", Factor: 1},
	},
	Identity: {
		{Code: "string", Name: "string", Factor: 1},
	},
}

// contextualUnits are units whose conversion is ambiguous without
// athlete-specific context.
var contextualUnits = map[string]bool{
	"%HRmax": true,
}

// Dimensions returns all known dimensions, sorted for stable output.
func Dimensions() []Dimension {
	out := make([]Dimension, 0, len(factors))
	for d := range factors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsDimension reports whether d names a known dimension.
func IsDimension(d Dimension) bool {
	_, ok := factors[d]
	return ok
}

// UnitsFor returns the units of a dimension in registry order. The returned
// slice is a copy.
func UnitsFor(d Dimension) []Unit {
	src, ok := factors[d]
	if !ok {
		return nil
	}
	out := make([]Unit, len(src))
	copy(out, src)
	return out
}

// BaseUnit returns the base unit code of a dimension (factor 1).
func BaseUnit(d Dimension) (string, error) {
	src, ok := factors[d]
	if !ok {
		return "", wrapDimension(ErrUnknownDimension, d)
	}
	for _, u := range src {
		if u.Factor == 1 && !contextualUnits[u.Code] {
			return u.Code, nil
		}
	}
	// Unreachable with a well-formed table.
	return "", wrapDimension(ErrUnknownDimension, d)
}

// Factor returns the base-unit conversion factor of a unit within a
// dimension.
func Factor(d Dimension, unit string) (float64, error) {
	src, ok := factors[d]
	if !ok {
		return 0, wrapDimension(ErrUnknownDimension, d)
	}
	for _, u := range src {
		if u.Code == unit {
			return u.Factor, nil
		}
	}
	return 0, wrapUnit(ErrUnsupportedUnit, d, unit, unit)
}

// HasUnit reports whether a dimension contains a unit.
func HasUnit(d Dimension, unit string) bool {
	for _, u := range factors[d] {
		if u.Code == unit {
			return true
		}
	}
	return false
}

// RequiresContext reports whether a unit cannot be converted faithfully
// without external context (e.g. %HRmax needs the athlete's max heart
// rate). The engine converts such units with factor 1 and raises a
// one-time advisory instead of failing.
func RequiresContext(unit string) bool {
	return contextualUnits[unit]
}
