package units

import (
	"context"
	"math"
	"sync"

	"github.com/clubops/gpscanon/pkg/logger"
	"github.com/clubops/gpscanon/pkg/metrics"
)

// Converter converts a numeric value between two units of one dimension.
type Converter interface {
	// Convert converts value from one unit to another via the base-unit
	// pivot. Both units must belong to the dimension.
	Convert(ctx context.Context, value float64, from, to string, d Dimension) (float64, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for conversion advisories.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine implements Converter over the static registry tables.
type Engine struct {
	log logger.Logger

	mu     sync.Mutex
	warned map[string]bool
}

// NewEngine creates a conversion engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		warned: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Convert converts value between units of dimension d.
//
// Equal units return the value untouched. Identity values are not
// convertible. A contextual unit (%HRmax) converts with factor 1 and raises
// a one-time advisory per unit rather than a hard error.
func (e *Engine) Convert(ctx context.Context, value float64, from, to string, d Dimension) (float64, error) {
	if !IsDimension(d) {
		metrics.RecordConversionError()
		return 0, wrapDimension(ErrUnknownDimension, d)
	}
	if d == Identity {
		metrics.RecordConversionError()
		return 0, wrapDimension(ErrIdentityConversion, d)
	}
	if !HasUnit(d, from) || !HasUnit(d, to) {
		metrics.RecordConversionError()
		return 0, wrapUnit(ErrUnsupportedUnit, d, from, to)
	}

	if from == to {
		metrics.RecordConversion(string(d))
		return value, nil
	}

	if RequiresContext(from) || RequiresContext(to) {
		e.adviseOnce(ctx, from, to, d)
	}

	fromFactor, err := Factor(d, from)
	if err != nil {
		metrics.RecordConversionError()
		return 0, err
	}
	toFactor, err := Factor(d, to)
	if err != nil {
		metrics.RecordConversionError()
		return 0, err
	}

	result := value * fromFactor / toFactor
	if math.IsNaN(result) || math.IsInf(result, 0) {
		metrics.RecordConversionError()
		return 0, wrapUnit(ErrNonFiniteConversion, d, from, to)
	}

	metrics.RecordConversion(string(d))
	return result, nil
}

// adviseOnce logs the contextual-unit advisory the first time a unit pair
// involving it is converted.
func (e *Engine) adviseOnce(ctx context.Context, from, to string, d Dimension) {
	unit := from
	if RequiresContext(to) {
		unit = to
	}

	e.mu.Lock()
	seen := e.warned[unit]
	e.warned[unit] = true
	e.mu.Unlock()

	if seen || e.log == nil {
		return
	}
	e.log.Warn(ctx, "unit conversion lacks athlete context, treating factor as 1",
		logger.String("unit", unit),
		logger.String("from", from),
		logger.String("to", to),
		logger.String("dimension", string(d)),
	)
}
