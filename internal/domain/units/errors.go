package units

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownDimension    = errors.New("unknown dimension")
	ErrUnsupportedUnit     = errors.New("unsupported unit")
	ErrIdentityConversion  = errors.New("identity values cannot be converted")
	ErrNonFiniteConversion = errors.New("conversion produced a non-finite value")
)

func wrapDimension(kind error, d Dimension) error {
	return fmt.Errorf("%w: %s", kind, d)
}

func wrapUnit(kind error, d Dimension, from, to string) error {
	return fmt.Errorf("%w: dimension %s does not support %q -> %q", kind, d, from, to)
}
