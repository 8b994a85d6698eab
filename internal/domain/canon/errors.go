package canon

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMetricNotFound = errors.New("canonical metric not found")
)

func wrapCode(kind error, code string) error {
	return fmt.Errorf("%w: %q", kind, code)
}
