package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrNotStarted means an operation was called before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrValidationFailed means an ingested file did not pass validation and
	// its report was marked failed.
	ErrValidationFailed = errors.New("file validation failed")

	// ErrConversionFailed means a mapped cell could not be converted into
	// the metric's canonical unit.
	ErrConversionFailed = errors.New("value conversion failed")

	// ErrUnknownDimension means a conversion request named a dimension the
	// unit tables do not define.
	ErrUnknownDimension = errors.New("unknown dimension")
)
