package reconcile

import "errors"

var (
	// ErrEmptyName is returned when the report name is blank.
	ErrEmptyName = errors.New("report name is empty")

	// ErrMappingLookup wraps failures while checking saved mappings.
	ErrMappingLookup = errors.New("saved mapping lookup failed")
)
