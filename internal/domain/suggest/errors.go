package suggest

import "errors"

var (
	// ErrNoSuggestion is returned when no canonical metric matches a header.
	ErrNoSuggestion = errors.New("no canonical suggestion for header")

	// ErrEmptyHeader is returned for blank or whitespace-only headers.
	ErrEmptyHeader = errors.New("header is empty")
)
