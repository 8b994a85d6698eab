package profile

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrProfileGuardViolation means a save would remove or re-key a mapping
	// row on a profile that already has reports depending on it.
	ErrProfileGuardViolation = errors.New("locked profile row removed or re-keyed")

	// ErrDuplicateCanonicalKey means two rows in one save target the same
	// canonical metric.
	ErrDuplicateCanonicalKey = errors.New("duplicate canonical metric")

	// ErrUnsupportedDisplayUnit means a row's display unit is not in the
	// metric's supported set.
	ErrUnsupportedDisplayUnit = errors.New("display unit not supported for metric")

	// ErrUnsupportedSourceUnit means a row's source unit is not in the
	// metric's supported set.
	ErrUnsupportedSourceUnit = errors.New("source unit not supported for metric")

	// ErrEmptyProfile means a save carried no mapping rows at all.
	ErrEmptyProfile = errors.New("profile has no column mappings")
)
