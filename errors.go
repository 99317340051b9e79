package regbrain

import "errors"

var (
	// ErrUnsupportedFormat is returned for unrecognized document formats.
	ErrUnsupportedFormat = errors.New("regbrain: unsupported document format")

	// ErrNoFacts is returned when a consumer requests aggregation artifacts
	// before any extraction has run.
	ErrNoFacts = errors.New("regbrain: no extracted facts")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("regbrain: invalid configuration")
)
