package config

import "errors"

// Common errors
var (
	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("config target cannot be nil")

	// ErrParsingConfig is returned when environment parsing fails.
	ErrParsingConfig = errors.New("failed to parse config from environment")
)
