package related

import "errors"

// Common errors
var (
	// ErrNoLoader is returned when resolving a reference whose content type
	// has no registered loader.
	ErrNoLoader = errors.New("no loader registered for content type")
)
