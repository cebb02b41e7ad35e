package tasks

import "errors"

// Common errors
var (
	// ErrPayloadNil is returned when attempting to enqueue a nil payload.
	ErrPayloadNil = errors.New("payload cannot be nil")

	// ErrHandlerNotFound is returned when no handler is registered for a payload type.
	ErrHandlerNotFound = errors.New("no handler registered for task type")
)
