package notification

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a notification does not exist.
	ErrNotFound = errors.New("notification not found")

	// ErrMissingID is returned when storing a notification without an id.
	ErrMissingID = errors.New("notification id is required")

	// ErrMissingRecipient is returned when storing a notification without a recipient.
	ErrMissingRecipient = errors.New("recipient id is required")
)
