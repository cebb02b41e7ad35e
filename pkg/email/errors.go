package email

import "errors"

// Common errors
var (
	// ErrInvalidConfig is returned when sender configuration is incomplete.
	ErrInvalidConfig = errors.New("invalid email configuration")

	// ErrInvalidParams is returned when send parameters fail validation.
	ErrInvalidParams = errors.New("invalid email parameters")

	// ErrFailedToSendEmail is returned when the underlying transport fails.
	ErrFailedToSendEmail = errors.New("failed to send email")
)
