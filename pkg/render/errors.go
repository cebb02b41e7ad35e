package render

import "errors"

// Common errors
var (
	// ErrRenderFailed is returned when a notification message or email
	// subject cannot be rendered. The offending notification is scheduled
	// for deletion before this error propagates; callers must not retry.
	ErrRenderFailed = errors.New("failed to render notification")
)
