package pg

import "errors"

// Common errors
var (
	// ErrFailedToParseConfig is returned when the connection string is invalid.
	ErrFailedToParseConfig = errors.New("failed to parse postgres config")

	// ErrFailedToConnect is returned when all connection attempts fail.
	ErrFailedToConnect = errors.New("failed to open postgres connection")

	// ErrFailedToApplyMigrations is returned when schema migration fails.
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
)
