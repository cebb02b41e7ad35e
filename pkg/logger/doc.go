// Package logger builds configured slog.Logger instances and provides the
// attribute helpers used across the module, so log keys stay consistent
// between packages.
package logger
