// Package logger provides structured logging for the gateway. It wraps the
// standard log/slog package, picks a text or JSON handler by environment and
// offers helpers for request-scoped loggers.
package logger
