// Package logger provides structured logging for delivtrack.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: handler construction, dynamic level, default logger
//   - context.go: loggers and request IDs carried in a context
//   - redact.go: sensitive data redaction
//
// Credentials never reach the output: attributes whose key looks like a
// password, token or authorization header are replaced, and bearer or
// JWT-shaped values are masked wherever they appear.
package logger
