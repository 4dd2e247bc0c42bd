// Package logger provides structured logging with configurable log levels.
// It wraps the standard log/slog package. The destination is chosen by the
// caller so that CGI invocations can keep stdout for the response.
package logger
