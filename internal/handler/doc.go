// Package handler implements the CGI request handler for the add script.
// It reads the operands from a query string, adds them, and writes a
// CGI-style response (headers, blank line, HTML body) to a caller-provided
// writer. Validation failures are logged and answered with Status: 500.
package handler
