// Package httpserver wraps net/http's server for the development CGI host:
// address validation, fixed timeouts and graceful shutdown.
package httpserver
