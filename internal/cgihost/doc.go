// Package cgihost serves CGI scripts over HTTP for local development.
//
// A Host routes one script path to a script handler, normally a
// net/http/cgi.Handler that runs the add binary once per request, and adds
// /health and /metrics endpoints. Each request is tagged with an
// X-Request-Id, logged, and reported to the metrics collector.
package cgihost
