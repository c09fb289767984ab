// Package http provides http.RoundTripper middleware for the outbound client:
// debug dumps of requests and responses, User-Agent injection and
// Prometheus instrumentation of remote calls.
package http
