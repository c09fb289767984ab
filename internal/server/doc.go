// Package server implements the web front end: a form for a public link,
// a browsable listing with checkboxes and a page with per-file download outcomes.
// It also serves the listing as JSON, a health check and Prometheus metrics.
package server
