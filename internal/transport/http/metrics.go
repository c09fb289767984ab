package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/oshokin/yadisk-grabber/internal/metrics"
)

// MetricsTransport records every outbound request in Prometheus.
type MetricsTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
}

// NewMetricsTransport wraps next with request counting and latency histograms.
func NewMetricsTransport(next http.RoundTripper) http.RoundTripper {
	return &MetricsTransport{next: next}
}

// RoundTrip implements http.RoundTripper.
func (t *MetricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	startTime := time.Now()

	resp, err := t.next.RoundTrip(req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	metrics.RecordRemoteRequest(endpointLabel(req), status, time.Since(startTime))

	return resp, err
}

// endpointLabel classifies a request as a listing call, a download-link call or a content fetch.
func endpointLabel(req *http.Request) string {
	path := strings.TrimSuffix(req.URL.Path, "/")

	switch {
	case strings.HasSuffix(path, "/public/resources/download"):
		return metrics.EndpointDownloadLink
	case strings.HasSuffix(path, "/public/resources"):
		return metrics.EndpointListing
	default:
		return metrics.EndpointContent
	}
}
