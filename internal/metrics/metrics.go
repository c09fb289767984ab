// Package metrics provides Prometheus metrics for yadisk-grabber.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Endpoint labels for outbound requests.
const (
	EndpointListing      = "listing"
	EndpointDownloadLink = "download_link"
	EndpointContent      = "content"
)

//nolint:gochecknoglobals // Collectors are registered once with the default registry.
var (
	// Outbound Yandex Disk API metrics
	remoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yadisk_grabber_remote_requests_total",
			Help: "Total number of requests sent to the Yandex Disk API",
		},
		[]string{"endpoint", "status"},
	)

	remoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yadisk_grabber_remote_request_duration_seconds",
			Help:    "Time until response headers from the Yandex Disk API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Listing cache metrics
	listingCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yadisk_grabber_listing_cache_lookups_total",
			Help: "Listing cache lookups by result",
		},
		[]string{"result"},
	)

	listingPagesFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yadisk_grabber_listing_pages_fetched_total",
			Help: "Total listing pages fetched from the remote API",
		},
	)

	// Download metrics
	downloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yadisk_grabber_downloads_total",
			Help: "Total number of file downloads by status and error kind",
		},
		[]string{"status", "kind"},
	)

	downloadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yadisk_grabber_downloaded_bytes_total",
			Help: "Total bytes written to local storage",
		},
	)

	// Web front end metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yadisk_grabber_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yadisk_grabber_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRemoteRequest records one outbound API call.
// A zero status means the request failed before a response arrived.
func RecordRemoteRequest(endpoint string, status int, duration time.Duration) {
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}

	remoteRequestsTotal.WithLabelValues(endpoint, statusLabel).Inc()
	remoteRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCacheLookup records a listing cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}

	listingCacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordListingPage records one fetched listing page.
func RecordListingPage() {
	listingPagesFetchedTotal.Inc()
}

// RecordDownload records the outcome of one file download.
// kind is empty for successful downloads.
func RecordDownload(status, kind string, bytes int64) {
	if kind == "" {
		kind = "none"
	}

	downloadsTotal.WithLabelValues(status, kind).Inc()

	if bytes > 0 {
		downloadedBytesTotal.Add(float64(bytes))
	}
}

// RecordHTTPRequest records a request served by the web front end.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
