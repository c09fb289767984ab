package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/yadisk-grabber/internal/logger"
	"github.com/oshokin/yadisk-grabber/internal/metrics"
)

// TestEndpointLabel tests classification of outbound requests.
func TestEndpointLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "listing",
			url:      "https://cloud-api.yandex.net/v1/disk/public/resources?public_key=abc",
			expected: metrics.EndpointListing,
		},
		{
			name:     "listing with trailing slash",
			url:      "https://cloud-api.yandex.net/v1/disk/public/resources/?public_key=abc",
			expected: metrics.EndpointListing,
		},
		{
			name:     "download link",
			url:      "https://cloud-api.yandex.net/v1/disk/public/resources/download?public_key=abc&path=/a",
			expected: metrics.EndpointDownloadLink,
		},
		{
			name:     "content",
			url:      "https://downloader.disk.yandex.ru/disk/abcdef?uid=0",
			expected: metrics.EndpointContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := http.NewRequest(http.MethodGet, tt.url, http.NoBody) //nolint:noctx // Test code, context not needed.
			require.NoError(t, err)

			assert.Equal(t, tt.expected, endpointLabel(req))
		})
	}
}

// TestMetricsTransport_RoundTrip tests that responses pass through unchanged.
func TestMetricsTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	transport := NewMetricsTransport(http.DefaultTransport)

	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody) //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

// TestMetricsTransport_NilRequest tests the nil request guard.
func TestMetricsTransport_NilRequest(t *testing.T) {
	t.Parallel()

	resp, err := NewMetricsTransport(http.DefaultTransport).RoundTrip(nil) //nolint:bodyclose // No response on error.
	require.ErrorIs(t, err, ErrNilRequest)
	assert.Nil(t, resp)
}

// TestLogTransport_RoundTrip tests the logging transport at debug level.
func TestLogTransport_RoundTrip(t *testing.T) {
	// Not parallel: changes the global log level.
	originalLevel := logger.Level()
	defer logger.SetLevel(originalLevel)

	logger.SetLevel(zapcore.DebugLevel)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	transport := NewLogTransport(http.DefaultTransport, 8)

	req, err := http.NewRequest(http.MethodGet, server.URL+"?public_key=secret", http.NoBody) //nolint:noctx // Test code.
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, server.URL, redactedURL(req))
}

// TestLogTransport_Truncate tests dump truncation.
func TestLogTransport_Truncate(t *testing.T) {
	t.Parallel()

	transport, ok := NewLogTransport(http.DefaultTransport, 4).(*LogTransport)
	require.True(t, ok)

	assert.Equal(t, "abcd... [truncated]", transport.truncate([]byte("abcdef")))
	assert.Equal(t, "abc", transport.truncate([]byte("abc")))
}

// TestLogTransport_DumpResponse tests that content downloads are dumped without their body.
func TestLogTransport_DumpResponse(t *testing.T) {
	t.Parallel()

	const body = "name,size\nreport.pdf,42\n"

	tests := []struct {
		name         string
		url          string
		contentType  string
		expectedBody bool
	}{
		{
			name:         "listing text body is dumped",
			url:          "https://cloud-api.yandex.net/v1/disk/public/resources?public_key=abc",
			contentType:  "application/json",
			expectedBody: true,
		},
		{
			name:         "downloaded csv is not dumped",
			url:          "https://downloader.disk.yandex.ru/disk/abcdef?uid=0",
			contentType:  "text/csv",
			expectedBody: false,
		},
		{
			name:         "binary listing body is not dumped",
			url:          "https://cloud-api.yandex.net/v1/disk/public/resources?public_key=abc",
			contentType:  "application/octet-stream",
			expectedBody: false,
		},
	}

	transport, ok := NewLogTransport(http.DefaultTransport, 0).(*LogTransport)
	require.True(t, ok)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := http.NewRequest(http.MethodGet, tt.url, http.NoBody) //nolint:noctx // Test code, context not needed.
			require.NoError(t, err)

			resp := &http.Response{
				Status:        "200 OK",
				StatusCode:    http.StatusOK,
				Proto:         "HTTP/1.1",
				ProtoMajor:    1,
				ProtoMinor:    1,
				Header:        http.Header{"Content-Type": []string{tt.contentType}},
				Body:          io.NopCloser(strings.NewReader(body)),
				ContentLength: int64(len(body)),
				Request:       req,
			}

			dump := transport.dumpResponse(req, resp)

			assert.Contains(t, dump, "200 OK")
			assert.Equal(t, tt.expectedBody, strings.Contains(dump, "report.pdf,42"))

			// The caller still receives the whole body.
			remaining, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, body, string(remaining))
		})
	}
}

// TestNewStreamingTransport tests that only connection setup and headers are bounded.
func TestNewStreamingTransport(t *testing.T) {
	t.Parallel()

	transport := NewStreamingTransport(5 * time.Second)

	assert.Equal(t, 5*time.Second, transport.ResponseHeaderTimeout)
	assert.Equal(t, 5*time.Second, transport.TLSHandshakeTimeout)
	assert.NotNil(t, transport.DialContext)
	assert.NotNil(t, transport.Proxy)
}
