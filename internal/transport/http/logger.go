package http

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/oshokin/yadisk-grabber/internal/logger"
	"github.com/oshokin/yadisk-grabber/internal/metrics"
	"github.com/oshokin/yadisk-grabber/internal/utils"
)

// LogTransport logs outbound requests and dumps responses at debug level.
// Only text payloads of API calls are dumped with their body, truncated to maxLogLength.
// Content downloads are dumped without it, so a streamed file is never buffered.
type LogTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// maxLogLength is the maximum length of logged request/response data.
	maxLogLength uint64
}

// Static error definitions for better error handling.
var (
	// ErrNilRequest indicates that the HTTP request is nil.
	ErrNilRequest = errors.New("request is nil")
)

// NewLogTransport creates and returns a new instance of LogTransport.
// A zero maxLogLength means DefaultMaxLogLength.
func NewLogTransport(next http.RoundTripper, maxLogLength uint64) http.RoundTripper {
	if maxLogLength == 0 {
		maxLogLength = DefaultMaxLogLength
	}

	return &LogTransport{
		next:         next,
		maxLogLength: maxLogLength,
	}
}

// RoundTrip executes a single HTTP transaction and logs the request and response.
// It implements the http.RoundTripper interface.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	if !logger.IsDebugLevel() {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()
	startTime := time.Now()

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(startTime)

	if err != nil {
		logger.DebugKV(ctx, "Outbound request failed",
			"method", req.Method,
			"url", redactedURL(req),
			"duration", duration,
			"error", err)

		return nil, err
	}

	logger.DebugKV(ctx, "Outbound request",
		"method", req.Method,
		"url", redactedURL(req),
		"status", resp.StatusCode,
		"duration", duration,
		"response", t.dumpResponse(req, resp))

	return resp, nil
}

func (t *LogTransport) dumpResponse(req *http.Request, resp *http.Response) string {
	withBody := endpointLabel(req) != metrics.EndpointContent &&
		utils.IsTextContentType(resp.Header.Get("Content-Type"))

	dump, err := httputil.DumpResponse(resp, withBody)
	if err != nil {
		return err.Error()
	}

	return t.truncate(dump)
}

func (t *LogTransport) truncate(data []byte) string {
	if uint64(len(data)) > t.maxLogLength {
		return string(data[:t.maxLogLength]) + "... [truncated]"
	}

	return string(data)
}

// redactedURL drops the query string, which carries public keys and signed download parameters.
func redactedURL(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""

	return u.String()
}
