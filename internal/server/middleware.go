package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/oshokin/yadisk-grabber/internal/logger"
	"github.com/oshokin/yadisk-grabber/internal/metrics"
)

const (
	// requestIDHeader carries the request id in both directions.
	requestIDHeader = "X-Request-Id"

	// maxRequestIDLength bounds request ids accepted from clients.
	maxRequestIDLength = 64

	// unmatchedRoute labels requests that matched no route.
	unmatchedRoute = "unmatched"
)

// requestID takes the request id from the client or generates one,
// echoes it back and attaches it to the request logger.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)

		ctx := logger.WithKV(r.Context(), "request_id", id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs every served request and records it in the metrics.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		duration := time.Since(startTime)

		metrics.RecordHTTPRequest(r.Method, routePattern(r), status, duration)

		logger.DebugKV(r.Context(), "HTTP request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration,
		)
	})
}

// routePattern returns the matched chi route, so metrics are not labeled with raw paths.
func routePattern(r *http.Request) string {
	routeContext := chi.RouteContext(r.Context())
	if routeContext == nil {
		return unmatchedRoute
	}

	if pattern := routeContext.RoutePattern(); pattern != "" {
		return pattern
	}

	return unmatchedRoute
}
