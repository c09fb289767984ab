package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	"github.com/oshokin/yadisk-grabber/internal/metrics"
	"github.com/oshokin/yadisk-grabber/internal/service/yadisk"
)

const (
	// readHeaderTimeout bounds how long a client may take to send request headers.
	readHeaderTimeout = 10 * time.Second

	// shutdownTimeout bounds the graceful shutdown of in-flight requests.
	shutdownTimeout = 15 * time.Second

	// corsMaxAge is how long browsers may cache a preflight answer, in seconds.
	corsMaxAge = 300
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server is the web front end.
type Server struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// browser lists public resources.
	browser yadisk.Browser
	// downloader saves selected files.
	downloader yadisk.Downloader
	// templates holds the parsed HTML pages.
	templates *template.Template
}

// NewServer creates a web front end over the given services.
func NewServer(cfg *config.Config, browser yadisk.Browser, downloader yadisk.Downloader) (*Server, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		cfg:        cfg,
		browser:    browser,
		downloader: downloader,
		templates:  templates,
	}, nil
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/v1/", http.StatusFound)
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/", s.handleIndex)
		r.Post("/", s.handleSubmit)
		r.Get("/files/", s.handleFiles)
		r.Post("/download/", s.handleDownload)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         corsMaxAge,
		}))

		r.Get("/resources", s.handleAPIResources)
	})

	return r
}

// Run serves HTTP on the configured address until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.ServerAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	serveErr := make(chan error, 1)

	go func() {
		logger.Infof(ctx, "Web front end listening on %s", s.cfg.ServerAddress)

		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info(ctx, "Shutting down the web front end")

	// The parent context is already done, so shutdown gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

// render executes a page template and writes it with the given status.
// The page is rendered into a buffer first, so a template failure never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer

	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Errorf(r.Context(), "Failed to render template %s: %v", name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if _, err := buf.WriteTo(w); err != nil {
		logger.Debugf(r.Context(), "Failed to write response: %v", err)
	}
}
