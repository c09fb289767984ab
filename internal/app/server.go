package app

import (
	"context"

	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	"github.com/oshokin/yadisk-grabber/internal/server"
)

// ExecuteRunServerCommand serves the web front end until ctx is done.
func ExecuteRunServerCommand(ctx context.Context, cfg *config.Config) {
	s, err := newServices(cfg)
	if err != nil {
		logger.Fatalf(ctx, "%v", err)
	}

	srv, err := server.NewServer(cfg, s.browser, s.downloader)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize web front end: %v", err)
	}

	if err = srv.Run(ctx); err != nil {
		logger.Fatalf(ctx, "Web front end stopped: %v", err)
	}
}
