package app

import (
	"context"

	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/logger"
)

// ExecuteConfigInitCommand writes a configuration file with the built-in defaults.
func ExecuteConfigInitCommand(ctx context.Context, path string, overwrite bool) {
	if path == "" {
		path = config.DefaultConfigFilename
	}

	if err := config.WriteDefaultConfig(path, overwrite); err != nil {
		logger.Fatalf(ctx, "Failed to write configuration: %v", err)
	}

	logger.Infof(ctx, "Configuration written to '%s'", path)
}
