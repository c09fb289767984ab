package app

import (
	"context"
	"fmt"

	yadisk_client "github.com/oshokin/yadisk-grabber/internal/client/yadisk"
	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	yadisk_service "github.com/oshokin/yadisk-grabber/internal/service/yadisk"
)

// services holds the components shared by all commands.
type services struct {
	browser    yadisk_service.Browser
	downloader yadisk_service.Downloader
}

// newServices creates the client, the listing cache and the services on top of them.
func newServices(cfg *config.Config) (*services, error) {
	client, err := yadisk_client.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize yandex disk client: %w", err)
	}

	cache := yadisk_service.NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL)

	return &services{
		browser:    yadisk_service.NewBrowser(cfg, client, cache),
		downloader: yadisk_service.NewDownloader(cfg, client),
	}, nil
}

// SetupLogger enables the daily rotated log file when one is configured.
// The returned function flushes and closes the file.
func SetupLogger(ctx context.Context, cfg *config.Config) func() {
	logger.SetLevel(cfg.ParsedLogLevel)

	if cfg.LogFile == "" {
		return func() {}
	}

	rotatingFile := logger.NewRotatingFile(cfg.LogFile, cfg.LogMaxBackups)
	if err := rotatingFile.Open(); err != nil {
		logger.Errorf(ctx, "Failed to open log file '%s', logging to console only: %v", cfg.LogFile, err)

		return func() {}
	}

	logger.SetLogger(logger.NewWithFile(nil, rotatingFile))

	return func() {
		_ = logger.Logger().Sync()

		if err := rotatingFile.Close(); err != nil {
			logger.Debugf(ctx, "Failed to close log file: %v", err)
		}
	}
}

// parseRef builds a resource reference and reports a readable error.
func parseRef(publicURL, resourcePath string) (yadisk_service.PublicResourceRef, error) {
	ref, err := yadisk_service.NewPublicResourceRef(publicURL, resourcePath)
	if err != nil {
		return yadisk_service.PublicResourceRef{}, fmt.Errorf("invalid public link '%s': %w", publicURL, err)
	}

	return ref, nil
}

// parseCategories parses category names given on the command line.
func parseCategories(values []string) ([]yadisk_service.FileCategory, error) {
	categories := make([]yadisk_service.FileCategory, 0, len(values))

	for _, value := range values {
		category, err := yadisk_service.ParseFileCategory(value)
		if err != nil {
			return nil, err
		}

		categories = append(categories, category)
	}

	return categories, nil
}

// browseError turns a listing failure into the message shown to the user.
func browseError(err error) error {
	if browseErr, ok := yadisk_service.AsBrowseError(err); ok {
		return fmt.Errorf("%s (%w)", browseErr.UserMessage(), err)
	}

	return err
}
