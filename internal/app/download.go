package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	yadisk_service "github.com/oshokin/yadisk-grabber/internal/service/yadisk"
	"github.com/oshokin/yadisk-grabber/internal/utils"
)

// ErrNothingToDownload indicates that the selection is empty.
var ErrNothingToDownload = errors.New("nothing to download")

// DownloadOptions are the arguments of the download command.
type DownloadOptions struct {
	// PublicURL is the public link or public key.
	PublicURL string
	// Path is the folder inside the shared resource.
	Path string
	// Names are entry names or paths to download; empty means every file.
	Names []string
	// NamesFile is a file with one entry name or path per line.
	NamesFile string
	// All downloads every file of the folder, ignoring Names.
	All bool
	// Categories limits the selection to these file categories.
	Categories []string
	// NoCache bypasses the listing cache.
	NoCache bool
}

// ExecuteDownloadCommand downloads the selected files of a shared folder and prints the results.
func ExecuteDownloadCommand(ctx context.Context, cfg *config.Config, opts DownloadOptions) {
	s, err := newServices(cfg)
	if err != nil {
		logger.Fatalf(ctx, "%v", err)
	}

	// Ensure statistics are always printed, even on panic.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.downloader.PrintDownloadSummary(ctx)
	}()

	if _, err = runDownload(ctx, os.Stdout, cfg, s, opts); err != nil {
		logger.Error(ctx, err)
	}
}

func runDownload(
	ctx context.Context,
	out io.Writer,
	cfg *config.Config,
	s *services,
	opts DownloadOptions,
) ([]yadisk_service.DownloadOutcome, error) {
	ref, err := parseRef(opts.PublicURL, opts.Path)
	if err != nil {
		return nil, err
	}

	categories, err := parseCategories(opts.Categories)
	if err != nil {
		return nil, err
	}

	names := append([]string(nil), opts.Names...)

	if opts.NamesFile != "" {
		namesFromFile, readErr := utils.ReadUniqueLinesFromFile(opts.NamesFile)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read names from '%s': %w", opts.NamesFile, readErr)
		}

		names = append(names, namesFromFile...)
	}

	listing, err := s.browser.Browse(ctx, ref, !opts.NoCache)
	if err != nil {
		return nil, browseError(err)
	}

	var selected []yadisk_service.ResourceEntry

	if opts.All || len(names) == 0 {
		selected = listing.Files()
	} else {
		var unmatched []string

		selected, unmatched = yadisk_service.SelectEntries(listing, names)
		for _, name := range unmatched {
			logger.Warnf(ctx, "Not found in %s: %s", listing.Ref, name)
		}
	}

	selected = yadisk_service.FilterByCategory(selected, categories...)
	if len(selected) == 0 {
		return nil, ErrNothingToDownload
	}

	logger.Infof(ctx, "Downloading %d file(s) from %s to '%s'", len(selected), listing.Ref, cfg.OutputPath)

	outcomes := s.downloader.DownloadMany(ctx, listing.Ref, selected, cfg.OutputPath)

	if err = printOutcomes(out, outcomes); err != nil {
		return outcomes, err
	}

	return outcomes, nil
}

func printOutcomes(out io.Writer, outcomes []yadisk_service.DownloadOutcome) error {
	printer := newColorPrinter()
	table := newTable(out, []string{"Status", "Name", "Saved as", "Size", "Error"})

	for i := range outcomes {
		outcome := &outcomes[i]

		row := []string{printer.Success("%s", outcome.Status), outcome.Entry.Name, outcome.LocalPath, "", ""}

		if outcome.Succeeded() {
			row[3] = outcome.Entry.HumanSize()
		} else {
			row[0] = printer.Error("%s", outcome.Status)
			row[4] = outcome.ErrorKind.String()
		}

		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
