package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	yadisk_service "github.com/oshokin/yadisk-grabber/internal/service/yadisk"
)

// modifiedTimeLayout formats modification times in tables.
const modifiedTimeLayout = "2006-01-02 15:04"

// ListOptions are the arguments of the list command.
type ListOptions struct {
	// PublicURL is the public link or public key.
	PublicURL string
	// Path is the folder inside the shared resource.
	Path string
	// Categories limits the output to these file categories.
	Categories []string
	// NoCache bypasses the listing cache.
	NoCache bool
}

// ExecuteListCommand prints the entries of a shared folder as a table.
func ExecuteListCommand(ctx context.Context, cfg *config.Config, opts ListOptions) {
	s, err := newServices(cfg)
	if err != nil {
		logger.Fatalf(ctx, "%v", err)
	}

	if err = runList(ctx, os.Stdout, s.browser, opts); err != nil {
		logger.Fatalf(ctx, "%v", err)
	}
}

func runList(ctx context.Context, out io.Writer, browser yadisk_service.Browser, opts ListOptions) error {
	ref, err := parseRef(opts.PublicURL, opts.Path)
	if err != nil {
		return err
	}

	categories, err := parseCategories(opts.Categories)
	if err != nil {
		return err
	}

	listing, err := browser.Browse(ctx, ref, !opts.NoCache)
	if err != nil {
		return browseError(err)
	}

	entries := yadisk_service.FilterByCategory(listing.Entries, categories...)

	logger.Infof(ctx, "%s: %d of %d entries", listing.Ref, len(entries), listing.Total)

	printer := newColorPrinter()
	table := newTable(out, []string{"Type", "Name", "Category", "Size", "Modified", "Path"})

	for i := range entries {
		entry := &entries[i]

		name := entry.Name
		if entry.IsFolder() {
			name = printer.Folder("%s/", entry.Name)
		}

		modified := ""
		if !entry.Modified.IsZero() {
			modified = entry.Modified.Local().Format(modifiedTimeLayout)
		}

		row := []string{
			string(entry.Type),
			name,
			string(entry.Category()),
			entry.HumanSize(),
			modified,
			entry.Path,
		}

		if err = table.Append(row); err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}

	if err = table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
