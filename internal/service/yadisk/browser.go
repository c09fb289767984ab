package yadisk

//go:generate $MOCKGEN -source=browser.go -destination=mocks/browser_mock.go

import (
	"context"
	"path"
	"time"

	"github.com/oshokin/yadisk-grabber/internal/client/yadisk"
	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	"github.com/oshokin/yadisk-grabber/internal/metrics"
)

// Browser lists the content of public resources.
type Browser interface {
	// Browse returns every entry at ref, following pagination.
	// With useCache a listing fetched less than the cache TTL ago is returned as is.
	Browse(ctx context.Context, ref PublicResourceRef, useCache bool) (*ListingResult, error)
}

// BrowserImpl implements the Browser interface.
type BrowserImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// client is the client for the Yandex Disk API.
	client yadisk.Client
	// cache keeps recent listings.
	cache ListingCache
	// now returns the current time, replaceable in tests.
	now func() time.Time
}

// NewBrowser creates a Browser that fetches listings through client and keeps them in cache.
func NewBrowser(cfg *config.Config, client yadisk.Client, cache ListingCache) Browser {
	return &BrowserImpl{
		cfg:    cfg,
		client: client,
		cache:  cache,
		now:    time.Now,
	}
}

// Browse returns every entry at ref, following pagination.
// A failure on any page fails the whole listing.
func (b *BrowserImpl) Browse(ctx context.Context, ref PublicResourceRef, useCache bool) (*ListingResult, error) {
	ctx = logger.WithKV(ctx, "public_key", ref.PublicKey, "path", ref.Path)

	if useCache {
		if cached, ok := b.cache.Get(ref); ok {
			logger.Debugf(ctx, "Listing served from cache, fetched at %s", cached.FetchedAt.Format(time.RFC3339))

			return cached, nil
		}
	}

	result, err := b.fetchListing(ctx, ref)
	if err != nil {
		return nil, b.classifyError(ctx, ref, err)
	}

	// Refresh the cache even when it was bypassed, so the next cached read is current.
	b.cache.Put(ref, result)

	logger.Debugf(ctx, "Listing fetched: %d entries", result.Total)

	return result, nil
}

// fetchListing fetches all pages of the listing at ref.
func (b *BrowserImpl) fetchListing(ctx context.Context, ref PublicResourceRef) (*ListingResult, error) {
	var (
		result  *ListingResult
		entries []ResourceEntry
		offset  int
	)

	for {
		page, err := b.fetchPage(ctx, ref, yadisk.ListOptions{
			Limit:  b.cfg.PageSize,
			Offset: offset,
			Sort:   b.cfg.Sort,
		})
		if err != nil {
			return nil, err
		}

		metrics.RecordListingPage()

		if result == nil {
			result = &ListingResult{
				Ref:  ref,
				Name: page.Name,
				Type: EntryType(page.Type),
			}
		}

		// A public key or path pointing at a file lists that file alone.
		if !page.IsDir() {
			entries = []ResourceEntry{toResourceEntry(ref, page)}

			break
		}

		if page.Embedded == nil {
			break
		}

		for _, item := range page.Embedded.Items {
			entries = append(entries, toResourceEntry(ref, item))
		}

		offset += len(page.Embedded.Items)
		if len(page.Embedded.Items) == 0 || offset >= page.Embedded.Total {
			break
		}
	}

	if entries == nil {
		entries = make([]ResourceEntry, 0)
	}

	result.Entries = entries
	result.Total = len(entries)
	result.FetchedAt = b.now()

	return result, nil
}

// fetchPage fetches one page with retries.
func (b *BrowserImpl) fetchPage(
	ctx context.Context,
	ref PublicResourceRef,
	opts yadisk.ListOptions,
) (*yadisk.Resource, error) {
	return withRetry(ctx, b.cfg, "list entries", func(ctx context.Context) (*yadisk.Resource, error) {
		return b.client.ListEntries(ctx, ref.PublicKey, ref.Path, opts)
	})
}

// classifyError turns a remote failure into a BrowseError.
// A missing non-root path is told apart from a bad public key by probing the root.
func (b *BrowserImpl) classifyError(ctx context.Context, ref PublicResourceRef, err error) error {
	browseErr := &BrowseError{
		Kind: BrowseErrorUnavailable,
		Ref:  ref,
		Err:  err,
	}

	//nolint:exhaustive // Transient and rate limited failures keep the Unavailable default.
	switch yadisk.KindOf(err) {
	case yadisk.ErrorKindNotFound:
		browseErr.Kind = b.classifyNotFound(ctx, ref)
	case yadisk.ErrorKindUnauthorized, yadisk.ErrorKindMalformed:
		browseErr.Kind = BrowseErrorInvalidPublicKey
	}

	logger.Warnf(ctx, "Failed to browse: %s: %v", browseErr.Kind, err)

	return browseErr
}

// classifyNotFound decides whether NotFound was caused by the path or by the public key.
func (b *BrowserImpl) classifyNotFound(ctx context.Context, ref PublicResourceRef) BrowseErrorKind {
	if ref.IsRoot() {
		return BrowseErrorInvalidPublicKey
	}

	_, err := b.fetchPage(ctx, ref.Root(), yadisk.ListOptions{Limit: 1})

	switch {
	case err == nil:
		return BrowseErrorPathNotFound
	case yadisk.IsRetryable(err):
		return BrowseErrorUnavailable
	default:
		return BrowseErrorInvalidPublicKey
	}
}

// toResourceEntry converts an API resource into an entry of the listing at ref.
// Entries are always placed under ref.Path.
func toResourceEntry(ref PublicResourceRef, resource *yadisk.Resource) ResourceEntry {
	entryPath := normalizePath(resource.Path)
	if resource.Path == "" || !hasPathPrefix(entryPath, ref.Path) {
		entryPath = path.Join(ref.Path, resource.Name)
	}

	return ResourceEntry{
		Name:         resource.Name,
		Path:         entryPath,
		Type:         EntryType(resource.Type),
		MimeType:     resource.MimeType,
		MediaType:    resource.MediaType,
		Size:         resource.Size,
		Created:      resource.Created,
		Modified:     resource.Modified,
		DownloadHref: resource.File,
		MD5:          resource.MD5,
		SHA256:       resource.SHA256,
	}
}
