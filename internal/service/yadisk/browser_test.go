package yadisk

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/yadisk-grabber/internal/client/yadisk"
	mock_yadisk_client "github.com/oshokin/yadisk-grabber/internal/client/yadisk/mocks"
	"github.com/oshokin/yadisk-grabber/internal/config"
)

// TestBrowserImpl_Browse_Pagination tests that all pages are fetched and concatenated in order.
func TestBrowserImpl_Browse_Pagination(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	client := newMockClient(t)
	browser := NewBrowser(cfg, client, NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL))
	ref := testRef(t, "/photos")

	gomock.InOrder(
		client.EXPECT().
			ListEntries(gomock.Any(), testPublicKey, "/photos", yadisk.ListOptions{Limit: 2, Offset: 0}).
			Return(dirResource("/photos", 5,
				fileResource("/photos/a.jpg", "image/jpeg", 1),
				fileResource("/photos/b.jpg", "image/jpeg", 2),
			), nil),
		client.EXPECT().
			ListEntries(gomock.Any(), testPublicKey, "/photos", yadisk.ListOptions{Limit: 2, Offset: 2}).
			Return(dirResource("/photos", 5,
				fileResource("/photos/c.jpg", "image/jpeg", 3),
				dirResource("/photos/raw", 0),
			), nil),
		client.EXPECT().
			ListEntries(gomock.Any(), testPublicKey, "/photos", yadisk.ListOptions{Limit: 2, Offset: 4}).
			Return(dirResource("/photos", 5,
				fileResource("/photos/d.jpg", "image/jpeg", 4),
			), nil),
	)

	listing, err := browser.Browse(context.Background(), ref, false)
	require.NoError(t, err)

	assert.Equal(t, ref, listing.Ref)
	assert.Equal(t, "photos", listing.Name)
	assert.Equal(t, EntryTypeFolder, listing.Type)
	assert.Equal(t, 5, listing.Total)
	assert.False(t, listing.FetchedAt.IsZero())

	names := make([]string, 0, len(listing.Entries))
	for i := range listing.Entries {
		names = append(names, listing.Entries[i].Name)
	}

	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg", "raw", "d.jpg"}, names)
	assert.Equal(t, EntryTypeFolder, listing.Entries[3].Type)
	assert.Len(t, listing.Files(), 4)
}

// TestBrowserImpl_Browse_StopsOnEmptyPage tests that an empty page ends pagination.
func TestBrowserImpl_Browse_StopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	client := newMockClient(t)
	browser := NewBrowser(cfg, client, NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL))

	gomock.InOrder(
		client.EXPECT().
			ListEntries(gomock.Any(), testPublicKey, "/", yadisk.ListOptions{Limit: 2, Offset: 0}).
			Return(dirResource("/", 10,
				fileResource("/a.txt", "text/plain", 1),
				fileResource("/b.txt", "text/plain", 1),
			), nil),
		client.EXPECT().
			ListEntries(gomock.Any(), testPublicKey, "/", yadisk.ListOptions{Limit: 2, Offset: 2}).
			Return(dirResource("/", 10), nil),
	)

	listing, err := browser.Browse(context.Background(), testRef(t, ""), false)
	require.NoError(t, err)
	assert.Equal(t, 2, listing.Total)
}

// TestBrowserImpl_Browse_PathPrefix tests that every entry path lies under the requested path.
func TestBrowserImpl_Browse_PathPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		resourcePath string
		items        []*yadisk.Resource
	}{
		{
			name:         "root",
			resourcePath: "/",
			items: []*yadisk.Resource{
				fileResource("/report.pdf", "application/pdf", 10),
				dirResource("/photos", 0),
			},
		},
		{
			name:         "nested folder",
			resourcePath: "/docs/2024",
			items: []*yadisk.Resource{
				fileResource("/docs/2024/q1.xlsx", "application/vnd.ms-excel", 10),
				fileResource("/docs/2024/q2.xlsx", "application/vnd.ms-excel", 10),
			},
		},
		{
			name:         "items with foreign paths are rebuilt",
			resourcePath: "/docs",
			items: []*yadisk.Resource{
				{Name: "a.txt", Path: "/elsewhere/a.txt", Type: yadisk.ResourceTypeFile},
				{Name: "b.txt", Type: yadisk.ResourceTypeFile},
				{Name: "c.txt", Path: "/docsarchive/c.txt", Type: yadisk.ResourceTypeFile},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := newTestConfig(t, func(cfg *config.Config) { cfg.PageSize = 100 })
			client := newMockClient(t)
			browser := NewBrowser(cfg, client, NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL))
			ref := testRef(t, tt.resourcePath)

			client.EXPECT().
				ListEntries(gomock.Any(), testPublicKey, ref.Path, gomock.Any()).
				Return(dirResource(ref.Path, len(tt.items), tt.items...), nil)

			listing, err := browser.Browse(context.Background(), ref, false)
			require.NoError(t, err)
			require.Len(t, listing.Entries, len(tt.items))

			for i := range listing.Entries {
				assert.True(t, hasPathPrefix(listing.Entries[i].Path, ref.Path),
					"entry %q is outside %q", listing.Entries[i].Path, ref.Path)

				if ref.Path != "/" {
					assert.Equal(t, ref.Path+"/"+listing.Entries[i].Name, listing.Entries[i].Path)
				}
			}
		})
	}
}

// TestBrowserImpl_Browse_SingleFile tests that a reference to a file lists that file alone.
func TestBrowserImpl_Browse_SingleFile(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	client := newMockClient(t)
	browser := NewBrowser(cfg, client, NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL))

	file := fileResource("/report.pdf", "application/pdf", 42)
	file.File = "https://downloader.disk.yandex.ru/disk/report.pdf"

	client.EXPECT().
		ListEntries(gomock.Any(), testPublicKey, "/report.pdf", gomock.Any()).
		Return(file, nil)

	listing, err := browser.Browse(context.Background(), testRef(t, "/report.pdf"), false)
	require.NoError(t, err)

	assert.Equal(t, EntryTypeFile, listing.Type)
	require.Len(t, listing.Entries, 1)
	assert.Equal(t, 1, listing.Total)

	entry := listing.Entries[0]
	assert.Equal(t, "report.pdf", entry.Name)
	assert.Equal(t, "/report.pdf", entry.Path)
	assert.Equal(t, FileCategoryDocument, entry.Category())
	assert.Equal(t, int64(42), entry.SizeBytes())
	assert.Equal(t, file.File, entry.DownloadHref)
}

// TestBrowserImpl_Browse_EmptyFolder tests that an empty folder is not an error.
func TestBrowserImpl_Browse_EmptyFolder(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	client := newMockClient(t)
	browser := NewBrowser(cfg, client, NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL))

	client.EXPECT().
		ListEntries(gomock.Any(), testPublicKey, "/", gomock.Any()).
		Return(dirResource("/", 0), nil)

	listing, err := browser.Browse(context.Background(), testRef(t, "/"), true)
	require.NoError(t, err)

	assert.NotNil(t, listing.Entries)
	assert.Empty(t, listing.Entries)
	assert.Equal(t, 0, listing.Total)
}

// TestBrowserImpl_Browse_CacheWithinTTL tests that a second cached browse makes no remote call.
func TestBrowserImpl_Browse_CacheWithinTTL(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	client := newMockClient(t)
	browser := NewBrowser(cfg, client, NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL))
	ref := testRef(t, "/")

	client.EXPECT().
		ListEntries(gomock.Any(), testPublicKey, "/", gomock.Any()).
		Return(dirResource("/", 1, fileResource("/report.pdf", "application/pdf", 10)), nil).
		Times(1)

	first, err := browser.Browse(context.Background(), ref, true)
	require.NoError(t, err)

	second, err := browser.Browse(context.Background(), ref, true)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

// TestBrowserImpl_Browse_CacheIsolation tests that different keys and paths never share a cache record.
func TestBrowserImpl_Browse_CacheIsolation(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	client := newMockClient(t)
	browser := NewBrowser(cfg, client, NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL))

	client.EXPECT().
		ListEntries(gomock.Any(), testPublicKey, "/", gomock.Any()).
		Return(dirResource("/", 1, fileResource("/a.txt", "text/plain", 1)), nil)
	client.EXPECT().
		ListEntries(gomock.Any(), testPublicKey, "/docs", gomock.Any()).
		Return(dirResource("/docs", 1, fileResource("/docs/b.txt", "text/plain", 1)), nil)
	client.EXPECT().
		ListEntries(gomock.Any(), "other-key", "/", gomock.Any()).
		Return(dirResource("/", 1, fileResource("/c.txt", "text/plain", 1)), nil)

	root, err := browser.Browse(context.Background(), testRef(t, "/"), true)
	require.NoError(t, err)

	docs, err := browser.Browse(context.Background(), testRef(t, "/docs"), true)
	require.NoError(t, err)

	other, err := browser.Browse(context.Background(), PublicResourceRef{PublicKey: "other-key", Path: "/"}, true)
	require.NoError(t, err)

	assert.Equal(t, "a.txt", root.Entries[0].Name)
	assert.Equal(t, "b.txt", docs.Entries[0].Name)
	assert.Equal(t, "c.txt", other.Entries[0].Name)
}

// TestBrowserImpl_Browse_CacheExpiry tests that a cached browse after the TTL fetches again and overwrites the record.
func TestBrowserImpl_Browse_CacheExpiry(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, func(cfg *config.Config) { cfg.CacheTTL = "20ms" })
	client := newMockClient(t)
	cache := NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL)
	browser := NewBrowser(cfg, client, cache)
	ref := testRef(t, "/")

	gomock.InOrder(
		client.EXPECT().
			ListEntries(gomock.Any(), testPublicKey, "/", gomock.Any()).
			Return(dirResource("/", 1, fileResource("/old.txt", "text/plain", 1)), nil),
		client.EXPECT().
			ListEntries(gomock.Any(), testPublicKey, "/", gomock.Any()).
			Return(dirResource("/", 1, fileResource("/new.txt", "text/plain", 1)), nil),
	)

	first, err := browser.Browse(context.Background(), ref, true)
	require.NoError(t, err)
	assert.Equal(t, "old.txt", first.Entries[0].Name)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(ref)

		return !ok
	}, time.Second, 2*time.Millisecond)

	second, err := browser.Browse(context.Background(), ref, true)
	require.NoError(t, err)
	assert.Equal(t, "new.txt", second.Entries[0].Name)

	cached, ok := cache.Get(ref)
	require.True(t, ok)
	assert.Same(t, second, cached)
}

// TestBrowserImpl_Browse_BypassRefreshesCache tests that an uncached browse still stores its result.
func TestBrowserImpl_Browse_BypassRefreshesCache(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	client := newMockClient(t)
	cache := NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL)
	browser := NewBrowser(cfg, client, cache)
	ref := testRef(t, "/")

	client.EXPECT().
		ListEntries(gomock.Any(), testPublicKey, "/", gomock.Any()).
		Return(dirResource("/", 0), nil).
		Times(2)

	_, err := browser.Browse(context.Background(), ref, false)
	require.NoError(t, err)

	fresh, err := browser.Browse(context.Background(), ref, false)
	require.NoError(t, err)

	cached, ok := cache.Get(ref)
	require.True(t, ok)
	assert.Same(t, fresh, cached)
}

// TestBrowserImpl_Browse_Errors tests translation of remote failures into browse errors.
func TestBrowserImpl_Browse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		resourcePath string
		setup        func(client *mockClientExpecter)
		expectedKind BrowseErrorKind
	}{
		{
			name:         "unknown key at root",
			resourcePath: "/",
			setup: func(c *mockClientExpecter) {
				c.listReturns("/", notFound())
			},
			expectedKind: BrowseErrorInvalidPublicKey,
		},
		{
			name:         "missing path under a valid key",
			resourcePath: "/missing",
			setup: func(c *mockClientExpecter) {
				c.listReturns("/missing", notFound())
				c.rootCheckReturns(nil)
			},
			expectedKind: BrowseErrorPathNotFound,
		},
		{
			name:         "missing path under an unknown key",
			resourcePath: "/missing",
			setup: func(c *mockClientExpecter) {
				c.listReturns("/missing", notFound())
				c.rootCheckReturns(notFound())
			},
			expectedKind: BrowseErrorInvalidPublicKey,
		},
		{
			name:         "refused",
			resourcePath: "/",
			setup: func(c *mockClientExpecter) {
				c.listReturns("/", remoteError(yadisk.ErrorKindUnauthorized, yadisk.OperationListEntries, http.StatusForbidden))
			},
			expectedKind: BrowseErrorInvalidPublicKey,
		},
		{
			name:         "malformed key",
			resourcePath: "/",
			setup: func(c *mockClientExpecter) {
				c.listReturns("/", remoteError(yadisk.ErrorKindMalformed, yadisk.OperationListEntries, http.StatusBadRequest))
			},
			expectedKind: BrowseErrorInvalidPublicKey,
		},
		{
			name:         "rate limited after all attempts",
			resourcePath: "/",
			setup: func(c *mockClientExpecter) {
				c.listReturns("/", remoteError(yadisk.ErrorKindRateLimited, yadisk.OperationListEntries, http.StatusTooManyRequests)).
					Times(3)
			},
			expectedKind: BrowseErrorUnavailable,
		},
		{
			name:         "server down after all attempts",
			resourcePath: "/",
			setup: func(c *mockClientExpecter) {
				c.listReturns("/", remoteError(yadisk.ErrorKindTransient, yadisk.OperationListEntries, http.StatusBadGateway)).
					Times(3)
			},
			expectedKind: BrowseErrorUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := newTestConfig(t)
			client := newMockClient(t)
			cache := NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL)
			browser := NewBrowser(cfg, client, cache)
			ref := testRef(t, tt.resourcePath)

			tt.setup(&mockClientExpecter{client: client})

			listing, err := browser.Browse(context.Background(), ref, true)
			require.Error(t, err)
			assert.Nil(t, listing)

			browseErr, ok := AsBrowseError(err)
			require.True(t, ok)
			assert.Equal(t, tt.expectedKind, browseErr.Kind)
			assert.Equal(t, ref, browseErr.Ref)
			assert.NotEmpty(t, browseErr.UserMessage())

			// Failures are never cached.
			_, cached := cache.Get(ref)
			assert.False(t, cached)
		})
	}
}

// TestBrowserImpl_Browse_RetriesTransientFailure tests that a transient failure is retried and then succeeds.
func TestBrowserImpl_Browse_RetriesTransientFailure(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	client := newMockClient(t)
	browser := NewBrowser(cfg, client, NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL))

	gomock.InOrder(
		client.EXPECT().
			ListEntries(gomock.Any(), testPublicKey, "/", gomock.Any()).
			Return(nil, remoteError(yadisk.ErrorKindTransient, yadisk.OperationListEntries, http.StatusServiceUnavailable)),
		client.EXPECT().
			ListEntries(gomock.Any(), testPublicKey, "/", gomock.Any()).
			Return(dirResource("/", 1, fileResource("/a.txt", "text/plain", 1)), nil),
	)

	listing, err := browser.Browse(context.Background(), testRef(t, "/"), false)
	require.NoError(t, err)
	assert.Equal(t, 1, listing.Total)
}

// TestBrowserImpl_Browse_PageFailureFailsWholeListing tests that a failing later page fails the browse.
func TestBrowserImpl_Browse_PageFailureFailsWholeListing(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, func(cfg *config.Config) { cfg.RetryAttemptsCount = 1 })
	client := newMockClient(t)
	browser := NewBrowser(cfg, client, NewListingCache(cfg.CacheSize, cfg.ParsedCacheTTL))

	gomock.InOrder(
		client.EXPECT().
			ListEntries(gomock.Any(), testPublicKey, "/", yadisk.ListOptions{Limit: 2}).
			Return(dirResource("/", 4,
				fileResource("/a.txt", "text/plain", 1),
				fileResource("/b.txt", "text/plain", 1),
			), nil),
		client.EXPECT().
			ListEntries(gomock.Any(), testPublicKey, "/", yadisk.ListOptions{Limit: 2, Offset: 2}).
			Return(nil, remoteError(yadisk.ErrorKindTransient, yadisk.OperationListEntries, http.StatusGatewayTimeout)),
	)

	_, err := browser.Browse(context.Background(), testRef(t, "/"), false)

	browseErr, ok := AsBrowseError(err)
	require.True(t, ok)
	assert.Equal(t, BrowseErrorUnavailable, browseErr.Kind)
}

// mockClientExpecter shortens listing expectations in table tests.
type mockClientExpecter struct {
	client *mock_yadisk_client.MockClient
}

// listReturns expects a listing of resourcePath that fails with err.
func (c *mockClientExpecter) listReturns(resourcePath string, err error) *gomock.Call {
	return c.client.EXPECT().
		ListEntries(gomock.Any(), testPublicKey, resourcePath, gomock.Any()).
		Return(nil, err)
}

// rootCheckReturns expects a one-item check of the root that fails with err, or succeeds when err is nil.
func (c *mockClientExpecter) rootCheckReturns(err error) *gomock.Call {
	call := c.client.EXPECT().
		ListEntries(gomock.Any(), testPublicKey, "/", yadisk.ListOptions{Limit: 1})

	if err != nil {
		return call.Return(nil, err)
	}

	return call.Return(dirResource("/", 1, fileResource("/a.txt", "text/plain", 1)), nil)
}
