package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/constants"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	yadisk_service "github.com/oshokin/yadisk-grabber/internal/service/yadisk"
	mock_yadisk "github.com/oshokin/yadisk-grabber/internal/service/yadisk/mocks"
)

const testPublicKey = "abc123"

type testServices struct {
	cfg        *config.Config
	browser    *mock_yadisk.MockBrowser
	downloader *mock_yadisk.MockDownloader
	services   *services
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	cfg := config.Default()
	cfg.OutputPath = t.TempDir()
	require.NoError(t, config.ValidateConfig(cfg))

	ctrl := gomock.NewController(t)
	browser := mock_yadisk.NewMockBrowser(ctrl)
	downloader := mock_yadisk.NewMockDownloader(ctrl)

	return &testServices{
		cfg:        cfg,
		browser:    browser,
		downloader: downloader,
		services:   &services{browser: browser, downloader: downloader},
	}
}

func rootRef() yadisk_service.PublicResourceRef {
	return yadisk_service.PublicResourceRef{PublicKey: testPublicKey, Path: "/"}
}

func testListing() *yadisk_service.ListingResult {
	size := int64(1024)

	return &yadisk_service.ListingResult{
		Ref:  rootRef(),
		Name: "share",
		Type: yadisk_service.EntryTypeFolder,
		Entries: []yadisk_service.ResourceEntry{
			{Name: "photos", Path: "/photos", Type: yadisk_service.EntryTypeFolder},
			{Name: "report.pdf", Path: "/report.pdf", Type: yadisk_service.EntryTypeFile, MimeType: "application/pdf", Size: &size},
			{Name: "cat.jpg", Path: "/cat.jpg", Type: yadisk_service.EntryTypeFile, MimeType: "image/jpeg", Size: &size},
		},
		Total: 3,
	}
}

func succeeded(entry yadisk_service.ResourceEntry, localPath string) yadisk_service.DownloadOutcome {
	return yadisk_service.DownloadOutcome{
		Entry:        entry,
		Status:       yadisk_service.OutcomeSucceeded,
		LocalPath:    localPath,
		BytesWritten: entry.SizeBytes(),
	}
}

// TestRunList tests printing a listing table.
func TestRunList(t *testing.T) {
	t.Parallel()

	ts := newTestServices(t)

	ts.browser.EXPECT().
		Browse(gomock.Any(), rootRef(), true).
		Return(testListing(), nil)

	var out bytes.Buffer

	err := runList(context.Background(), &out, ts.browser, ListOptions{PublicURL: testPublicKey})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "report.pdf")
	assert.Contains(t, out.String(), "photos/")
	assert.Contains(t, out.String(), "1.0 kB")
}

// TestRunList_CategoryAndNoCache tests filtering and cache bypass.
func TestRunList_CategoryAndNoCache(t *testing.T) {
	t.Parallel()

	ts := newTestServices(t)

	ts.browser.EXPECT().
		Browse(gomock.Any(), rootRef(), false).
		Return(testListing(), nil)

	var out bytes.Buffer

	err := runList(context.Background(), &out, ts.browser, ListOptions{
		PublicURL:  testPublicKey,
		Categories: []string{"image"},
		NoCache:    true,
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "cat.jpg")
	assert.NotContains(t, out.String(), "report.pdf")
}

// TestRunList_Errors tests failures before and during listing.
func TestRunList_Errors(t *testing.T) {
	t.Parallel()

	ts := newTestServices(t)

	var out bytes.Buffer

	err := runList(context.Background(), &out, ts.browser, ListOptions{PublicURL: " "})
	require.ErrorIs(t, err, yadisk_service.ErrEmptyPublicKey)

	err = runList(context.Background(), &out, ts.browser, ListOptions{PublicURL: testPublicKey, Categories: []string{"music"}})
	require.ErrorIs(t, err, yadisk_service.ErrUnknownFileCategory)

	browseErr := &yadisk_service.BrowseError{Kind: yadisk_service.BrowseErrorInvalidPublicKey, Ref: rootRef()}

	ts.browser.EXPECT().
		Browse(gomock.Any(), rootRef(), true).
		Return(nil, browseErr)

	err = runList(context.Background(), &out, ts.browser, ListOptions{PublicURL: testPublicKey})
	require.ErrorIs(t, err, browseErr)
	assert.Contains(t, err.Error(), "The public link is invalid")
}

// TestRunDownload_ByName tests downloading files picked by name.
func TestRunDownload_ByName(t *testing.T) {
	t.Parallel()

	ts := newTestServices(t)
	listing := testListing()
	report := listing.Entries[1]

	ts.browser.EXPECT().
		Browse(gomock.Any(), rootRef(), true).
		Return(listing, nil)
	ts.downloader.EXPECT().
		DownloadMany(gomock.Any(), rootRef(), []yadisk_service.ResourceEntry{report}, ts.cfg.OutputPath).
		Return([]yadisk_service.DownloadOutcome{succeeded(report, filepath.Join(ts.cfg.OutputPath, "report.pdf"))})

	var out bytes.Buffer

	outcomes, err := runDownload(context.Background(), &out, ts.cfg, ts.services, DownloadOptions{
		PublicURL: testPublicKey,
		Names:     []string{"report.pdf", "missing.txt"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Contains(t, out.String(), "report.pdf")
	assert.Contains(t, out.String(), "succeeded")
}

// TestRunDownload_AllFiles tests that no names means every file of the folder.
func TestRunDownload_AllFiles(t *testing.T) {
	t.Parallel()

	ts := newTestServices(t)
	listing := testListing()
	files := listing.Files()

	ts.browser.EXPECT().
		Browse(gomock.Any(), rootRef(), true).
		Return(listing, nil)
	ts.downloader.EXPECT().
		DownloadMany(gomock.Any(), rootRef(), files, ts.cfg.OutputPath).
		Return([]yadisk_service.DownloadOutcome{
			succeeded(files[0], filepath.Join(ts.cfg.OutputPath, "report.pdf")),
			{
				Entry:     files[1],
				Status:    yadisk_service.OutcomeFailed,
				ErrorKind: yadisk_service.DownloadErrorNetwork,
			},
		})

	var out bytes.Buffer

	outcomes, err := runDownload(context.Background(), &out, ts.cfg, ts.services, DownloadOptions{PublicURL: testPublicKey})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Contains(t, out.String(), "NetworkError")
}

// TestRunDownload_NamesFile tests reading entry names from a file.
func TestRunDownload_NamesFile(t *testing.T) {
	t.Parallel()

	ts := newTestServices(t)
	listing := testListing()
	cat := listing.Entries[2]

	namesFile := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(namesFile, []byte("/cat.jpg\n\n/cat.jpg\n"), constants.DefaultFilePermissions))

	ts.browser.EXPECT().
		Browse(gomock.Any(), rootRef(), true).
		Return(listing, nil)
	ts.downloader.EXPECT().
		DownloadMany(gomock.Any(), rootRef(), []yadisk_service.ResourceEntry{cat}, ts.cfg.OutputPath).
		Return([]yadisk_service.DownloadOutcome{succeeded(cat, filepath.Join(ts.cfg.OutputPath, "cat.jpg"))})

	var out bytes.Buffer

	_, err := runDownload(context.Background(), &out, ts.cfg, ts.services, DownloadOptions{
		PublicURL: testPublicKey,
		NamesFile: namesFile,
	})
	require.NoError(t, err)
}

// TestRunDownload_NothingToDownload tests that an empty selection never reaches the downloader.
func TestRunDownload_NothingToDownload(t *testing.T) {
	t.Parallel()

	ts := newTestServices(t)

	ts.browser.EXPECT().
		Browse(gomock.Any(), rootRef(), true).
		Return(testListing(), nil)

	var out bytes.Buffer

	_, err := runDownload(context.Background(), &out, ts.cfg, ts.services, DownloadOptions{
		PublicURL:  testPublicKey,
		Categories: []string{"video"},
	})
	require.ErrorIs(t, err, ErrNothingToDownload)
}

// TestSetupLogger tests enabling the rotated log file.
//
//nolint:paralleltest // Replaces the global logger.
func TestSetupLogger(t *testing.T) {
	previous := logger.Logger()
	t.Cleanup(func() { logger.SetLogger(previous) })

	cfg := config.Default()
	cfg.LogFile = filepath.Join(t.TempDir(), "yadisk-grabber.log")
	require.NoError(t, config.ValidateConfig(cfg))

	closeLogger := SetupLogger(context.Background(), cfg)

	logger.Info(context.Background(), "hello from the log file")
	closeLogger()

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the log file")
}
