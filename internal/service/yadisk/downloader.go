package yadisk

//go:generate $MOCKGEN -source=downloader.go -destination=mocks/downloader_mock.go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/yadisk-grabber/internal/client/yadisk"
	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/constants"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	"github.com/oshokin/yadisk-grabber/internal/metrics"
	"github.com/oshokin/yadisk-grabber/internal/utils"
)

const (
	// maxNumberedFilenames bounds the search for a free "name (N).ext".
	maxNumberedFilenames = 10000

	// tempFileOptions creates or truncates a temporary file for writing.
	tempFileOptions = os.O_CREATE | os.O_WRONLY | os.O_TRUNC

	// reserveFileOptions creates a file only if it does not exist yet.
	reserveFileOptions = os.O_CREATE | os.O_EXCL | os.O_WRONLY
)

// Downloader saves entries of public resources to local storage.
type Downloader interface {
	// DownloadOne saves a single file entry into destDir.
	DownloadOne(ctx context.Context, ref PublicResourceRef, entry ResourceEntry, destDir string) DownloadOutcome
	// DownloadMany saves every entry into destDir and returns one outcome per entry, in input order.
	// A failed entry never stops the others.
	DownloadMany(ctx context.Context, ref PublicResourceRef, entries []ResourceEntry, destDir string) []DownloadOutcome
	// Statistics returns a snapshot of the session statistics.
	Statistics() DownloadStatistics
	// PrintDownloadSummary prints a formatted summary of download statistics.
	PrintDownloadSummary(ctx context.Context)
}

// DownloaderImpl implements the Downloader interface.
type DownloaderImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// client is the client for the Yandex Disk API.
	client yadisk.Client
	// stats tracks download statistics for the current session.
	stats *DownloadStatistics
	// statsMutex protects concurrent access to statistics.
	statsMutex *sync.Mutex
}

// NewDownloader creates a Downloader that fetches files through client.
func NewDownloader(cfg *config.Config, client yadisk.Client) Downloader {
	return &DownloaderImpl{
		cfg:        cfg,
		client:     client,
		stats:      newDownloadStatistics(),
		statsMutex: new(sync.Mutex),
	}
}

// DownloadOne saves a single file entry into destDir.
func (d *DownloaderImpl) DownloadOne(
	ctx context.Context,
	ref PublicResourceRef,
	entry ResourceEntry,
	destDir string,
) DownloadOutcome {
	d.markStarted()
	defer d.markFinished()

	return d.download(ctx, ref, entry, destDir)
}

// DownloadMany saves every entry into destDir and returns one outcome per entry, in input order.
func (d *DownloaderImpl) DownloadMany(
	ctx context.Context,
	ref PublicResourceRef,
	entries []ResourceEntry,
	destDir string,
) []DownloadOutcome {
	d.markStarted()
	defer d.markFinished()

	outcomes := make([]DownloadOutcome, len(entries))

	// Sequential download (default behavior when max concurrency is 1).
	if d.cfg.MaxConcurrentDownloads <= 1 {
		for i := range entries {
			logger.Infof(ctx, "Downloading file: %s (%d / %d)", entries[i].Path, i+1, len(entries))

			outcomes[i] = d.download(ctx, ref, entries[i], destDir)
		}

		return outcomes
	}

	// Concurrent downloads with worker pool pattern.
	semaphore := make(chan struct{}, d.cfg.MaxConcurrentDownloads)

	var waitGroup sync.WaitGroup

	for i := range entries {
		waitGroup.Add(1)

		go func(index int) {
			defer waitGroup.Done()

			// Acquire semaphore slot unless the caller gave up.
			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				outcomes[index] = d.fail(ctx, entries[index],
					newDownloadError(DownloadErrorNetwork, &entries[index], ctx.Err()))

				return
			}

			defer func() {
				// Release semaphore slot when done.
				<-semaphore
			}()

			outcomes[index] = d.download(ctx, ref, entries[index], destDir)
		}(i)
	}

	// Wait for all in-flight downloads to complete.
	waitGroup.Wait()

	return outcomes
}

// download runs the whole pipeline for one entry and records the outcome.
func (d *DownloaderImpl) download(
	ctx context.Context,
	ref PublicResourceRef,
	entry ResourceEntry,
	destDir string,
) DownloadOutcome {
	ctx = logger.WithKV(ctx, "entry", entry.Path)

	// Folders are not downloaded recursively, and nothing is sent for them.
	if !entry.IsFile() {
		return d.fail(ctx, entry, newDownloadError(DownloadErrorNotAFile, &entry, ErrNotAFile))
	}

	// Check if context was canceled (CTRL+C pressed) before touching anything.
	if err := ctx.Err(); err != nil {
		return d.fail(ctx, entry, newDownloadError(DownloadErrorNetwork, &entry, err))
	}

	if err := os.MkdirAll(destDir, constants.DefaultFolderPermissions); err != nil {
		return d.fail(ctx, entry, newDownloadError(DownloadErrorDiskWrite, &entry,
			fmt.Errorf("failed to create destination folder: %w", err)))
	}

	href := entry.DownloadHref
	if href == "" {
		var err error

		href, err = d.resolveHref(ctx, ref, &entry)
		if err != nil {
			return d.fail(ctx, entry, newDownloadError(DownloadErrorNetwork, &entry, err))
		}
	}

	finalPath, release, err := d.reserveTarget(destDir, &entry)
	if err != nil {
		return d.fail(ctx, entry, newDownloadError(DownloadErrorDiskWrite, &entry,
			fmt.Errorf("failed to reserve file name: %w", err)))
	}

	// The temporary name is unique, so concurrent downloads of the same name never share it.
	tempPath := finalPath + "." + uuid.NewString() + constants.PartFileExtension

	bytesWritten, downloadErr := d.saveWithRenewal(ctx, ref, &entry, href, tempPath)
	if downloadErr == nil {
		if err = os.Rename(tempPath, finalPath); err != nil {
			downloadErr = newDownloadError(DownloadErrorDiskWrite, &entry,
				fmt.Errorf("failed to rename temporary file: %w", err))
		}
	}

	if downloadErr != nil {
		removeQuietly(ctx, tempPath)
		release()

		return d.fail(ctx, entry, downloadErr)
	}

	logger.Infof(ctx, "File saved to '%s'", finalPath)

	outcome := DownloadOutcome{
		Entry:        entry,
		Status:       OutcomeSucceeded,
		LocalPath:    finalPath,
		BytesWritten: bytesWritten,
	}

	d.recordOutcome(&outcome)

	return outcome
}

// fail builds, logs and records a failed outcome.
func (d *DownloaderImpl) fail(ctx context.Context, entry ResourceEntry, err *DownloadError) DownloadOutcome {
	if errors.Is(err, context.Canceled) {
		logger.Debugf(ctx, "Download canceled: %v", err)
	} else {
		logger.Errorf(ctx, "Failed to download: %v", err)
	}

	outcome := DownloadOutcome{
		Entry:     entry,
		Status:    OutcomeFailed,
		ErrorKind: err.Kind,
		Err:       err,
	}

	d.recordOutcome(&outcome)

	return outcome
}

// resolveHref obtains a fresh download link for entry, retrying transient failures.
func (d *DownloaderImpl) resolveHref(ctx context.Context, ref PublicResourceRef, entry *ResourceEntry) (string, error) {
	link, err := withRetry(ctx, d.cfg, "resolve download link", func(ctx context.Context) (*yadisk.Link, error) {
		return d.client.ResolveDownloadHref(ctx, ref.PublicKey, entry.Path)
	})
	if err != nil {
		return "", err
	}

	return link.Href, nil
}

// saveWithRenewal streams href into tempPath.
// An expired link is resolved again once; a second expiry is reported as HrefExpired.
func (d *DownloaderImpl) saveWithRenewal(
	ctx context.Context,
	ref PublicResourceRef,
	entry *ResourceEntry,
	href, tempPath string,
) (int64, *DownloadError) {
	bytesWritten, downloadErr := d.saveToFile(ctx, entry, href, tempPath)
	if downloadErr == nil || downloadErr.Kind != DownloadErrorHrefExpired {
		return bytesWritten, downloadErr
	}

	logger.Warn(ctx, "Download link expired, resolving a new one")

	href, err := d.resolveHref(ctx, ref, entry)
	if err != nil {
		return 0, newDownloadError(DownloadErrorNetwork, entry, err)
	}

	return d.saveToFile(ctx, entry, href, tempPath)
}

// saveToFile streams href into path, honoring the speed limit.
func (d *DownloaderImpl) saveToFile(
	ctx context.Context,
	entry *ResourceEntry,
	href, filePath string,
) (int64, *DownloadError) {
	fetchResult, err := withRetry(ctx, d.cfg, "fetch content", func(ctx context.Context) (*yadisk.FetchContentResult, error) {
		return d.client.FetchContent(ctx, href)
	})
	if err != nil {
		if isHrefExpired(err) {
			return 0, newDownloadError(DownloadErrorHrefExpired, entry, fmt.Errorf("%w: %w", ErrHrefExpired, err))
		}

		return 0, newDownloadError(DownloadErrorNetwork, entry, err)
	}

	defer fetchResult.Body.Close() //nolint:errcheck // Error on close is not critical here.

	f, err := os.OpenFile(filepath.Clean(filePath), tempFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return 0, newDownloadError(DownloadErrorDiskWrite, entry, fmt.Errorf("failed to create temporary file: %w", err))
	}

	output := &diskWriter{file: f}

	// Progress bars are disabled when downloading concurrently to avoid terminal output conflicts.
	var writer io.Writer = output

	if logger.Level() <= zapcore.InfoLevel && d.cfg.MaxConcurrentDownloads == 1 {
		bar := progressbar.DefaultBytes(fetchResult.TotalBytes, entry.Name)
		writer = io.MultiWriter(output, bar)
	}

	bytesWritten, copyErr := d.copyWithLimit(ctx, writer, fetchResult.Body)

	closeErr := f.Close()

	switch {
	case copyErr != nil && output.err != nil:
		return bytesWritten, newDownloadError(DownloadErrorDiskWrite, entry, fmt.Errorf("failed to write file: %w", copyErr))
	case copyErr != nil:
		return bytesWritten, newDownloadError(DownloadErrorNetwork, entry, fmt.Errorf("failed to read content: %w", copyErr))
	case closeErr != nil:
		return bytesWritten, newDownloadError(DownloadErrorDiskWrite, entry, fmt.Errorf("failed to close file: %w", closeErr))
	}

	// Verify that we downloaded the expected number of bytes.
	if fetchResult.TotalBytes >= 0 && bytesWritten != fetchResult.TotalBytes {
		return bytesWritten, newDownloadError(DownloadErrorNetwork, entry, fmt.Errorf(
			"%w: wrote %d bytes, expected %d bytes",
			ErrIncompleteDownload,
			bytesWritten,
			fetchResult.TotalBytes,
		))
	}

	return bytesWritten, nil
}

// copyWithLimit copies src into dst, at most ParsedDownloadSpeedLimit bytes per second when a limit is set.
func (d *DownloaderImpl) copyWithLimit(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	limit := d.cfg.ParsedDownloadSpeedLimit
	if limit <= 0 {
		return io.Copy(dst, src)
	}

	var bytesWritten int64

	for {
		n, err := io.CopyN(dst, src, limit)
		bytesWritten += n

		if errors.Is(err, io.EOF) {
			return bytesWritten, nil
		}

		if err != nil {
			return bytesWritten, err
		}

		// Throttle to respect speed limit.
		select {
		case <-ctx.Done():
			return bytesWritten, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// reserveTarget picks the final path of entry according to the collision policy.
// With the rename policy the name is reserved by creating an empty file exclusively;
// release removes that placeholder when the download fails.
func (d *DownloaderImpl) reserveTarget(destDir string, entry *ResourceEntry) (string, func(), error) {
	name := entry.Name
	if name == "" {
		name = path.Base(entry.Path)
	}

	name = utils.SanitizeFilename(name)

	if d.cfg.CollisionPolicy == config.CollisionPolicyOverwrite {
		return filepath.Join(destDir, name), func() {}, nil
	}

	for counter := range maxNumberedFilenames {
		candidate := filepath.Join(destDir, utils.NumberedFilename(name, counter))

		placeholder, err := os.OpenFile(candidate, reserveFileOptions, constants.DefaultFilePermissions)
		if errors.Is(err, fs.ErrExist) {
			continue
		}

		if err != nil {
			return "", nil, err
		}

		if err = placeholder.Close(); err != nil {
			_ = os.Remove(candidate)

			return "", nil, err
		}

		return candidate, func() { _ = os.Remove(candidate) }, nil
	}

	return "", nil, fmt.Errorf("%w: %s", ErrNoFreeFilename, name)
}

// diskWriter remembers write failures so they can be told apart from read failures.
type diskWriter struct {
	file *os.File
	err  error
}

func (w *diskWriter) Write(p []byte) (int, error) {
	n, err := w.file.Write(p)
	if err != nil {
		w.err = err
	}

	return n, err
}

// isHrefExpired reports whether a content request failed because the link is no longer valid.
func isHrefExpired(err error) bool {
	remoteErr, ok := yadisk.AsRemoteAPIError(err)
	if !ok || remoteErr.Operation != yadisk.OperationFetchContent {
		return false
	}

	return remoteErr.Kind == yadisk.ErrorKindNotFound || remoteErr.Kind == yadisk.ErrorKindUnauthorized
}

// removeQuietly deletes a leftover file, logging anything but its absence.
func removeQuietly(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		logger.Warnf(ctx, "Failed to clean up temporary file '%s': %v", filePath, err)
	}
}

// recordOutcome updates the session statistics and metrics with an outcome.
func (d *DownloaderImpl) recordOutcome(outcome *DownloadOutcome) {
	metrics.RecordDownload(string(outcome.Status), outcome.ErrorKind.String(), outcome.BytesWritten)

	d.statsMutex.Lock()
	defer d.statsMutex.Unlock()

	d.stats.record(outcome)
}
