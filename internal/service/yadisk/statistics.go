package yadisk

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/yadisk-grabber/internal/logger"
)

const summarySeparator = "═══════════════════════════════════════════════════════════════"

// DownloadStatistics tracks totals of a download session.
type DownloadStatistics struct {
	// StartTime is when the first download of the session began.
	StartTime time.Time
	// EndTime is when the last download of the session finished.
	EndTime time.Time
	// TotalFilesProcessed is the number of entries attempted.
	TotalFilesProcessed int64
	// FilesDownloaded is the number of files saved.
	FilesDownloaded int64
	// FilesFailed is the number of entries that were not saved.
	FilesFailed int64
	// FailuresByKind counts failures per error kind.
	FailuresByKind map[DownloadErrorKind]int64
	// TotalBytesDownloaded is the size of the saved files.
	TotalBytesDownloaded int64
	// Failures lists every failed entry.
	Failures []FailedDownload
}

// FailedDownload describes one failed entry for the summary.
type FailedDownload struct {
	// Name is the entry name.
	Name string
	// Path is the entry path inside the shared resource.
	Path string
	// Kind classifies the failure.
	Kind DownloadErrorKind
	// ErrorMessage is the error text.
	ErrorMessage string
}

// newDownloadStatistics creates empty statistics.
func newDownloadStatistics() *DownloadStatistics {
	return &DownloadStatistics{
		FailuresByKind: make(map[DownloadErrorKind]int64),
	}
}

// record adds an outcome to the totals.
func (s *DownloadStatistics) record(outcome *DownloadOutcome) {
	s.TotalFilesProcessed++

	if outcome.Succeeded() {
		s.FilesDownloaded++
		s.TotalBytesDownloaded += outcome.BytesWritten

		return
	}

	s.FilesFailed++
	s.FailuresByKind[outcome.ErrorKind]++

	failure := FailedDownload{
		Name: outcome.Entry.Name,
		Path: outcome.Entry.Path,
		Kind: outcome.ErrorKind,
	}

	if outcome.Err != nil {
		failure.ErrorMessage = outcome.Err.Error()
	}

	s.Failures = append(s.Failures, failure)
}

// clone returns a deep copy that is safe to read without the lock.
func (s *DownloadStatistics) clone() DownloadStatistics {
	snapshot := *s

	snapshot.FailuresByKind = make(map[DownloadErrorKind]int64, len(s.FailuresByKind))
	for kind, count := range s.FailuresByKind {
		snapshot.FailuresByKind[kind] = count
	}

	snapshot.Failures = append([]FailedDownload(nil), s.Failures...)

	return snapshot
}

// markStarted records the session start time once.
func (d *DownloaderImpl) markStarted() {
	d.statsMutex.Lock()
	defer d.statsMutex.Unlock()

	if d.stats.StartTime.IsZero() {
		d.stats.StartTime = time.Now()
	}
}

// markFinished records the latest finish time.
func (d *DownloaderImpl) markFinished() {
	d.statsMutex.Lock()
	defer d.statsMutex.Unlock()

	d.stats.EndTime = time.Now()
}

// Statistics returns a snapshot of the session statistics.
func (d *DownloaderImpl) Statistics() DownloadStatistics {
	d.statsMutex.Lock()
	defer d.statsMutex.Unlock()

	return d.stats.clone()
}

// PrintDownloadSummary prints a formatted summary of download statistics.
func (d *DownloaderImpl) PrintDownloadSummary(ctx context.Context) {
	stats := d.Statistics()

	// If nothing was processed, don't print summary.
	if stats.TotalFilesProcessed == 0 {
		return
	}

	// Check if the context was canceled (CTRL+C or timeout).
	wasInterrupted := ctx.Err() != nil

	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)

	if wasInterrupted {
		logger.Info(ctx, "           DOWNLOAD SUMMARY (Interrupted)")
	} else {
		logger.Info(ctx, "                     DOWNLOAD SUMMARY")
	}

	logger.Info(ctx, summarySeparator)

	printFileStatistics(ctx, &stats)
	printDataTransferStatistics(ctx, &stats)

	logger.Info(ctx, summarySeparator)

	printFailures(ctx, stats.Failures)
	printFinalMessage(ctx, wasInterrupted, &stats)
}

// printFileStatistics prints file counters.
func printFileStatistics(ctx context.Context, stats *DownloadStatistics) {
	logger.Infof(ctx, "Files:            %d total processed", stats.TotalFilesProcessed)

	if stats.FilesDownloaded > 0 {
		logger.Infof(ctx, "  Downloaded:      %d", stats.FilesDownloaded)
	}

	if stats.FilesFailed > 0 {
		logger.Infof(ctx, "  Failed:          %d", stats.FilesFailed)

		for _, kind := range []DownloadErrorKind{
			DownloadErrorNotAFile,
			DownloadErrorNetwork,
			DownloadErrorDiskWrite,
			DownloadErrorHrefExpired,
		} {
			if count := stats.FailuresByKind[kind]; count > 0 {
				logger.Infof(ctx, "    %-15s %d", kind.String()+":", count)
			}
		}
	}

	successRate := float64(stats.FilesDownloaded) / float64(stats.TotalFilesProcessed) * 100
	logger.Infof(ctx, "  Success Rate:    %.1f%%", successRate)
}

// printDataTransferStatistics prints data transfer statistics.
func printDataTransferStatistics(ctx context.Context, stats *DownloadStatistics) {
	if stats.TotalBytesDownloaded > 0 {
		logger.Info(ctx, "")
		//nolint:gosec // TotalBytesDownloaded is always positive, no overflow risk.
		logger.Infof(ctx, "Data Downloaded:  %s", humanize.Bytes(uint64(stats.TotalBytesDownloaded)))
	}

	if stats.StartTime.IsZero() || stats.EndTime.IsZero() {
		return
	}

	duration := stats.EndTime.Sub(stats.StartTime)

	// Only show if duration is meaningful (> 100ms).
	if duration <= 100*time.Millisecond {
		return
	}

	logger.Infof(ctx, "Duration:         %s", formatDuration(duration))

	if stats.TotalBytesDownloaded > 0 {
		bytesPerSecond := float64(stats.TotalBytesDownloaded) / duration.Seconds()
		logger.Infof(ctx, "Average Speed:    %s/s", humanize.Bytes(uint64(bytesPerSecond)))
	}
}

// printFailures lists every failed entry.
func printFailures(ctx context.Context, failures []FailedDownload) {
	if len(failures) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "ERRORS ENCOUNTERED: %d", len(failures))

	for i := range failures {
		logger.Info(ctx, "")
		logger.Errorf(ctx, "  [%d] %s", i+1, failures[i].Name)
		logger.Errorf(ctx, "      Path: %s", failures[i].Path)
		logger.Errorf(ctx, "      Kind: %s", failures[i].Kind)
		logger.Errorf(ctx, "      Error: %s", failures[i].ErrorMessage)
	}

	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)
}

// printFinalMessage prints a helpful message based on download results.
func printFinalMessage(ctx context.Context, wasInterrupted bool, stats *DownloadStatistics) {
	switch {
	case wasInterrupted:
		logger.Info(ctx, "")
		logger.Warn(ctx, "Download interrupted by user (CTRL+C).")

		if stats.FilesDownloaded > 0 {
			logger.Infof(ctx, "Successfully downloaded %d file(s) before interruption.", stats.FilesDownloaded)
		}
	case stats.FilesFailed > 0 && stats.FilesDownloaded > 0:
		logger.Info(ctx, "")
		logger.Warnf(ctx, "%d file(s) saved, %d failed. See the error list above.",
			stats.FilesDownloaded, stats.FilesFailed)
	case stats.FilesFailed > 0:
		logger.Info(ctx, "")
		logger.Warnf(ctx, "%d error(s) occurred during download. See detailed error log above.", stats.FilesFailed)
	default:
		logger.Info(ctx, "")
		logger.Info(ctx, "All downloads completed successfully!")
	}
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}
