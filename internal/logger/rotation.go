package logger

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/yadisk-grabber/internal/constants"
)

const (
	// DefaultMaxBackups is how many rotated files are kept next to the current one.
	DefaultMaxBackups = 3

	// backupDateLayout names rotated files as <file>.YYYY-MM-DD.
	backupDateLayout = "2006-01-02"
)

// ErrRotatingFileClosed is returned when writing to a closed RotatingFile.
var ErrRotatingFileClosed = errors.New("rotating log file is closed")

// RotatingFile is a zapcore.WriteSyncer that starts a new file every calendar day.
// The previous day's file is renamed to <path>.<YYYY-MM-DD> and only the newest
// maxBackups rotated files are kept.
type RotatingFile struct {
	// mu serializes writes, rotation and close.
	mu sync.Mutex
	// path is the path of the active log file.
	path string
	// maxBackups is the number of rotated files to keep.
	maxBackups int
	// now returns the current time; replaced in tests.
	now func() time.Time
	// file is the active file handle, nil before Open and after Close.
	file *os.File
	// day is the calendar day the active file belongs to.
	day string
	// closed is set by Close.
	closed bool
}

// RotatingFileOption configures a RotatingFile.
type RotatingFileOption func(*RotatingFile)

// WithClock replaces the clock used to detect day changes.
func WithClock(now func() time.Time) RotatingFileOption {
	return func(r *RotatingFile) {
		r.now = now
	}
}

// NewRotatingFile creates a RotatingFile. Call Open before handing it to a logger.
func NewRotatingFile(path string, maxBackups int, options ...RotatingFileOption) *RotatingFile {
	if maxBackups < 0 {
		maxBackups = DefaultMaxBackups
	}

	r := &RotatingFile{
		path:       filepath.Clean(path),
		maxBackups: maxBackups,
		now:        time.Now,
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// Open opens the active file for appending, creating its folder if needed.
// A leftover file from an earlier day is rotated right away.
func (r *RotatingFile) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("failed to create log folder: %w", err)
	}

	today := r.now().Format(backupDateLayout)

	if info, err := os.Stat(r.path); err == nil {
		if fileDay := info.ModTime().Format(backupDateLayout); fileDay != today {
			r.day = fileDay

			if err = r.moveToBackup(); err != nil {
				return err
			}
		}
	}

	r.closed = false

	return r.openCurrent(today)
}

// Write appends p to the active file, rotating first if the day has changed.
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrRotatingFileClosed
	}

	today := r.now().Format(backupDateLayout)

	if r.file == nil {
		if err := r.openCurrent(today); err != nil {
			return 0, err
		}
	} else if today != r.day {
		if err := r.rotate(today); err != nil {
			return 0, err
		}
	}

	return r.file.Write(p)
}

// Sync flushes the active file to disk.
func (r *RotatingFile) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}

	return r.file.Sync()
}

// Rotate forces a rotation regardless of the current day.
func (r *RotatingFile) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRotatingFileClosed
	}

	return r.rotate(r.now().Format(backupDateLayout))
}

// Close flushes and closes the active file. Later writes fail.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	return r.closeCurrent()
}

// Backups returns rotated files, oldest first.
// Files are ordered by their day and then by the counter of same-day rotations.
func (r *RotatingFile) Backups() ([]string, error) {
	backups, err := r.backupFiles()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(backups))
	for _, backup := range backups {
		paths = append(paths, backup.path)
	}

	return paths, nil
}

// backupFile is a rotated log file with its parsed name parts.
type backupFile struct {
	// path is the file path.
	path string
	// day is the day the file belongs to.
	day time.Time
	// counter numbers same-day rotations; 0 for the first one.
	counter int
}

func (r *RotatingFile) backupFiles() ([]backupFile, error) {
	matches, err := filepath.Glob(r.path + ".*")
	if err != nil {
		return nil, err
	}

	backups := make([]backupFile, 0, len(matches))

	for _, match := range matches {
		if backup, ok := r.parseBackup(match); ok {
			backups = append(backups, backup)
		}
	}

	slices.SortFunc(backups, func(a, b backupFile) int {
		if byDay := a.day.Compare(b.day); byDay != 0 {
			return byDay
		}

		return cmp.Compare(a.counter, b.counter)
	})

	return backups, nil
}

// parseBackup recognizes <path>.YYYY-MM-DD and <path>.YYYY-MM-DD.N names.
func (r *RotatingFile) parseBackup(match string) (backupFile, bool) {
	suffix := strings.TrimPrefix(match, r.path+".")
	if len(suffix) < len(backupDateLayout) {
		return backupFile{}, false
	}

	day, err := time.Parse(backupDateLayout, suffix[:len(backupDateLayout)])
	if err != nil {
		return backupFile{}, false
	}

	backup := backupFile{
		path: match,
		day:  day,
	}

	rest := suffix[len(backupDateLayout):]
	if rest == "" {
		return backup, true
	}

	counter, err := strconv.Atoi(strings.TrimPrefix(rest, "."))
	if err != nil || !strings.HasPrefix(rest, ".") || counter < 1 {
		return backupFile{}, false
	}

	backup.counter = counter

	return backup, true
}

func (r *RotatingFile) rotate(today string) error {
	if err := r.closeCurrent(); err != nil {
		return err
	}

	if err := r.moveToBackup(); err != nil {
		return err
	}

	return r.openCurrent(today)
}

func (r *RotatingFile) openCurrent(today string) error {
	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	r.file = file
	r.day = today

	return nil
}

func (r *RotatingFile) closeCurrent() error {
	if r.file == nil {
		return nil
	}

	syncErr := r.file.Sync()
	closeErr := r.file.Close()
	r.file = nil

	return errors.Join(syncErr, closeErr)
}

// moveToBackup renames the active file after the day it belongs to and prunes old backups.
func (r *RotatingFile) moveToBackup() error {
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		return nil
	}

	day := r.day
	if day == "" {
		day = r.now().Format(backupDateLayout)
	}

	backupPath, err := r.nextBackupPath(day)
	if err != nil {
		return err
	}

	if err = os.Rename(r.path, backupPath); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	return r.prune()
}

// nextBackupPath names the backup for day. A second rotation on the same day gets
// a counter one above the highest existing one, so pruned counters are never reused.
func (r *RotatingFile) nextBackupPath(day string) (string, error) {
	backups, err := r.backupFiles()
	if err != nil {
		return "", err
	}

	counter := -1

	for _, backup := range backups {
		if backup.day.Format(backupDateLayout) == day {
			counter = max(counter, backup.counter)
		}
	}

	if counter < 0 {
		return r.path + "." + day, nil
	}

	return fmt.Sprintf("%s.%s.%d", r.path, day, counter+1), nil
}

func (r *RotatingFile) prune() error {
	backups, err := r.Backups()
	if err != nil {
		return err
	}

	if len(backups) <= r.maxBackups {
		return nil
	}

	var errs []error

	for _, backup := range backups[:len(backups)-r.maxBackups] {
		if removeErr := os.Remove(backup); removeErr != nil && !os.IsNotExist(removeErr) {
			errs = append(errs, removeErr)
		}
	}

	return errors.Join(errs...)
}
