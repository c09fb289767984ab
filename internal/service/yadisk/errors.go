package yadisk

import (
	"errors"
	"fmt"
)

// Common errors for the service layer.
var (
	// ErrNotAFile indicates a download request for a folder.
	ErrNotAFile = errors.New("entry is not a file")
	// ErrHrefExpired indicates that the download link kept expiring after being resolved again.
	ErrHrefExpired = errors.New("download link expired")
	// ErrIncompleteDownload indicates that the saved size doesn't match the announced size.
	ErrIncompleteDownload = errors.New("incomplete download")
	// ErrNoFreeFilename indicates that every numbered variant of a file name is taken.
	ErrNoFreeFilename = errors.New("no free file name left")
)

// BrowseErrorKind classifies listing failures.
type BrowseErrorKind uint8

const (
	// BrowseErrorInvalidPublicKey means the public key is unknown, expired or refused.
	BrowseErrorInvalidPublicKey BrowseErrorKind = iota + 1
	// BrowseErrorPathNotFound means the public key is fine but the location inside it doesn't exist.
	BrowseErrorPathNotFound
	// BrowseErrorUnavailable means the remote API is temporarily unreachable or throttling; retrying may help.
	BrowseErrorUnavailable
)

// String returns the kind name.
func (k BrowseErrorKind) String() string {
	switch k {
	case BrowseErrorInvalidPublicKey:
		return "InvalidPublicKey"
	case BrowseErrorPathNotFound:
		return "PathNotFound"
	case BrowseErrorUnavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}

// BrowseError describes a failed listing.
type BrowseError struct {
	// Kind classifies the failure.
	Kind BrowseErrorKind
	// Ref is the reference that was browsed.
	Ref PublicResourceRef
	// Err is the underlying remote error.
	Err error
}

// Error implements the error interface.
func (e *BrowseError) Error() string {
	return fmt.Sprintf("browse %s: %s: %v", e.Ref, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *BrowseError) Unwrap() error {
	return e.Err
}

// UserMessage returns a message that tells the user what to do next.
func (e *BrowseError) UserMessage() string {
	switch e.Kind {
	case BrowseErrorInvalidPublicKey:
		return "The public link is invalid, expired or no longer shared. Check the link and try again."
	case BrowseErrorPathNotFound:
		return fmt.Sprintf("The folder %q does not exist in this shared resource.", e.Ref.Path)
	case BrowseErrorUnavailable:
		return "Yandex Disk is temporarily unavailable. Please try again in a minute."
	default:
		return "Failed to list the shared resource."
	}
}

// AsBrowseError extracts a *BrowseError from err.
func AsBrowseError(err error) (*BrowseError, bool) {
	var browseErr *BrowseError
	if errors.As(err, &browseErr) {
		return browseErr, true
	}

	return nil, false
}

// DownloadErrorKind classifies download failures.
type DownloadErrorKind uint8

const (
	// DownloadErrorNotAFile means a folder was requested; folders are not downloaded.
	DownloadErrorNotAFile DownloadErrorKind = iota + 1
	// DownloadErrorNetwork covers link resolution and streaming failures.
	DownloadErrorNetwork
	// DownloadErrorDiskWrite covers directory creation, writing and renaming failures.
	DownloadErrorDiskWrite
	// DownloadErrorHrefExpired means the download link expired again right after being renewed.
	DownloadErrorHrefExpired
)

// String returns the kind name.
func (k DownloadErrorKind) String() string {
	switch k {
	case DownloadErrorNotAFile:
		return "NotAFile"
	case DownloadErrorNetwork:
		return "NetworkError"
	case DownloadErrorDiskWrite:
		return "DiskWriteError"
	case DownloadErrorHrefExpired:
		return "HrefExpired"
	default:
		return ""
	}
}

// DownloadError describes a failed download of one entry.
type DownloadError struct {
	// Kind classifies the failure.
	Kind DownloadErrorKind
	// EntryPath is the path of the entry inside the shared resource.
	EntryPath string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %s: %v", e.EntryPath, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *DownloadError) Unwrap() error {
	return e.Err
}

// newDownloadError wraps err as a download failure of the given kind.
func newDownloadError(kind DownloadErrorKind, entry *ResourceEntry, err error) *DownloadError {
	return &DownloadError{
		Kind:      kind,
		EntryPath: entry.Path,
		Err:       err,
	}
}
