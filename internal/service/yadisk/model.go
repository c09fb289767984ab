package yadisk

import (
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/yadisk-grabber/internal/client/yadisk"
	"github.com/oshokin/yadisk-grabber/internal/utils"
)

// EntryType is the kind of a listed entry, as reported by the remote API.
type EntryType string

const (
	// EntryTypeFile is a regular file.
	EntryTypeFile EntryType = yadisk.ResourceTypeFile
	// EntryTypeFolder is a folder.
	EntryTypeFolder EntryType = yadisk.ResourceTypeDir
)

// rootPath is the path of the shared resource itself.
const rootPath = yadisk.RootPath

// cacheKeySeparator cannot appear in a public key or a path.
const cacheKeySeparator = "\x00"

// PublicResourceRef identifies a shared resource and a location inside it.
type PublicResourceRef struct {
	// PublicKey is the public key or the public link of the shared resource.
	PublicKey string `json:"public_key"`
	// Path is the location inside the shared resource, always starting with "/".
	Path string `json:"path"`
}

// CacheKey returns a key that is unique for every (public key, path) pair.
func (r PublicResourceRef) CacheKey() string {
	return r.PublicKey + cacheKeySeparator + r.Path
}

// IsRoot reports whether the reference points at the shared resource itself.
func (r PublicResourceRef) IsRoot() bool {
	return r.Path == rootPath
}

// Root returns the reference to the shared resource itself.
func (r PublicResourceRef) Root() PublicResourceRef {
	return PublicResourceRef{PublicKey: r.PublicKey, Path: rootPath}
}

// WithPath returns a reference to another location inside the same shared resource.
func (r PublicResourceRef) WithPath(resourcePath string) PublicResourceRef {
	return PublicResourceRef{PublicKey: r.PublicKey, Path: normalizePath(resourcePath)}
}

// Parent returns the reference to the enclosing folder; the root is its own parent.
func (r PublicResourceRef) Parent() PublicResourceRef {
	return r.WithPath(path.Dir(r.Path))
}

// String returns a readable form of the reference.
func (r PublicResourceRef) String() string {
	if r.IsRoot() {
		return r.PublicKey
	}

	return r.PublicKey + " " + r.Path
}

// ResourceEntry is a file or folder found by a listing.
type ResourceEntry struct {
	// Name is the entry name.
	Name string `json:"name"`
	// Path is the entry path inside the shared resource.
	Path string `json:"path"`
	// Type is either EntryTypeFile or EntryTypeFolder.
	Type EntryType `json:"type"`
	// MimeType is the MIME type of a file.
	MimeType string `json:"mime_type,omitempty"`
	// MediaType is the coarse media class assigned by Yandex Disk.
	MediaType string `json:"media_type,omitempty"`
	// Size is the file size in bytes; nil for folders.
	Size *int64 `json:"size,omitempty"`
	// Created is the creation time.
	Created time.Time `json:"created"`
	// Modified is the last modification time.
	Modified time.Time `json:"modified"`
	// DownloadHref is a direct link the listing carried; it expires after a few hours.
	DownloadHref string `json:"download_href,omitempty"`
	// MD5 is the MD5 checksum of a file.
	MD5 string `json:"md5,omitempty"`
	// SHA256 is the SHA-256 checksum of a file.
	SHA256 string `json:"sha256,omitempty"`
}

// IsFile reports whether the entry is a regular file.
func (e *ResourceEntry) IsFile() bool {
	return e.Type == EntryTypeFile
}

// IsFolder reports whether the entry is a folder.
func (e *ResourceEntry) IsFolder() bool {
	return e.Type == EntryTypeFolder
}

// Category returns the file category of the entry.
func (e *ResourceEntry) Category() FileCategory {
	return CategoryOf(e.Type, e.MimeType, e.MediaType)
}

// SizeBytes returns the entry size, or zero when it is unknown.
func (e *ResourceEntry) SizeBytes() int64 {
	if e.Size == nil {
		return 0
	}

	return *e.Size
}

// HumanSize returns the entry size in a readable form, or an empty string for folders.
func (e *ResourceEntry) HumanSize() string {
	if e.Size == nil || *e.Size < 0 {
		return ""
	}

	return humanize.Bytes(uint64(*e.Size))
}

// ListingResult is the complete content of a location inside a shared resource.
// It is never modified after Browse returns it.
type ListingResult struct {
	// Ref is the reference the listing was requested for.
	Ref PublicResourceRef `json:"ref"`
	// Name is the name of the listed resource.
	Name string `json:"name"`
	// Type is the type of the listed resource; a file yields a single entry.
	Type EntryType `json:"type"`
	// Entries are the listed entries in the order the remote API returned them.
	Entries []ResourceEntry `json:"entries"`
	// Total is the number of entries.
	Total int `json:"total"`
	// FetchedAt is when the listing was fetched from the remote API.
	FetchedAt time.Time `json:"fetched_at"`
}

// Files returns the file entries of the listing.
func (l *ListingResult) Files() []ResourceEntry {
	return utils.Filter(l.Entries, func(entry ResourceEntry) bool {
		return entry.IsFile()
	})
}

// Folders returns the folder entries of the listing.
func (l *ListingResult) Folders() []ResourceEntry {
	return utils.Filter(l.Entries, func(entry ResourceEntry) bool {
		return entry.IsFolder()
	})
}

// OutcomeStatus is the result of a single download.
type OutcomeStatus string

const (
	// OutcomeSucceeded means the file was saved.
	OutcomeSucceeded OutcomeStatus = "succeeded"
	// OutcomeFailed means the file was not saved.
	OutcomeFailed OutcomeStatus = "failed"
)

// DownloadOutcome is the result of downloading one entry.
type DownloadOutcome struct {
	// Entry is the entry that was requested.
	Entry ResourceEntry
	// Status tells whether the download succeeded.
	Status OutcomeStatus
	// LocalPath is where the file was saved; empty on failure.
	LocalPath string
	// BytesWritten is the number of bytes saved.
	BytesWritten int64
	// ErrorKind classifies a failure; zero on success.
	ErrorKind DownloadErrorKind
	// Err is the failure; nil on success.
	Err error
}

// Succeeded reports whether the file was saved.
func (o *DownloadOutcome) Succeeded() bool {
	return o.Status == OutcomeSucceeded
}

// normalizePath makes an internal path absolute and clean; an empty path is the root.
func normalizePath(resourcePath string) string {
	resourcePath = strings.TrimSpace(resourcePath)
	if resourcePath == "" {
		return rootPath
	}

	return path.Clean(rootPath + strings.TrimPrefix(resourcePath, rootPath))
}

// hasPathPrefix reports whether entryPath lies at or under prefix.
func hasPathPrefix(entryPath, prefix string) bool {
	if prefix == rootPath {
		return strings.HasPrefix(entryPath, rootPath)
	}

	return entryPath == prefix || strings.HasPrefix(entryPath, prefix+"/")
}
