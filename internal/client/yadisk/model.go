package yadisk

import (
	"io"
	"time"
)

// Resource is a file or folder as returned by the public resources endpoint.
// For folders, Embedded holds one page of its children.
type Resource struct {
	// PublicKey is the key of the shared resource the entry belongs to.
	PublicKey string `json:"public_key"`
	// PublicURL is the share link, present on the shared root.
	PublicURL string `json:"public_url,omitempty"`
	// Name is the entry name.
	Name string `json:"name"`
	// Path is the entry path relative to the shared root, starting with "/".
	Path string `json:"path"`
	// Type is ResourceTypeFile or ResourceTypeDir.
	Type string `json:"type"`
	// MimeType is the MIME type of a file.
	MimeType string `json:"mime_type,omitempty"`
	// MediaType is the coarse media class assigned by Yandex Disk (image, video, document...).
	MediaType string `json:"media_type,omitempty"`
	// Size is the file size in bytes; nil for folders.
	Size *int64 `json:"size,omitempty"`
	// Created is the creation time.
	Created time.Time `json:"created"`
	// Modified is the last modification time.
	Modified time.Time `json:"modified"`
	// File is a direct download link that the listing sometimes carries for files.
	File string `json:"file,omitempty"`
	// MD5 is the MD5 checksum of a file.
	MD5 string `json:"md5,omitempty"`
	// SHA256 is the SHA-256 checksum of a file.
	SHA256 string `json:"sha256,omitempty"`
	// Preview is a preview image link.
	Preview string `json:"preview,omitempty"`
	// Embedded is one page of a folder's children.
	Embedded *ResourceList `json:"_embedded,omitempty"`
}

// ResourceList is one page of folder children.
type ResourceList struct {
	// Items are the children on this page.
	Items []*Resource `json:"items"`
	// Limit is the page size the server applied.
	Limit int `json:"limit"`
	// Offset is the offset of the first item.
	Offset int `json:"offset"`
	// Total is the number of children in the folder.
	Total int `json:"total"`
	// Path is the folder path.
	Path string `json:"path"`
	// Sort is the applied sort order.
	Sort string `json:"sort,omitempty"`
	// PublicKey is the key of the shared resource.
	PublicKey string `json:"public_key,omitempty"`
}

// IsDir reports whether the resource is a folder.
func (r *Resource) IsDir() bool {
	return r.Type == ResourceTypeDir
}

// Link is the answer of the download endpoint.
type Link struct {
	// Href is the direct, time-limited download URL.
	Href string `json:"href"`
	// Method is the HTTP method to use with Href.
	Method string `json:"method"`
	// Templated reports whether Href is a URI template.
	Templated bool `json:"templated"`
}

// APIErrorBody is the JSON body of an error response.
type APIErrorBody struct {
	// Error is the machine-readable error code, e.g. DiskNotFoundError.
	Error string `json:"error"`
	// Message is the localized human-readable message.
	Message string `json:"message"`
	// Description is the English description.
	Description string `json:"description"`
}

// ListOptions controls pagination and ordering of a listing request.
type ListOptions struct {
	// Limit is the page size; zero leaves the server default.
	Limit int
	// Offset is the index of the first child to return.
	Offset int
	// Sort is the sort field, optionally prefixed with "-" for descending order.
	Sort string
	// Fields limits the response to these attributes; empty means DefaultListFields.
	Fields []string
}

// FetchContentResult holds a streamed file body.
type FetchContentResult struct {
	// Body is the file content; the caller must close it.
	Body io.ReadCloser
	// TotalBytes is the content length, or -1 when unknown.
	TotalBytes int64
}
