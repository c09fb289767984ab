package yadisk

import "time"

const (
	// downloadURI is appended to the base URL to resolve a direct download link.
	downloadURI = "download"

	// Query parameter names of the public resources endpoints.
	queryPublicKey = "public_key"
	queryPath      = "path"
	queryLimit     = "limit"
	queryOffset    = "offset"
	querySort      = "sort"
	queryFields    = "fields"

	// RootPath is the path of the shared resource itself.
	RootPath = "/"
)

const (
	// ResourceTypeFile is the API type of a file.
	ResourceTypeFile = "file"
	// ResourceTypeDir is the API type of a folder.
	ResourceTypeDir = "dir"
)

const (
	// maxErrorBodyLength bounds how much of an error response is read.
	maxErrorBodyLength = 64 * 1024
)

const (
	// minContentIdleTimeout is the shortest idle timeout of a content stream.
	// A throttled download reads once per second, so shorter pauses are normal.
	minContentIdleTimeout = 10 * time.Second
)

// resourceFields are the attributes of a resource that listings read.
var resourceFields = []string{
	"name",
	"path",
	"type",
	"mime_type",
	"media_type",
	"size",
	"created",
	"modified",
	"file",
	"md5",
	"sha256",
}

// DefaultListFields returns the fields projection sent with every listing request:
// the resource itself, its children and the pagination counters.
func DefaultListFields() []string {
	fields := make([]string, 0, 2*len(resourceFields)+4)
	fields = append(fields, resourceFields...)

	for _, field := range resourceFields {
		fields = append(fields, "_embedded.items."+field)
	}

	return append(fields, "_embedded.limit", "_embedded.offset", "_embedded.total", "_embedded.path")
}
