package yadisk

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/yadisk-grabber/internal/client/yadisk"
	mock_yadisk_client "github.com/oshokin/yadisk-grabber/internal/client/yadisk/mocks"
	"github.com/oshokin/yadisk-grabber/internal/config"
)

const testPublicKey = "abc123"

// newTestConfig returns a validated configuration with fast retries.
func newTestConfig(t *testing.T, overrides ...func(*config.Config)) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.PageSize = 2
	cfg.MinRetryPause = "1ms"
	cfg.MaxRetryPause = "2ms"

	for _, override := range overrides {
		override(cfg)
	}

	require.NoError(t, config.ValidateConfig(cfg))

	return cfg
}

// testRef returns a reference to path under the test public key.
func testRef(t *testing.T, resourcePath string) PublicResourceRef {
	t.Helper()

	ref, err := NewPublicResourceRef(testPublicKey, resourcePath)
	require.NoError(t, err)

	return ref
}

// newMockClient creates a client mock bound to t.
func newMockClient(t *testing.T) *mock_yadisk_client.MockClient {
	t.Helper()

	return mock_yadisk_client.NewMockClient(gomock.NewController(t))
}

// fileResource builds an API file resource.
func fileResource(resourcePath, mimeType string, size int64) *yadisk.Resource {
	return &yadisk.Resource{
		Name:     resourcePath[strings.LastIndex(resourcePath, "/")+1:],
		Path:     resourcePath,
		Type:     yadisk.ResourceTypeFile,
		MimeType: mimeType,
		Size:     &size,
		Created:  time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
		Modified: time.Date(2024, time.March, 2, 10, 0, 0, 0, time.UTC),
	}
}

// dirResource builds an API folder resource holding one page of items.
func dirResource(resourcePath string, total int, items ...*yadisk.Resource) *yadisk.Resource {
	name := resourcePath[strings.LastIndex(resourcePath, "/")+1:]
	if resourcePath == "/" {
		name = "share"
	}

	return &yadisk.Resource{
		Name: name,
		Path: resourcePath,
		Type: yadisk.ResourceTypeDir,
		Embedded: &yadisk.ResourceList{
			Items: items,
			Path:  resourcePath,
			Total: total,
		},
	}
}

// fileEntry builds a listed file entry.
func fileEntry(resourcePath string, size int64) ResourceEntry {
	return ResourceEntry{
		Name: resourcePath[strings.LastIndex(resourcePath, "/")+1:],
		Path: resourcePath,
		Type: EntryTypeFile,
		Size: &size,
	}
}

// contentResult wraps a body as a content stream of known length.
func contentResult(body string) *yadisk.FetchContentResult {
	return &yadisk.FetchContentResult{
		Body:       io.NopCloser(strings.NewReader(body)),
		TotalBytes: int64(len(body)),
	}
}

// remoteError builds a remote failure of the given kind.
func remoteError(kind yadisk.ErrorKind, operation yadisk.Operation, status int) error {
	return &yadisk.RemoteAPIError{
		Kind:       kind,
		Operation:  operation,
		StatusCode: status,
		Err:        yadisk.ErrUnexpectedHTTPStatus,
	}
}

// notFound is a 404 answer of the listing endpoint.
func notFound() error {
	return remoteError(yadisk.ErrorKindNotFound, yadisk.OperationListEntries, http.StatusNotFound)
}
