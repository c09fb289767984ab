package yadisk

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	http_transport "github.com/oshokin/yadisk-grabber/internal/transport/http"
	"github.com/oshokin/yadisk-grabber/internal/utils"
)

// Client defines the interface for the public resources API of Yandex Disk.
type Client interface {
	// ListEntries fetches a shared resource and, for folders, one page of its children.
	ListEntries(ctx context.Context, publicKey, path string, opts ListOptions) (*Resource, error)
	// ResolveDownloadHref obtains a fresh direct download link for a file under a public key.
	ResolveDownloadHref(ctx context.Context, publicKey, path string) (*Link, error)
	// FetchContent streams the bytes behind a direct download link.
	FetchContent(ctx context.Context, href string) (*FetchContentResult, error)
	// GetBaseURL returns the base URL of the public resources endpoint.
	GetBaseURL() string
}

// ClientImpl implements the Client interface over HTTP.
type ClientImpl struct {
	// baseURL is the public resources endpoint, always ending with "/".
	baseURL string
	// httpClient is the HTTP client for API calls.
	httpClient *http.Client
	// contentClient streams file contents; it has no overall timeout.
	contentClient *http.Client
	// contentIdleTimeout aborts a content stream that delivers no bytes for this long.
	// Zero disables the check.
	contentIdleTimeout time.Duration
}

// NewClient creates a client configured from cfg.
// Requests go through the User-Agent, logging and metrics middleware.
// API calls are bounded by cfg.ParsedRequestTimeout as a whole, while content
// streams are bounded only while connecting, while waiting for the response headers
// and while no bytes arrive, so large files are not cut off.
func NewClient(cfg *config.Config) (Client, error) {
	timeout := cfg.ParsedRequestTimeout
	if timeout <= 0 {
		timeout = http_transport.DefaultTimeout
	}

	userAgentProvider := utils.NewStaticUserAgentProvider(cfg.UserAgent)

	httpClient := &http.Client{
		Transport: newTransportChain(http.DefaultTransport, userAgentProvider),
		Timeout:   timeout,
	}

	contentClient := &http.Client{
		Transport: newTransportChain(http_transport.NewStreamingTransport(timeout), userAgentProvider),
	}

	client, err := newClientImpl(cfg.APIBaseURL, httpClient, contentClient)
	if err != nil {
		return nil, err
	}

	client.contentIdleTimeout = max(timeout, minContentIdleTimeout)

	return client, nil
}

// NewClientWithHTTPClient creates a client that sends every request, content included, through httpClient.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) (Client, error) {
	return newClientImpl(baseURL, httpClient, httpClient)
}

func newClientImpl(baseURL string, httpClient, contentClient *http.Client) (*ClientImpl, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	return &ClientImpl{
		baseURL:       parsedURL.String(),
		httpClient:    httpClient,
		contentClient: contentClient,
	}, nil
}

func newTransportChain(base http.RoundTripper, userAgentProvider utils.UserAgentProvider) http.RoundTripper {
	return http_transport.NewUserAgentInjector(
		http_transport.NewLogTransport(
			http_transport.NewMetricsTransport(base), 0),
		userAgentProvider)
}

// ListEntries fetches a shared resource and, for folders, one page of its children.
func (c *ClientImpl) ListEntries(ctx context.Context, publicKey, path string, opts ListOptions) (*Resource, error) {
	if publicKey == "" {
		return nil, newMalformedError(OperationListEntries, 0, ErrEmptyPublicKey)
	}

	query := url.Values{}
	query.Set(queryPublicKey, publicKey)

	if path != "" && path != RootPath {
		query.Set(queryPath, path)
	}

	if opts.Limit > 0 {
		query.Set(queryLimit, strconv.Itoa(opts.Limit))
	}

	if opts.Offset > 0 {
		query.Set(queryOffset, strconv.Itoa(opts.Offset))
	}

	if opts.Sort != "" {
		query.Set(querySort, opts.Sort)
	}

	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultListFields()
	}

	query.Set(queryFields, strings.Join(fields, ","))

	result, err := fetchJSONWithQuery[Resource](c, ctx, OperationListEntries, "", query)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Listing page fetched",
		"path", result.Data.Path,
		"type", result.Data.Type,
		"offset", opts.Offset)

	return result.Data, nil
}

// ResolveDownloadHref obtains a fresh direct download link for a file under a public key.
// Links expire after a few hours, so they are never cached here.
func (c *ClientImpl) ResolveDownloadHref(ctx context.Context, publicKey, path string) (*Link, error) {
	if publicKey == "" {
		return nil, newMalformedError(OperationResolveHref, 0, ErrEmptyPublicKey)
	}

	query := url.Values{}
	query.Set(queryPublicKey, publicKey)

	if path != "" && path != RootPath {
		query.Set(queryPath, path)
	}

	result, err := fetchJSONWithQuery[Link](c, ctx, OperationResolveHref, downloadURI, query)
	if err != nil {
		return nil, err
	}

	if result.Data.Href == "" {
		return nil, newMalformedError(OperationResolveHref, result.StatusCode, ErrEmptyHref)
	}

	return result.Data, nil
}

// FetchContent streams the bytes behind a direct download link.
// On 403, 404 and 410 the link is most likely expired and must be re-resolved.
// A stream that stalls for longer than the idle timeout fails with ErrContentStalled.
func (c *ClientImpl) FetchContent(ctx context.Context, href string) (*FetchContentResult, error) {
	ctx, cancel := context.WithCancel(ctx)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, href, http.NoBody)
	if err != nil {
		cancel()

		return nil, newMalformedError(OperationFetchContent, 0, err)
	}

	response, err := c.contentClient.Do(request)
	if err != nil {
		cancel()

		return nil, newTransportError(OperationFetchContent, err)
	}

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusPartialContent {
		defer cancel()
		defer response.Body.Close() //nolint:errcheck // Error on close is not critical here.

		return nil, newStatusError(OperationFetchContent, response)
	}

	return &FetchContentResult{
		Body:       newIdleTimeoutBody(response.Body, c.contentIdleTimeout, cancel),
		TotalBytes: response.ContentLength,
	}, nil
}

// GetBaseURL returns the base URL of the public resources endpoint.
func (c *ClientImpl) GetBaseURL() string {
	return c.baseURL
}
