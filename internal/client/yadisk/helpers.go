package yadisk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"
)

// FetchJSONResult holds a decoded response together with its status code.
type FetchJSONResult[T any] struct {
	// Data is the decoded body.
	Data *T
	// StatusCode is the HTTP status of the response.
	StatusCode int
}

// fetchJSONWithQuery sends a GET to baseURL+uri with the given query and decodes the JSON answer.
//
//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func fetchJSONWithQuery[T any](
	c *ClientImpl,
	ctx context.Context,
	operation Operation,
	uri string,
	query url.Values,
) (*FetchJSONResult[T], error) {
	route := c.baseURL + uri

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, route, http.NoBody)
	if err != nil {
		return nil, newMalformedError(operation, 0, err)
	}

	request.Header.Set("Accept", "application/json")

	if query != nil {
		request.URL.RawQuery = query.Encode()
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, newTransportError(operation, err)
	}

	defer response.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if !isSuccessStatus(response.StatusCode) {
		return nil, newStatusError(operation, response)
	}

	var result T
	if err = json.NewDecoder(response.Body).Decode(&result); err != nil {
		if isTimeout(err) {
			return nil, newTransportError(operation, err)
		}

		return nil, newMalformedError(operation, response.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	return &FetchJSONResult[T]{
		Data:       &result,
		StatusCode: response.StatusCode,
	}, nil
}

// newStatusError builds a RemoteAPIError from a non-2xx response,
// decoding the API error body when there is one.
func newStatusError(operation Operation, response *http.Response) *RemoteAPIError {
	remoteErr := &RemoteAPIError{
		Kind:       kindFromStatus(response.StatusCode),
		Operation:  operation,
		StatusCode: response.StatusCode,
		Err:        fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyLength))
	if err != nil || len(body) == 0 {
		return remoteErr
	}

	var apiErr APIErrorBody
	if json.Unmarshal(body, &apiErr) == nil {
		remoteErr.Code = apiErr.Error

		remoteErr.Message = apiErr.Description
		if remoteErr.Message == "" {
			remoteErr.Message = apiErr.Message
		}
	}

	return remoteErr
}

func isSuccessStatus(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

// idleTimeoutBody cancels a content stream when no bytes arrive for timeout.
type idleTimeoutBody struct {
	// body is the response body being streamed.
	body io.ReadCloser
	// timeout is the longest allowed pause between reads.
	timeout time.Duration
	// cancel aborts the underlying request.
	cancel context.CancelFunc
	// timer fires when the stream stalls; nil when the check is disabled.
	timer *time.Timer
	// stalled is set once the timer has fired.
	stalled atomic.Bool
}

func newIdleTimeoutBody(body io.ReadCloser, timeout time.Duration, cancel context.CancelFunc) io.ReadCloser {
	b := &idleTimeoutBody{
		body:    body,
		timeout: timeout,
		cancel:  cancel,
	}

	if timeout > 0 {
		b.timer = time.AfterFunc(timeout, func() {
			b.stalled.Store(true)
			cancel()
		})
	}

	return b
}

// Read reads from the body and restarts the idle timer on progress.
func (b *idleTimeoutBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)

	if b.stalled.Load() {
		return n, fmt.Errorf("%w: no data for %s", ErrContentStalled, b.timeout)
	}

	if n > 0 && b.timer != nil {
		b.timer.Reset(b.timeout)
	}

	return n, err
}

// Close stops the idle timer and releases the request.
func (b *idleTimeoutBody) Close() error {
	if b.timer != nil {
		b.timer.Stop()
	}

	err := b.body.Close()

	b.cancel()

	return err
}
