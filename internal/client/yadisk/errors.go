package yadisk

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies remote failures for retry decisions.
type ErrorKind uint8

const (
	// ErrorKindNotFound means the resource or the public key does not exist.
	ErrorKindNotFound ErrorKind = iota + 1
	// ErrorKindUnauthorized means access was refused.
	ErrorKindUnauthorized
	// ErrorKindRateLimited means the API asked to slow down.
	ErrorKindRateLimited
	// ErrorKindTransient covers timeouts, connection failures and 5xx responses.
	ErrorKindTransient
	// ErrorKindMalformed covers bad requests and undecodable responses.
	ErrorKindMalformed
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNotFound:
		return "NotFound"
	case ErrorKindUnauthorized:
		return "Unauthorized"
	case ErrorKindRateLimited:
		return "RateLimited"
	case ErrorKindTransient:
		return "Transient"
	case ErrorKindMalformed:
		return "Malformed"
	default:
		return "Unknown"
	}
}

// Operation names the client call that failed.
type Operation string

const (
	// OperationListEntries is a listing request.
	OperationListEntries Operation = "list entries"
	// OperationResolveHref is a download link request.
	OperationResolveHref Operation = "resolve download link"
	// OperationFetchContent is a content stream request.
	OperationFetchContent Operation = "fetch content"
)

// Static error definitions for better error handling.
var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrEmptyHref indicates that the download endpoint returned no link.
	ErrEmptyHref = errors.New("download link is empty")
	// ErrEmptyPublicKey indicates a request without a public key.
	ErrEmptyPublicKey = errors.New("public key is empty")
	// ErrContentStalled indicates a content stream that stopped delivering bytes.
	ErrContentStalled = errors.New("content stream stalled")
)

// RemoteAPIError describes a failed call to the remote API.
type RemoteAPIError struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Operation is the client call that failed.
	Operation Operation
	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int
	// Code is the API error code from the response body, if any.
	Code string
	// Message is the API error description from the response body, if any.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RemoteAPIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Operation, e.Kind)

	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}

	if e.Code != "" {
		msg += ": " + e.Code
	}

	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying error.
func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the failure is transient or rate limited.
func (e *RemoteAPIError) IsRetryable() bool {
	return e.Kind == ErrorKindTransient || e.Kind == ErrorKindRateLimited
}

// AsRemoteAPIError extracts a *RemoteAPIError from err.
func AsRemoteAPIError(err error) (*RemoteAPIError, bool) {
	var remoteErr *RemoteAPIError
	if errors.As(err, &remoteErr) {
		return remoteErr, true
	}

	return nil, false
}

// IsRetryable reports whether err is a retryable remote failure.
func IsRetryable(err error) bool {
	remoteErr, ok := AsRemoteAPIError(err)

	return ok && remoteErr.IsRetryable()
}

// KindOf returns the kind of a remote failure, or zero for other errors.
func KindOf(err error) ErrorKind {
	if remoteErr, ok := AsRemoteAPIError(err); ok {
		return remoteErr.Kind
	}

	return 0
}

// kindFromStatus maps an HTTP status to an error kind.
func kindFromStatus(statusCode int) ErrorKind {
	switch {
	case statusCode == http.StatusNotFound, statusCode == http.StatusGone:
		return ErrorKindNotFound
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return ErrorKindUnauthorized
	case statusCode == http.StatusTooManyRequests:
		return ErrorKindRateLimited
	case statusCode == http.StatusRequestTimeout, statusCode >= http.StatusInternalServerError:
		return ErrorKindTransient
	default:
		return ErrorKindMalformed
	}
}

// newTransportError wraps a failure that happened before a response arrived.
// Caller cancellation is reported as Transient as well, but Err keeps context.Canceled
// so that callers can tell it apart with errors.Is.
func newTransportError(operation Operation, err error) *RemoteAPIError {
	return &RemoteAPIError{
		Kind:      ErrorKindTransient,
		Operation: operation,
		Err:       err,
	}
}

// newMalformedError wraps a response that could not be understood.
func newMalformedError(operation Operation, statusCode int, err error) *RemoteAPIError {
	return &RemoteAPIError{
		Kind:       ErrorKindMalformed,
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}

// isTimeout reports whether err is a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
