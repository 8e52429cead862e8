package api

import (
	"errors"
	"fmt"
)

// ErrAuthenticationFailed marks the terminal state of a session: the refresh
// token was rejected (or exhausted) and the caller must re-authenticate.
// Callers must not retry requests that fail with this error.
var ErrAuthenticationFailed = errors.New("authentication failed")

// RequestDescriptor captures the parts of a request needed to re-issue it
// after a token refresh. It lives only for one request/response cycle.
type RequestDescriptor struct {
	Method  string
	Path    string
	Body    any
	Headers map[string]string
}

// Error is a response the server answered with a non-2xx status. Body holds
// the parsed JSON error payload, or the raw response text when the payload
// was not JSON.
type Error struct {
	Status  int
	Body    any
	Request *RequestDescriptor
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s %s returned %d", e.Request.Method, e.Request.Path, e.Status)
}

// IsStatus reports whether err is an *Error with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// NetworkError is a request for which no response was received at all
// (connection refused, DNS failure, timeout). There is no status code.
type NetworkError struct {
	Request *RequestDescriptor
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: %s %s: %v", e.Request.Method, e.Request.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
