package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// TokenSource supplies the current access token, or "" when the session is
// anonymous. The session manager implements this.
type TokenSource interface {
	AccessToken() string
}

// Doer issues one API request. Both the Client and the Recovery decorator
// implement it; consumers should depend on this interface so the recovery
// behavior can be composed in.
type Doer interface {
	Do(ctx context.Context, method, path string, body any, headers map[string]string) (json.RawMessage, error)
}

const defaultTimeout = 30 * time.Second

// Client is the thin REST client. It joins paths onto the base URL, attaches
// bearer credentials, serializes JSON bodies, and classifies failures into
// *Error and *NetworkError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client (primarily for tests
// and custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenSource attaches the source of bearer credentials. Without one the
// client issues unauthenticated requests.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

var _ Doer = (*Client)(nil)

// Do issues a single request. A non-2xx response yields *Error carrying the
// status, the parsed error body, and the request descriptor; a transport
// failure yields *NetworkError. An empty 2xx body decodes as an empty JSON
// object.
func (c *Client) Do(ctx context.Context, method, path string, body any, headers map[string]string) (json.RawMessage, error) {
	desc := &RequestDescriptor{Method: method, Path: path, Body: body, Headers: headers}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Client.Do] marshal request body")
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Do] build request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	// Caller headers win, including an explicit Authorization override.
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Request: desc, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Request: desc, Err: err}
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Status: resp.StatusCode, Body: parseErrorBody(respBody), Request: desc}
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return json.RawMessage(respBody), nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body, nil)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body, nil)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPatch, path, body, nil)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

func parseErrorBody(raw []byte) any {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return string(raw)
	}
	return parsed
}

// Decode unmarshals a raw API response into out.
func Decode(raw json.RawMessage, out any) error {
	return errors.Wrap(json.Unmarshal(raw, out), "[api.Decode] unmarshal response")
}
