// Package apiclient is the Go client of the smbm REST API, used by smbmctl.
//
// Failed requests return *APIError, decoded from the problem document the
// server sends.
package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marmos91/smbmanager/internal/logger"
)

// DefaultTimeout bounds one request. Applies run a `net` invocation per
// changed key, so this stays well above a single command timeout.
const DefaultTimeout = 60 * time.Second

const acceptHeader = "application/json, application/problem+json"

// Client talks to one smbm server. The zero token sends no Authorization
// header.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns an unauthenticated client for baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL returns the server URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// roundTrip sends one request and returns the body of a 2xx or 3xx
// response.
func (c *Client) roundTrip(method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	logger.Debug("API call", "method", method, "path", path, "status", resp.StatusCode,
		logger.DurationMs(logger.Duration(start)))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}

// call sends in (nil for no body) and decodes the JSON response as T.
func call[T any](c *Client, method, path string, in any) (T, error) {
	var out T
	data, err := c.roundTrip(method, path, in)
	if err != nil || len(data) == 0 {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// callPtr is call for single resources, returned by pointer.
func callPtr[T any](c *Client, method, path string, in any) (*T, error) {
	out, err := call[T](c, method, path, in)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// exec sends a request whose response body is ignored.
func (c *Client) exec(method, path string, in any) error {
	_, err := c.roundTrip(method, path, in)
	return err
}

// endpoint joins segments under /api/v1, escaping each one. Share names
// may contain spaces and slashes.
func endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString("/api/v1")
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
