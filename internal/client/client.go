// Package client sends GraphQL operations over HTTP with a bearer token and a
// bounded per-request wait.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// DefaultTimeout bounds a single request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 32 << 20

var (
	// ErrUnauthorized is returned when the server answers 401. It invalidates
	// the whole run, not just the current request.
	ErrUnauthorized = errors.New("unauthorized: server rejected the bearer token (401)")

	// ErrTimeout is returned when the per-request timeout elapses.
	ErrTimeout = errors.New("request timed out")
)

// HTTPError reports a non-2xx response without a decodable GraphQL body.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}

// Config holds client configuration.
type Config struct {
	// Endpoint is the GraphQL URL.
	Endpoint string
	// Token is sent as `Authorization: Bearer <token>` when non-empty.
	Token string
	// Timeout bounds each request, including reading the body.
	Timeout time.Duration
	// HTTPClient is optional; http.DefaultTransport is used otherwise.
	HTTPClient *http.Client
	// Logger is optional; a discard logger is used if nil.
	Logger *slog.Logger
}

// Client is a minimal GraphQL-over-HTTP client.
type Client struct {
	endpoint string
	token    string
	timeout  time.Duration
	http     *http.Client
	logger   *slog.Logger
}

// New creates a client.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	return &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		timeout:  timeout,
		http:     httpClient,
		logger:   logger,
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Request is a GraphQL request body.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Response is a decoded GraphQL response.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors gqlerror.List   `json:"errors,omitempty"`

	// StatusCode is the HTTP status; zero if no response arrived.
	StatusCode int `json:"-"`
	// Elapsed is the wall time from sending the request to reading the body.
	Elapsed time.Duration `json:"-"`
}

// HasData reports whether the response carries a non-null data member.
func (r *Response) HasData() bool {
	return r != nil && len(r.Data) > 0 && !bytes.Equal(bytes.TrimSpace(r.Data), []byte("null"))
}

// HasErrors reports whether the response carries GraphQL errors.
func (r *Response) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// Do sends req and decodes the response. The returned Response is never nil,
// so Elapsed is available even when an error is returned.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	resp := &Response{}

	body, err := json.Marshal(req)
	if err != nil {
		return resp, fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return resp, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		resp.Elapsed = time.Since(start)
		return resp, c.transportError(ctx, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	resp.Elapsed = time.Since(start)
	resp.StatusCode = httpResp.StatusCode
	if err != nil {
		return resp, c.transportError(ctx, err)
	}

	c.logger.Debug("graphql response",
		"operation", req.OperationName,
		"status", httpResp.StatusCode,
		"elapsed_ms", resp.Elapsed.Milliseconds())

	if httpResp.StatusCode == http.StatusUnauthorized {
		return resp, ErrUnauthorized
	}

	if err := json.Unmarshal(raw, resp); err != nil {
		if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
			return resp, &HTTPError{StatusCode: httpResp.StatusCode, Body: truncate(string(raw), 512)}
		}
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}

	return resp, nil
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	}
	return fmt.Errorf("request failed: %w", err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
