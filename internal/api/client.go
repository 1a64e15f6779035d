// Package api is the HTTP client for the marketplace backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Response is a successful call's status and raw JSON body.
type Response struct {
	Status int
	Body   json.RawMessage
}

// Doer performs one backend call.
type Doer interface {
	Do(ctx context.Context, method, path string, body any) (*Response, error)
}

// Client talks JSON over HTTP to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends body (JSON-encoded unless nil) and returns the response. Non-2xx
// statuses and transport failures are returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	fail := func(status int, msg string, err error) error {
		return &Error{Method: method, Path: path, Status: status, Message: msg, Err: err}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fail(0, "", fmt.Errorf("encode body: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fail(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return nil, fail(0, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fail(resp.StatusCode, "", fmt.Errorf("read body: %w", err))
	}

	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := messageFrom(data)
		c.logger.Warn("request rejected", "method", method, "path", path, "status", resp.StatusCode, "message", msg)
		return nil, fail(resp.StatusCode, msg, nil)
	}

	out := &Response{Status: resp.StatusCode}
	if len(bytes.TrimSpace(data)) > 0 {
		if !json.Valid(data) {
			return nil, fail(resp.StatusCode, "", fmt.Errorf("invalid JSON response"))
		}
		out.Body = json.RawMessage(data)
	}
	return out, nil
}

// Request implements form.Requester.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return request(ctx, c, method, path, body)
}

func request(ctx context.Context, d Doer, method, path string, body any) (json.RawMessage, error) {
	resp, err := d.Do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Decode unmarshals a response body into T. An empty body yields T's zero
// value.
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode %T: %w", v, err)
	}
	return v, nil
}
