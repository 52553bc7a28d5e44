// Package aw implements the HTTP client for the ActivityWatch REST API.
//
// The client talks to a locally running aw-server instance and covers the
// endpoints awmcp needs: bucket discovery, raw event retrieval, server-side
// AQL queries, settings, and server info. Transient failures (network errors
// and 5xx responses) are retried with exponential backoff; client errors are
// surfaced as RemoteError values the caller can inspect.
package aw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default values for the client configuration
const (
	// DefaultBaseURL is the standard aw-server address
	DefaultBaseURL = "http://localhost:5600"
	// DefaultTimeout for requests to the server
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries for failed requests
	DefaultMaxRetries = 3
	// DefaultRetryBaseDelay is the base delay for exponential backoff
	DefaultRetryBaseDelay = 500 * time.Millisecond
	// DefaultMaxBodySize limits response body reads (10MB)
	DefaultMaxBodySize = 10 * 1024 * 1024
)

// retryConfig configures retry behavior for transient failures.
type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultRetryBaseDelay,
		maxDelay:   5 * time.Second,
	}
}

// Client is an HTTP client for one ActivityWatch server.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	retry   retryConfig
}

// NewClient creates a client for the server at baseURL. Empty or zero
// arguments fall back to the package defaults.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		retry:   defaultRetryConfig(),
	}
}

// BaseURL returns the configured server URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RemoteError represents an error reported by the ActivityWatch server, or a
// transport failure when StatusCode is 0.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("activitywatch unreachable: %s", e.Message)
	}
	return fmt.Sprintf("activitywatch error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error is a 404 not found error.
func (e *RemoteError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsBadRequest returns true if the error is a 400 bad request error.
func (e *RemoteError) IsBadRequest() bool {
	return e.StatusCode == http.StatusBadRequest
}

// IsUnreachable returns true when the server could not be reached at all.
func (e *RemoteError) IsUnreachable() bool {
	return e.StatusCode == 0
}

// doRequest performs an HTTP request with retry logic. Network errors and
// 5xx responses are retried with exponential backoff; 4xx responses are
// returned to the caller without retrying. The body is re-created for every
// attempt so retries never send a drained reader.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte, query url.Values) (*http.Response, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retry.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retry.baseDelay * time.Duration(1<<uint(attempt-1))
			if delay > c.retry.maxDelay {
				delay = c.retry.maxDelay
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			if c.logger != nil {
				c.logger.Debug("Retrying request",
					"attempt", attempt+1,
					"method", method,
					"url", u.String())
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "awmcp-client/1.0")
		req.Header.Set("X-Request-ID", uuid.New().String())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		// Don't retry client errors, only server errors
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return resp, nil
		}
		if resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("server error: HTTP %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, &RemoteError{
		Message: fmt.Sprintf("request failed after %d retries: %v", c.retry.maxRetries, lastErr),
	}
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp.StatusCode, body)
	}
	return body, nil
}

// post performs a POST request with a JSON body and returns the response body.
func (c *Client) post(ctx context.Context, path string, payload interface{}, query url.Values) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, data, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp.StatusCode, body)
	}
	return body, nil
}

// parseErrorResponse extracts error information from a non-200 response.
// aw-server reports errors as {"message": "..."} JSON; anything else is
// passed through verbatim.
func (c *Client) parseErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &RemoteError{StatusCode: statusCode, Message: errResp.Message}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", statusCode)
	}
	return &RemoteError{StatusCode: statusCode, Message: msg}
}

// decodeJSON parses a response body into T.
func decodeJSON[T any](body []byte) (T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("failed to parse response: %w", err)
	}
	return out, nil
}

// Ping checks whether the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetInfo(ctx)
	return err
}

// GetInfo fetches server identification from /api/0/info.
func (c *Client) GetInfo(ctx context.Context) (*ServerInfo, error) {
	body, err := c.get(ctx, "/api/0/info", nil)
	if err != nil {
		return nil, err
	}
	info, err := decodeJSON[ServerInfo](body)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListBuckets lists all buckets known to the server, sorted by ID. The
// server keys the response by bucket ID; entries missing the embedded ID
// field inherit their key.
func (c *Client) ListBuckets(ctx context.Context) ([]Bucket, error) {
	body, err := c.get(ctx, "/api/0/buckets/", nil)
	if err != nil {
		return nil, err
	}

	byID, err := decodeJSON[map[string]Bucket](body)
	if err != nil {
		return nil, err
	}

	buckets := make([]Bucket, 0, len(byID))
	for id, b := range byID {
		if b.ID == "" {
			b.ID = id
		}
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].ID < buckets[j].ID
	})
	return buckets, nil
}

// GetEvents fetches events from one bucket, newest first.
func (c *Client) GetEvents(ctx context.Context, bucketID string, opts EventOptions) ([]Event, error) {
	path := fmt.Sprintf("/api/0/buckets/%s/events", url.PathEscape(bucketID))

	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Start != "" {
		query.Set("start", opts.Start)
	}
	if opts.End != "" {
		query.Set("end", opts.End)
	}

	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return decodeJSON[[]Event](body)
}

// Query runs an AQL query on the server, once per timeperiod, and returns
// one raw result per period. Timeperiods use the "start/end" ISO form.
func (c *Client) Query(ctx context.Context, timeperiods []string, statements []string) ([]json.RawMessage, error) {
	payload := map[string]interface{}{
		"timeperiods": timeperiods,
		"query":       statements,
	}

	body, err := c.post(ctx, "/api/0/query/", payload, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[[]json.RawMessage](body)
}

// GetSettings fetches server settings, optionally scoped to a single key.
func (c *Client) GetSettings(ctx context.Context, key string) (json.RawMessage, error) {
	path := "/api/0/settings"
	if key != "" {
		path += "/" + url.PathEscape(key)
	}

	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
