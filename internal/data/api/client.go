// Package api fetches usage data from the configured budget endpoint and
// resolves mapped fields out of arbitrary JSON responses.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/cc-usage-monitor/internal/data/store"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

// ErrNotConfigured indicates the endpoint URL or token is missing.
var ErrNotConfigured = errors.New("api: endpoint URL or token not configured")

// TestResult reports the outcome of a connection probe. Failures are carried
// in the result rather than as an error.
type TestResult struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	FieldKeys []string               `json:"fieldKeys,omitempty"`
}

// inflight is one in-progress fetch that concurrent callers wait on.
type inflight struct {
	done chan struct{}
	data map[string]interface{}
	err  error
}

// Client is a read-through-cached fetcher. Concurrent fetches against the
// same endpoint and token collapse into a single request.
type Client struct {
	http  *http.Client
	cache *store.ResponseCache

	mu      sync.Mutex
	pending map[string]*inflight
}

// NewClient creates a client backed by cache. A nil cache disables caching.
func NewClient(cache *store.ResponseCache) *Client {
	return &Client{
		http:    &http.Client{},
		cache:   cache,
		pending: make(map[string]*inflight),
	}
}

func requestKey(url, token string) string {
	return url + "|" + token
}

// Fetch returns the JSON response for the configured endpoint, serving from
// the cache when a fresh entry exists. When several goroutines fetch the
// same endpoint at once only one request goes out; the rest share its
// result.
func (c *Client) Fetch(ctx context.Context, url, token string) (map[string]interface{}, error) {
	if url == "" || token == "" {
		return nil, ErrNotConfigured
	}
	key := requestKey(url, token)

	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			return data, nil
		}
	}

	c.mu.Lock()
	if call, ok := c.pending[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.data, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflight{done: make(chan struct{})}
	c.pending[key] = call
	c.mu.Unlock()

	call.data, call.err = c.request(ctx, url, token)
	if call.err == nil && c.cache != nil {
		c.cache.Set(key, call.data)
	}

	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
	close(call.done)

	return call.data, call.err
}

// TestConnection probes the endpoint and reports the discovered field keys.
// Network and decode failures come back as an unsuccessful result, never an
// error.
func (c *Client) TestConnection(ctx context.Context, url, token string) TestResult {
	if url == "" || token == "" {
		return TestResult{Success: false, Message: "API URL and token must not be empty"}
	}

	data, err := c.request(ctx, url, token)
	if err != nil {
		return TestResult{Success: false, Message: err.Error()}
	}

	return TestResult{
		Success:   true,
		Data:      data,
		FieldKeys: ExtractFieldKeys(data),
	}
}

// request performs one authenticated GET and decodes the body as a JSON
// object.
func (c *Client) request(ctx context.Context, url, token string) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("api: unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("api: reading response: %w", err)
	}

	var data map[string]interface{}
	if err := sonic.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("api: parsing response: %w", err)
	}
	return data, nil
}
