package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/scopegraph/pkg/cache"
	"github.com/matzehuels/scopegraph/pkg/observability"
)

const (
	httpTimeout  = 10 * time.Second
	cacheKeyType = "remote"
)

var (
	// ErrNotFound is returned when the server reports that an artifact does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Client fetches remote artifacts with caching and retry.
// It is safe for concurrent use.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
}

// NewHTTPClient creates an HTTP client with a standard timeout for artifact requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NewClient creates a Client storing responses in c under prefix.
// A nil cache disables caching. Headers are applied to all requests;
// pass nil if none are needed.
func NewClient(c cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(),
		cache:   cache.Namespace(c, prefix),
		ttl:     ttl,
		headers: headers,
	}
}

// WithHTTPClient replaces the underlying HTTP client and returns c.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

// Fetch returns the body of url, consulting the cache first.
// Cache failures are not fatal; the request falls through to the network.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if data, ok, err := c.cache.Get(ctx, url); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, cacheKeyType)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, cacheKeyType)

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = c.get(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, url, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
	}
	return data, nil
}

// Exists reports whether url can be fetched. A missing artifact is not an error.
func (c *Client) Exists(ctx context.Context, url string) (bool, error) {
	_, err := c.Fetch(ctx, url)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
