// Package httputil provides the HTTP client used to fetch remote artifacts.
//
// # Overview
//
// Sources declared as http or https URLs are read lazily while scopes resolve
// names. [Client] wraps a plain [net/http.Client] with:
//
//   - Response caching through any [cache.Cache] backend
//   - Automatic retry with exponential backoff for transient failures
//   - Default request headers (authentication tokens, user agent)
//
// # Caching
//
// Responses are stored under the request URL in a namespace chosen by the
// caller, so several clients can share one backend:
//
//	client := httputil.NewClient(backend, "remote:", 24*time.Hour, nil)
//	data, err := client.Fetch(ctx, "https://repo.example/lib/app/Main.unit")
//
// Only successful responses are cached. A 404 is reported as [ErrNotFound]
// and never stored, so artifacts published later become visible.
//
// # Retry
//
// Network errors and 5xx responses are wrapped with [cache.Retryable] and
// retried by [cache.RetryWithBackoff]. Other status codes fail immediately.
package httputil
