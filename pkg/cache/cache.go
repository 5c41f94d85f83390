// Package cache provides byte-oriented caches used when fetching remote
// artifacts.
//
// Remote artifact locations (http and https bases) are fetched lazily while
// scopes resolve names. Responses are stored through the [Cache] interface so
// that repeated lookups, and later processes sharing the same backend, skip
// the network:
//
//   - [NullCache] disables caching
//   - [FileCache] stores entries under a local directory (CLI default)
//   - [RedisCache] stores entries in redis, shared between processes
//
// Use [Namespace] to give independent users of one backend their own key
// space.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss with (nil, false, nil); errors are reserved for backend
// failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
