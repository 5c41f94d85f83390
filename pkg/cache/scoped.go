package cache

import (
	"context"
	"time"
)

// NamespacedCache wraps a Cache with a key prefix.
// Different remote artifact bases or tenants can share one backend without
// key collisions:
//
//	remote := cache.Namespace(backend, "remote:")
//	catalog := cache.Namespace(backend, "catalog:")
type NamespacedCache struct {
	inner  Cache
	prefix string
}

// Namespace returns a Cache that prefixes every key with prefix.
// A nil inner cache is replaced with a [NullCache]. Namespaces nest:
// Namespace(Namespace(c, "a:"), "b:") uses the prefix "a:b:".
func Namespace(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	if n, ok := inner.(*NamespacedCache); ok {
		return &NamespacedCache{inner: n.inner, prefix: n.prefix + prefix}
	}
	return &NamespacedCache{inner: inner, prefix: prefix}
}

// Get retrieves a prefixed value.
func (c *NamespacedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores a prefixed value.
func (c *NamespacedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes a prefixed value.
func (c *NamespacedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the underlying cache.
func (c *NamespacedCache) Close() error {
	return c.inner.Close()
}

// Prefix returns the full key prefix.
func (c *NamespacedCache) Prefix() string { return c.prefix }

// Ensure NamespacedCache implements Cache.
var _ Cache = (*NamespacedCache)(nil)
