// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about materialization, name resolution, cache operations
// and remote artifact fetches.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The prom subpackage adapts every hook interface to Prometheus collectors.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := prom.New(prometheus.DefaultRegisterer)
//	    observability.SetMaterializeHooks(m)
//	    observability.SetResolveHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Materialize().OnMaterializeStart(ctx, nodeCount)
//	// ... build scopes ...
//	observability.Materialize().OnMaterializeComplete(ctx, scopeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Materialize Hooks
// =============================================================================

// MaterializeHooks receives events from graph materialization.
type MaterializeHooks interface {
	OnMaterializeStart(ctx context.Context, nodeCount int)
	OnMaterializeComplete(ctx context.Context, scopeCount int, duration time.Duration, err error)

	// OnSourceResolved records a source specification turned into locations
	// by the named resolver.
	OnSourceResolved(ctx context.Context, node, resolver string, locations int)
}

// =============================================================================
// Resolve Hooks
// =============================================================================

// ResolveHooks receives events from scope lookups.
type ResolveHooks interface {
	// OnUnitResolved records a public unit lookup. Memoized hits are included.
	OnUnitResolved(ctx context.Context, scope string, found bool, duration time.Duration)

	// OnUnitDefined records a unit read from a scope's own artifacts.
	// It fires at most once per scope and name.
	OnUnitDefined(ctx context.Context, scope, name string, size int)

	// OnResourceResolved records a single-resource lookup.
	OnResourceResolved(ctx context.Context, scope string, found bool)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMaterializeHooks is a no-op implementation of MaterializeHooks.
type NoopMaterializeHooks struct{}

func (NoopMaterializeHooks) OnMaterializeStart(context.Context, int)                          {}
func (NoopMaterializeHooks) OnMaterializeComplete(context.Context, int, time.Duration, error) {}
func (NoopMaterializeHooks) OnSourceResolved(context.Context, string, string, int)            {}

// NoopResolveHooks is a no-op implementation of ResolveHooks.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnUnitResolved(context.Context, string, bool, time.Duration) {}
func (NoopResolveHooks) OnUnitDefined(context.Context, string, string, int)          {}
func (NoopResolveHooks) OnResourceResolved(context.Context, string, bool)            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	materializeHooks MaterializeHooks = NoopMaterializeHooks{}
	resolveHooks     ResolveHooks     = NoopResolveHooks{}
	cacheHooks       CacheHooks       = NoopCacheHooks{}
	httpHooks        HTTPHooks        = NoopHTTPHooks{}
	hooksMu          sync.RWMutex
)

// SetMaterializeHooks registers custom materialization hooks.
// This should be called once at application startup before any graph is materialized.
func SetMaterializeHooks(h MaterializeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		materializeHooks = h
	}
}

// SetResolveHooks registers custom resolution hooks.
func SetResolveHooks(h ResolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolveHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Materialize returns the registered materialization hooks.
func Materialize() MaterializeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return materializeHooks
}

// Resolve returns the registered resolution hooks.
func Resolve() ResolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolveHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	materializeHooks = NoopMaterializeHooks{}
	resolveHooks = NoopResolveHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
