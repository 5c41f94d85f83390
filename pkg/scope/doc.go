// Package scope implements loading scopes: named, hierarchical contexts that
// resolve unit and resource names.
//
// # Resolution
//
// A [Scope] consults three sources for every name:
//
//   - Self: the scope's own artifact set
//   - Parent: the parent scope's public lookup, or the external root
//     [Loader] when the scope has no parent
//   - Imports: the self lookup of other scopes, for names accepted by an
//     import pattern
//
// The [Strategy] fixes the order in which the sources are tried. The six
// builtin strategies ([PIS], [PSI], [SIP], [SPI], [IPS], [ISP]) cover every
// ordering; [Default] is SPI. Custom strategies implement [Strategy] and are
// made available by name through a [Registry].
//
// Single-valued lookups return the first hit. [Scope.ResolveResources]
// concatenates all three sources in strategy order, lazily: the next
// source is queried only once the previous one is exhausted.
//
// # Memoization and concurrency
//
// Scopes are safe for concurrent use. A unit name that resolved successfully
// is remembered, and every later lookup returns the same [artifact.Unit].
// Concurrent lookups of the same unresolved name are collapsed into a single
// resolution with [golang.org/x/sync/singleflight]; lookups of different
// names never block each other. Negative results and resource lookups are
// not memoized.
//
// # Imports
//
// Import links are created before their target scope exists and bound later
// with [Link.Bind]. Links delegate to the target's self lookup, so import
// cycles between scopes cannot recurse.
package scope
