// Package cache provides result caching and memoization for operations.
//
// Cached wraps an operation so repeat calls with the same arguments return
// the stored result instead of recomputing. Entries carry an optional TTL;
// a zero TTL stores permanently. Memoize is Cached with no expiry and no
// invalidation surface.
//
// Keys are derived from the operation's scope, name, and a deterministic
// canonical-JSON serialization of the arguments, hashed with xxhash
// (SHA-256 available). A custom KeyFunc replaces derivation entirely.
//
// Invalidation is scoped: each Cached wrapper remembers the keys it wrote
// and Invalidate removes exactly those, so wrappers can safely share one
// Store.
//
// All state is process-local. Cross-process cache backends and persistence
// across restarts are explicitly out of scope.
package cache
