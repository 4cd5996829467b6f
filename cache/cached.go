package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Func is the signature of a cacheable operation: the arguments are the key
// material, the result is what gets stored.
type Func[T any] func(ctx context.Context, args ...any) (T, error)

// CachedConfig configures a Cached wrapper.
type CachedConfig struct {
	// Scope and Name identify the operation and prefix every derived key.
	Scope string
	Name  string

	// TTL is how long computed entries live. 0 means entries never expire.
	TTL time.Duration

	// Store holds the entries. Default: a private MemoryStore.
	Store Store

	// Keyer derives keys from the arguments. Default: DefaultKeyer.
	Keyer Keyer

	// KeyFunc, when set, replaces the Keyer entirely.
	KeyFunc KeyFunc
}

// Cached wraps an operation with key-addressed result caching.
//
// On a hit the underlying operation is not invoked. Expired entries are
// treated as misses. Errors are never cached and propagate unchanged.
// Concurrent misses for the same key are deduplicated: only one invocation
// runs and every caller receives its outcome.
//
// Each wrapper tracks the keys it has produced, so Invalidate clears exactly
// this operation's entries even when several wrappers share one Store.
type Cached[T any] struct {
	fn     Func[T]
	config CachedConfig

	group singleflight.Group

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewCached creates a caching wrapper around fn.
func NewCached[T any](fn Func[T], config CachedConfig) *Cached[T] {
	// Apply defaults
	if config.Name == "" {
		config.Name = "operation"
	}
	if config.Store == nil {
		config.Store = NewMemoryStore()
	}
	if config.Keyer == nil {
		config.Keyer = NewDefaultKeyer()
	}

	return &Cached[T]{
		fn:     fn,
		config: config,
		keys:   make(map[string]struct{}),
	}
}

// Do invokes the operation through the cache.
func (c *Cached[T]) Do(ctx context.Context, args ...any) (T, error) {
	key, err := c.key(args)
	if err != nil {
		// Key derivation failed - execute without caching.
		return c.fn(ctx, args...)
	}

	if cached, ok := c.config.Store.Get(ctx, key); ok {
		if v, ok := cached.(T); ok {
			return v, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Recheck: a concurrent flight may have filled the entry
		// between the miss and acquiring the flight.
		if cached, ok := c.config.Store.Get(ctx, key); ok {
			return cached, nil
		}

		result, err := c.fn(ctx, args...)
		if err != nil {
			// Errors are never cached.
			return nil, err
		}

		_ = c.config.Store.Set(ctx, key, result, c.config.TTL)
		c.mu.Lock()
		c.keys[key] = struct{}{}
		c.mu.Unlock()

		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate synchronously removes every entry this wrapper has produced.
// Entries written by other wrappers sharing the same Store are untouched.
// Subsequent calls miss and recompute.
func (c *Cached[T]) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	keys := make([]string, 0, len(c.keys))
	for k := range c.keys {
		keys = append(keys, k)
	}
	c.keys = make(map[string]struct{})
	c.mu.Unlock()

	for _, k := range keys {
		if err := c.config.Store.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the number of distinct keys this wrapper has produced and
// not yet invalidated.
func (c *Cached[T]) Keys() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

func (c *Cached[T]) key(args []any) (string, error) {
	var key string
	var err error
	if c.config.KeyFunc != nil {
		key, err = c.config.KeyFunc(args...)
	} else {
		key, err = c.config.Keyer.Key(c.config.Scope, c.config.Name, args...)
	}
	if err != nil {
		return "", err
	}
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// Memoize permanently caches an operation's results for the process
// lifetime: no expiry, a private store, and no invalidation surface.
type Memoize[T any] struct {
	cached *Cached[T]
}

// NewMemoize creates a memoizing wrapper around fn.
func NewMemoize[T any](scope, name string, fn Func[T]) *Memoize[T] {
	return &Memoize[T]{
		cached: NewCached(fn, CachedConfig{
			Scope: scope,
			Name:  name,
		}),
	}
}

// Do invokes the operation through the permanent cache.
func (m *Memoize[T]) Do(ctx context.Context, args ...any) (T, error) {
	return m.cached.Do(ctx, args...)
}
