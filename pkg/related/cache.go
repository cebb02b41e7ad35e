package related

import (
	"context"
	"encoding/json"
	"time"

	"github.com/owlpost/notifykit/pkg/cache"
)

// DefaultTTL bounds the staleness window of cached related objects and unread
// counts. Two days reflects how rarely related entities change compared to
// notification read volume.
const DefaultTTL = 2 * 24 * time.Hour

// Cache is the read-through cache in front of a Resolver. It also owns the
// per-user unread-count cache entry.
type Cache struct {
	store    cache.Store
	resolver *Resolver
	ttl      time.Duration
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL overrides the default expiry of cached entries.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewCache creates a read-through cache over store and resolver.
func NewCache(store cache.Store, resolver *Resolver, opts ...CacheOption) *Cache {
	c := &Cache{
		store:    store,
		resolver: resolver,
		ttl:      DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the entity ref points at, consulting the cache first.
//
// A zero reference resolves to nil without touching the cache. On a miss the
// entity is loaded and cached for the configured TTL, including the nil
// result for an entity that no longer exists. Two concurrent misses may both
// load and both write; the results are deterministic, so last write wins is
// benign.
func (c *Cache) Resolve(ctx context.Context, ref Reference) (any, error) {
	if ref.IsZero() {
		return nil, nil
	}

	key := cache.Key(ref.ContentType, ref.ObjectID)
	value, found, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		return c.rehydrate(ref.ContentType, value)
	}

	obj, err := c.resolver.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, key, obj, c.ttl); err != nil {
		return nil, err
	}
	return obj, nil
}

// rehydrate restores a serialized cache hit to its concrete type. Hits from
// identity-preserving stores pass through untouched; a generic JSON map is
// re-decoded when the content type has a registered decoder, so the value
// keeps its methods across the round trip.
func (c *Cache) rehydrate(contentType string, value any) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	fn, ok := c.resolver.decoder(contentType)
	if !ok {
		return m, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return fn(raw)
}

// UnreadCount returns the user's cached unread-notification count, computing
// and caching it via compute on a miss.
func (c *Cache) UnreadCount(ctx context.Context, userID string, compute func(ctx context.Context) (int, error)) (int, error) {
	key := cache.UnreadCountKey(userID)

	value, found, err := c.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if found {
		if n, ok := asInt(value); ok {
			return n, nil
		}
		// Unexpected cached shape; drop it and recompute below.
		if err := c.store.Delete(ctx, key); err != nil {
			return 0, err
		}
	}

	n, err := compute(ctx)
	if err != nil {
		return 0, err
	}
	if err := c.store.Set(ctx, key, n, c.ttl); err != nil {
		return 0, err
	}
	return n, nil
}

// InvalidateUnreadCount deletes (never overwrites) the user's unread-count
// entry, forcing the next reader to recompute from the source of truth. Call
// it on every mutation of a user's notification read state.
func (c *Cache) InvalidateUnreadCount(ctx context.Context, userID string) error {
	return c.store.Delete(ctx, cache.UnreadCountKey(userID))
}

// asInt normalizes the cached count, which comes back as int from the memory
// store and float64 from JSON-backed stores.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
