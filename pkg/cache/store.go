package cache

import (
	"context"
	"strings"
	"time"
)

// KeyPrefix namespaces every cache key written by this module.
const KeyPrefix = "ow-notifications-"

// Store is a TTL-bounded key-value store. Implementations must treat a nil
// value as cacheable and must not translate backend errors; the core
// propagates them untouched.
type Store interface {
	// Get retrieves the value for key. The second return reports whether the
	// key was present, so a cached nil is distinguishable from a miss.
	Get(ctx context.Context, key string) (any, bool, error)

	// Set stores value under key for ttl. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}

// Key builds a namespaced cache key from its parts.
func Key(parts ...string) string {
	return KeyPrefix + strings.Join(parts, "-")
}

// UnreadCountKey returns the cache key holding a user's unread notification
// count.
func UnreadCountKey(userID string) string {
	return Key("unread-" + userID)
}
