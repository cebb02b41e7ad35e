// Package cache defines the TTL key-value store the notification core reads
// through, with Redis and in-memory implementations.
//
// Every key written by this module is namespaced with KeyPrefix so the store
// can be shared with other applications.
//
// Semantics shared by all implementations:
//
//   - Set stores a value with a TTL; a nil value is a valid cached value
//     (used to cache "object no longer exists" results).
//   - Get distinguishes "cached nil" from "not cached" via its found flag.
//   - Delete removes a key; deleting a missing key is not an error.
//
// MemoryStore keeps values as-is, so cache hits return the identical value
// that was stored. RedisStore round-trips values through JSON: hits come back
// as generic JSON values (map[string]any, float64, ...). Consumers that need
// concrete types back register a decoder for the value, see
// related.RegisterDecoder.
package cache
