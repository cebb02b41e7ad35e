// Package redis establishes the Redis connection backing the shared
// notification cache store.
package redis
