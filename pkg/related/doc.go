// Package related resolves the polymorphic object references a notification
// carries (actor, action object, target) through a read-through cache.
//
// A Reference is a (content type, object id) pair. Concrete resolution is
// delegated to loader functions registered per content type, so any entity
// kind can participate without reflection:
//
//	resolver := related.NewResolver()
//	resolver.RegisterLoader("device", func(ctx context.Context, id string) (any, error) {
//	    return deviceStore.Get(ctx, id) // return nil, nil when the row is gone
//	})
//
//	relCache := related.NewCache(store, resolver)
//	obj, err := relCache.Resolve(ctx, notif.Actor)
//
// Related entities change rarely relative to notification read volume, so
// resolved objects (including "object no longer exists" results) are cached
// with a configurable TTL. There is no invalidation on source mutation; the
// staleness window is bounded only by the TTL, by design.
//
// The cache also hosts the per-user unread-count entry. Invalidation of that
// entry is a delete, never a recompute-and-set, so a stale recomputation can
// never overwrite a fresher one.
package related
