package related

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Reference is a polymorphic object reference: a content type tag plus the
// object's identifier within that type.
type Reference struct {
	ContentType string `json:"content_type,omitempty"`
	ObjectID    string `json:"object_id,omitempty"`
}

// IsZero reports whether the reference points at nothing.
func (r Reference) IsZero() bool {
	return r.ObjectID == ""
}

// LoaderFunc loads the entity with the given id. It returns (nil, nil) when
// the entity no longer exists; errors are reserved for storage failures.
type LoaderFunc func(ctx context.Context, objectID string) (any, error)

// DecodeFunc rehydrates an entity from its JSON form. Serializing cache
// stores hand back generic maps on a hit; a decoder restores the loader's
// concrete type so methods like String and AbsoluteURL survive the round
// trip.
type DecodeFunc func(data []byte) (any, error)

// JSONDecoder builds a DecodeFunc unmarshalling into *T, for loaders that
// return *T.
func JSONDecoder[T any]() DecodeFunc {
	return func(data []byte) (any, error) {
		v := new(T)
		if err := json.Unmarshal(data, v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Resolver maps content types to loader functions. Loaders are expected to be
// registered at startup, mirroring the type registry's lifecycle.
type Resolver struct {
	mu       sync.RWMutex
	loaders  map[string]LoaderFunc
	decoders map[string]DecodeFunc
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		loaders:  make(map[string]LoaderFunc),
		decoders: make(map[string]DecodeFunc),
	}
}

// RegisterLoader registers the loader for a content type, replacing any
// previous registration.
func (r *Resolver) RegisterLoader(contentType string, fn LoaderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[contentType] = fn
}

// RegisterDecoder registers the cache-hit decoder for a content type. Only
// needed with serializing stores; identity-preserving stores return the
// loaded value as-is and never invoke the decoder.
func (r *Resolver) RegisterDecoder(contentType string, fn DecodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[contentType] = fn
}

func (r *Resolver) decoder(contentType string) (DecodeFunc, bool) {
	r.mu.RLock()
	fn, ok := r.decoders[contentType]
	r.mu.RUnlock()
	return fn, ok
}

// Load resolves ref to a concrete entity, or nil when the entity is gone.
func (r *Resolver) Load(ctx context.Context, ref Reference) (any, error) {
	r.mu.RLock()
	fn, ok := r.loaders[ref.ContentType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoLoader, ref.ContentType)
	}
	return fn(ctx, ref.ObjectID)
}
