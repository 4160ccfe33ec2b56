package cache

import (
	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
)

// Cache is an append-only cache parameterized by value type V.
type Cache[V any] interface {
	// Get retrieves a value by key.
	Get(key string) (V, bool)

	// Add stores value under key unless the key is already present. It returns
	// the value held by the cache after the call and whether this call stored it.
	// ErrCacheFull is returned when the entry limit is reached.
	Add(key string, value V) (V, bool, error)

	// Size returns the current number of entries.
	Size() int

	// Keys returns all keys currently in the cache.
	Keys() []string

	// Stats returns the always-on cache statistics.
	Stats() *Statistics

	// Close releases resources held by the cache.
	Close() error
}

// New creates an append-only cache.
func New[V any](opts ...Option[V]) (Cache[V], error) {
	o := &cacheOptions[V]{}
	for _, opt := range opts {
		opt(o)
	}
	return newAppendOnly(o)
}

func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "validateKey", "key cannot be empty")
	}
	return nil
}
