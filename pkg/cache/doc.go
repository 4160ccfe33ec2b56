// Package cache provides the append-only, concurrency-safe cache shared by
// matchers during an alignment run.
//
// Usage:
//
//	c, err := cache.New[[]float32](
//	    cache.WithMaxEntries[[]float32](100_000),
//	    cache.WithMetrics[[]float32](registry, "embedding"),
//	)
//	vec, stored, err := c.Add(key, computed)
//
// Add never replaces an existing entry; concurrent writers for the same key
// all observe the first stored value.
package cache
