package cache

import (
	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
)

// Option configures cache behavior.
type Option[V any] func(*cacheOptions[V])

// AddCallback is called after a new entry is stored.
type AddCallback[V any] func(key string, value V)

type cacheOptions[V any] struct {
	metricsReg    *metric.MetricsRegistry
	metricsPrefix string
	maxEntries    int
	addCallback   AddCallback[V]
}

// WithMetrics exports cache statistics as Prometheus metrics labelled with prefix.
// A nil registry or empty prefix disables metrics.
func WithMetrics[V any](registry *metric.MetricsRegistry, prefix string) Option[V] {
	return func(o *cacheOptions[V]) {
		o.metricsReg = registry
		o.metricsPrefix = prefix
	}
}

// WithMaxEntries bounds the number of stored entries. Zero means unbounded.
func WithMaxEntries[V any](n int) Option[V] {
	return func(o *cacheOptions[V]) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// WithAddCallback registers a callback invoked after each new entry.
func WithAddCallback[V any](fn AddCallback[V]) Option[V] {
	return func(o *cacheOptions[V]) {
		o.addCallback = fn
	}
}
