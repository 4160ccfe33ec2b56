package cache

import (
	stderrors "errors"
	"sync"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
)

// ErrCacheFull is returned by Add when the entry limit is reached.
var ErrCacheFull = stderrors.New("cache full")

type appendOnly[V any] struct {
	mu         sync.RWMutex
	items      map[string]V
	maxEntries int
	stats      *Statistics
	metrics    *cacheMetrics
	onAdd      AddCallback[V]
}

func newAppendOnly[V any](opts *cacheOptions[V]) (*appendOnly[V], error) {
	var metrics *cacheMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newCacheMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "newAppendOnly", "metrics registration")
		}
	}

	return &appendOnly[V]{
		items:      make(map[string]V),
		maxEntries: opts.maxEntries,
		stats:      NewStatistics(),
		metrics:    metrics,
		onAdd:      opts.addCallback,
	}, nil
}

func (c *appendOnly[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	value, exists := c.items[key]
	c.mu.RUnlock()

	if exists {
		c.stats.Hit()
		if c.metrics != nil {
			c.metrics.recordHit()
		}
	} else {
		c.stats.Miss()
		if c.metrics != nil {
			c.metrics.recordMiss()
		}
	}
	return value, exists
}

func (c *appendOnly[V]) Add(key string, value V) (V, bool, error) {
	if err := validateKey(key); err != nil {
		var zero V
		return zero, false, err
	}

	c.mu.Lock()
	if existing, ok := c.items[key]; ok {
		c.mu.Unlock()
		c.stats.Duplicate()
		return existing, false, nil
	}
	if c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.mu.Unlock()
		c.stats.Rejection()
		if c.metrics != nil {
			c.metrics.recordRejection()
		}
		return value, false, ErrCacheFull
	}
	c.items[key] = value
	size := len(c.items)
	c.mu.Unlock()

	c.stats.Insert()
	c.stats.UpdateSize(int64(size))
	if c.metrics != nil {
		c.metrics.recordInsert()
		c.metrics.updateSize(size)
	}
	if c.onAdd != nil {
		c.onAdd(key, value)
	}
	return value, true, nil
}

func (c *appendOnly[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *appendOnly[V]) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	c.mu.RUnlock()
	return keys
}

func (c *appendOnly[V]) Stats() *Statistics {
	return c.stats
}

func (c *appendOnly[V]) Close() error {
	return nil
}
