package cache

import (
	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
	"github.com/prometheus/client_golang/prometheus"
)

type cacheMetrics struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	inserts    prometheus.Counter
	rejections prometheus.Counter
	size       prometheus.Gauge
}

func newCacheMetrics(registry *metric.MetricsRegistry, prefix string) (*cacheMetrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rdfmap",
			Subsystem:   "cache",
			Name:        name,
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        help,
		})
	}

	m := &cacheMetrics{
		hits:       counter("hits_total", "Total number of cache hits"),
		misses:     counter("misses_total", "Total number of cache misses"),
		inserts:    counter("inserts_total", "Total number of stored entries"),
		rejections: counter("rejections_total", "Total number of entries rejected because the cache was full"),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "rdfmap",
			Subsystem:   "cache",
			Name:        "size",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Current number of entries in cache",
		}),
	}

	if err := registry.RegisterCounter(prefix, "cache_hits", m.hits); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "cache_misses", m.misses); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "cache_inserts", m.inserts); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "cache_rejections", m.rejections); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "cache_size", m.size); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *cacheMetrics) recordHit()       { m.hits.Inc() }
func (m *cacheMetrics) recordMiss()      { m.misses.Inc() }
func (m *cacheMetrics) recordInsert()    { m.inserts.Inc() }
func (m *cacheMetrics) recordRejection() { m.rejections.Inc() }
func (m *cacheMetrics) updateSize(n int) { m.size.Set(float64(n)) }
