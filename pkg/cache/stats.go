package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks cache activity.
type Statistics struct {
	hits       int64
	misses     int64
	inserts    int64
	duplicates int64
	rejections int64

	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{startTime: time.Now()}
}

// Hit records a cache hit.
func (s *Statistics) Hit() { atomic.AddInt64(&s.hits, 1) }

// Miss records a cache miss.
func (s *Statistics) Miss() { atomic.AddInt64(&s.misses, 1) }

// Insert records a stored entry.
func (s *Statistics) Insert() { atomic.AddInt64(&s.inserts, 1) }

// Duplicate records an Add for a key that was already present.
func (s *Statistics) Duplicate() { atomic.AddInt64(&s.duplicates, 1) }

// Rejection records an Add refused because the cache was full.
func (s *Statistics) Rejection() { atomic.AddInt64(&s.rejections, 1) }

// UpdateSize updates the current cache size.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	s.mu.Unlock()
}

// Hits returns the total number of cache hits.
func (s *Statistics) Hits() int64 { return atomic.LoadInt64(&s.hits) }

// Misses returns the total number of cache misses.
func (s *Statistics) Misses() int64 { return atomic.LoadInt64(&s.misses) }

// Inserts returns the number of stored entries.
func (s *Statistics) Inserts() int64 { return atomic.LoadInt64(&s.inserts) }

// Duplicates returns the number of Adds that lost to an earlier writer.
func (s *Statistics) Duplicates() int64 { return atomic.LoadInt64(&s.duplicates) }

// Rejections returns the number of Adds refused because the cache was full.
func (s *Statistics) Rejections() int64 { return atomic.LoadInt64(&s.rejections) }

// CurrentSize returns the current number of entries in the cache.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// HitRatio returns hits / (hits + misses), or 0 with no requests.
func (s *Statistics) HitRatio() float64 {
	hits := s.Hits()
	total := hits + s.Misses()
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// StatsSummary is a snapshot of the statistics.
type StatsSummary struct {
	Hits        int64         `json:"hits"`
	Misses      int64         `json:"misses"`
	Inserts     int64         `json:"inserts"`
	Duplicates  int64         `json:"duplicates"`
	Rejections  int64         `json:"rejections"`
	CurrentSize int64         `json:"current_size"`
	HitRatio    float64       `json:"hit_ratio"`
	Uptime      time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	s.mu.RLock()
	uptime := time.Since(s.startTime)
	s.mu.RUnlock()

	return StatsSummary{
		Hits:        s.Hits(),
		Misses:      s.Misses(),
		Inserts:     s.Inserts(),
		Duplicates:  s.Duplicates(),
		Rejections:  s.Rejections(),
		CurrentSize: s.CurrentSize(),
		HitRatio:    s.HitRatio(),
		Uptime:      uptime,
	}
}
