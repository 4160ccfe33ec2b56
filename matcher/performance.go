package matcher

import (
	"sync"
	"time"

	hdr "github.com/HdrHistogram/hdrhistogram-go"
)

// Latencies are recorded in microseconds up to one hour.
const (
	latencyMin     = 1
	latencyMax     = int64(time.Hour / time.Microsecond)
	latencySigFigs = 3
)

// Failure records a matcher that failed, panicked or timed out.
type Failure struct {
	Matcher string `json:"matcher"`
	Outcome string `json:"outcome"`
	Error   string `json:"error"`
}

// PerformanceMetrics describes one MatchAll call.
type PerformanceMetrics struct {
	MatchersRun       int           `json:"matchers_run"`
	MatchersSucceeded int           `json:"matchers_succeeded"`
	MatchersNoMatch   int           `json:"matchers_no_match"`
	BelowThreshold    int           `json:"matchers_below_threshold"`
	MatchersFailed    int           `json:"matchers_failed"`
	MatchersTimedOut  int           `json:"matchers_timeout"`
	Duration          time.Duration `json:"duration"`
	P50               time.Duration `json:"p50"`
	P95               time.Duration `json:"p95"`
	Max               time.Duration `json:"max"`
	Failures          []Failure     `json:"failures,omitempty"`
}

func newLatencyHistogram() *hdr.Histogram {
	return hdr.New(latencyMin, latencyMax, latencySigFigs)
}

func recordLatency(h *hdr.Histogram, d time.Duration) {
	us := d.Microseconds()
	if us < latencyMin {
		us = latencyMin
	}
	if us > latencyMax {
		us = latencyMax
	}
	// Values are clamped into range so RecordValue cannot fail.
	_ = h.RecordValue(us)
}

func quantile(h *hdr.Histogram, q float64) time.Duration {
	return time.Duration(h.ValueAtQuantile(q)) * time.Microsecond
}

// LatencyStats summarizes a matcher's latency across calls.
type LatencyStats struct {
	Count int64         `json:"count"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	Max   time.Duration `json:"max"`
}

// latencyTracker accumulates per-matcher histograms over the pipeline's life.
type latencyTracker struct {
	mu    sync.Mutex
	hists map[string]*hdr.Histogram
}

func newLatencyTracker() *latencyTracker {
	return &latencyTracker{hists: make(map[string]*hdr.Histogram)}
}

func (t *latencyTracker) record(matcher string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.hists[matcher]
	if !ok {
		h = newLatencyHistogram()
		t.hists[matcher] = h
	}
	recordLatency(h, d)
}

func (t *latencyTracker) snapshot() map[string]LatencyStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]LatencyStats, len(t.hists))
	for name, h := range t.hists {
		out[name] = LatencyStats{
			Count: h.TotalCount(),
			P50:   quantile(h, 50),
			P95:   quantile(h, 95),
			Max:   time.Duration(h.Max()) * time.Microsecond,
		}
	}
	return out
}
