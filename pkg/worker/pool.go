// Package worker provides a generic worker pool for concurrent task processing
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome classifies how a single work item finished
type Outcome int

const (
	// OutcomeSucceeded means the processor returned nil
	OutcomeSucceeded Outcome = iota
	// OutcomeFailed means the processor returned an error
	OutcomeFailed
	// OutcomeTimedOut means the processor exceeded the task timeout
	OutcomeTimedOut
	// OutcomePanicked means the processor panicked and was recovered
	OutcomePanicked
)

// String returns the metric label for an outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "success"
	case OutcomeFailed:
		return "error"
	case OutcomeTimedOut:
		return "timeout"
	case OutcomePanicked:
		return "panic"
	default:
		return "unknown"
	}
}

// Result describes a finished work item. It is passed to the result handler
// after the processor returns, panics or times out.
type Result[T any] struct {
	Work     T
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Pool represents a generic worker pool that can process any work type T
type Pool[T any] struct {
	workers     int
	queueSize   int
	processor   func(context.Context, T) error
	taskTimeout time.Duration
	onResult    func(Result[T])

	workChan chan T
	metrics  *Metrics
	wg       *sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	submitted int64
	processed int64
	failed    int64
	timedOut  int64
	panicked  int64
	dropped   int64

	metricsRegistry *metric.MetricsRegistry
	metricsPrefix   string
}

// Metrics holds Prometheus metrics for worker pool monitoring. One Metrics
// value may be shared by many short-lived pools.
type Metrics struct {
	queueDepth     prometheus.Gauge
	submitted      prometheus.Counter
	dropped        prometheus.Counter
	processingTime *prometheus.HistogramVec
}

// NewMetrics registers pool metrics named after prefix. Registering the same
// prefix twice on one registry is an error.
func NewMetrics(registry *metric.MetricsRegistry, prefix string) (*Metrics, error) {
	if registry == nil || prefix == "" {
		return nil, ErrInvalidMetrics
	}

	m := &Metrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_queue_depth",
			Help: "Current worker pool queue depth",
		}),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_submitted_total",
			Help: "Total work items submitted",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_dropped_total",
			Help: "Total work items dropped due to full queue",
		}),
		processingTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_processing_duration_seconds",
			Help:    "Time spent processing work items by outcome",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}, []string{"status"}),
	}

	const serviceName = "worker_pool"
	if err := registry.RegisterGauge(serviceName, prefix+"_queue_depth", m.queueDepth); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(serviceName, prefix+"_submitted_total", m.submitted); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(serviceName, prefix+"_dropped_total", m.dropped); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec(serviceName, prefix+"_processing_duration_seconds", m.processingTime); err != nil {
		return nil, err
	}
	return m, nil
}

// Option represents a configuration option for the worker pool
type Option[T any] func(*Pool[T])

// WithMetricsRegistry registers metrics for this pool alone. Pools created
// per call should share one NewMetrics value through WithMetrics instead.
func WithMetricsRegistry[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(p *Pool[T]) {
		p.metricsRegistry = registry
		p.metricsPrefix = prefix
	}
}

// WithMetrics reports to already registered metrics. nil disables them.
func WithMetrics[T any](m *Metrics) Option[T] {
	return func(p *Pool[T]) {
		p.metrics = m
	}
}

// WithTaskTimeout bounds each processor call. A processor that does not return
// in time is reported as OutcomeTimedOut and the worker moves on; its context
// is cancelled so cooperative processors can exit.
func WithTaskTimeout[T any](timeout time.Duration) Option[T] {
	return func(p *Pool[T]) {
		p.taskTimeout = timeout
	}
}

// WithResultHandler registers a callback invoked once per processed work item.
// The handler runs on the worker goroutine and must be safe for concurrent use.
func WithResultHandler[T any](handler func(Result[T])) Option[T] {
	return func(p *Pool[T]) {
		p.onResult = handler
	}
}

// NewPool creates a new generic worker pool with optional configuration
func NewPool[T any](workers, queueSize int, processor func(context.Context, T) error, opts ...Option[T]) *Pool[T] {
	if workers <= 0 {
		workers = 10
	}
	if queueSize <= 0 {
		queueSize = 1000
	}
	if processor == nil {
		panic(ErrNilProcessor)
	}

	pool := &Pool[T]{
		workers:   workers,
		queueSize: queueSize,
		processor: processor,
		workChan:  make(chan T, queueSize),
	}

	for _, opt := range opts {
		opt(pool)
	}

	if pool.metrics == nil && pool.metricsRegistry != nil && pool.metricsPrefix != "" {
		pool.initializeMetrics()
	}

	return pool
}

// initializeMetrics leaves the pool on statistics only when another pool
// already owns the prefix; that pool's collectors keep reporting.
func (p *Pool[T]) initializeMetrics() {
	if m, err := NewMetrics(p.metricsRegistry, p.metricsPrefix); err == nil {
		p.metrics = m
	}
}

// Submit submits work to the pool. Returns error if queue is full.
func (p *Pool[T]) Submit(work T) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.workChan <- work:
		atomic.AddInt64(&p.submitted, 1)
		if p.metrics != nil {
			p.metrics.submitted.Inc()
			p.metrics.queueDepth.Set(float64(len(p.workChan)))
		}
		return nil
	default:
		atomic.AddInt64(&p.dropped, 1)
		if p.metrics != nil {
			p.metrics.dropped.Inc()
		}
		return ErrQueueFull
	}
}

// Start starts the worker pool
func (p *Pool[T]) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.started {
		return ErrPoolAlreadyStarted
	}

	p.wg = &sync.WaitGroup{}
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}

	p.started = true
	return nil
}

// Stop closes the queue and waits for queued work to drain. Processors that
// outlive their task timeout do not hold up Stop.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started || p.stopped {
		return nil
	}

	close(p.workChan)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		p.stopped = true
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// Stats returns current pool statistics
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Workers:    p.workers,
		QueueSize:  p.queueSize,
		QueueDepth: len(p.workChan),
		Submitted:  atomic.LoadInt64(&p.submitted),
		Processed:  atomic.LoadInt64(&p.processed),
		Failed:     atomic.LoadInt64(&p.failed),
		TimedOut:   atomic.LoadInt64(&p.timedOut),
		Panicked:   atomic.LoadInt64(&p.panicked),
		Dropped:    atomic.LoadInt64(&p.dropped),
	}
}

// PoolStats represents worker pool statistics
type PoolStats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Submitted  int64 `json:"submitted"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	TimedOut   int64 `json:"timed_out"`
	Panicked   int64 `json:"panicked"`
	Dropped    int64 `json:"dropped"`
}

func (p *Pool[T]) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case work, ok := <-p.workChan:
			if !ok {
				return
			}
			p.process(ctx, work)
		}
	}
}

func (p *Pool[T]) process(ctx context.Context, work T) {
	taskCtx := ctx
	cancel := context.CancelFunc(func() {})
	if p.taskTimeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, p.taskTimeout)
	}
	defer cancel()

	type finished struct {
		err      error
		panicked bool
	}
	// Buffered so an abandoned processor can still deliver and exit.
	done := make(chan finished, 1)

	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- finished{err: fmt.Errorf("%w: %v", ErrTaskPanicked, r), panicked: true}
			}
		}()
		done <- finished{err: p.processor(taskCtx, work)}
	}()

	res := Result[T]{Work: work}
	select {
	case f := <-done:
		res.Err = f.err
		switch {
		case f.panicked:
			res.Outcome = OutcomePanicked
		case f.err != nil:
			res.Outcome = OutcomeFailed
		default:
			res.Outcome = OutcomeSucceeded
		}
	case <-taskCtx.Done():
		res.Outcome = OutcomeTimedOut
		res.Err = fmt.Errorf("%w after %s", ErrTaskTimeout, p.taskTimeout)
		if ctx.Err() != nil {
			res.Outcome = OutcomeFailed
			res.Err = ctx.Err()
		}
	}
	res.Duration = time.Since(start)

	atomic.AddInt64(&p.processed, 1)
	switch res.Outcome {
	case OutcomeFailed:
		atomic.AddInt64(&p.failed, 1)
	case OutcomeTimedOut:
		atomic.AddInt64(&p.timedOut, 1)
	case OutcomePanicked:
		atomic.AddInt64(&p.panicked, 1)
	}

	if p.metrics != nil {
		p.metrics.queueDepth.Set(float64(len(p.workChan)))
		p.metrics.processingTime.WithLabelValues(res.Outcome.String()).Observe(res.Duration.Seconds())
	}

	if p.onResult != nil {
		p.onResult(res)
	}
}
