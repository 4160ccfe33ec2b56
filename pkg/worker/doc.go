// Package worker provides a generic, bounded worker pool with per-task
// timeouts and panic isolation.
//
// The matcher pipeline runs one task per matcher per column on a pool:
//
//	pool := worker.NewPool(4, len(tasks), runMatcher,
//	    worker.WithTaskTimeout[task](2*time.Second),
//	    worker.WithResultHandler(func(r worker.Result[task]) { collect(r) }),
//	)
//	_ = pool.Start(ctx)
//	for _, t := range tasks {
//	    _ = pool.Submit(t)
//	}
//	_ = pool.Stop(time.Minute)
//
// Every submitted item produces exactly one Result whose Outcome is one of
// Succeeded, Failed, TimedOut or Panicked. A timed-out processor is abandoned:
// its context is cancelled and the worker continues with the next item, so a
// stuck task never blocks its siblings. Submit never blocks and returns
// ErrQueueFull when the queue is at capacity.
//
// Statistics are always tracked (Stats). Prometheus metrics are opt-in: a
// long-lived pool registers its own with WithMetricsRegistry, while callers
// that create a pool per request register once with NewMetrics and hand the
// result to every pool through WithMetrics.
package worker
