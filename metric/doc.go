// Package metric provides the Prometheus metrics for the alignment and
// construction engine.
//
// MetricsRegistry owns a private prometheus.Registry so embedding applications
// decide whether and how to expose it. The engine metrics (Metrics) cover
// matcher outcomes and latency, column decisions, row outcomes, emitted
// triples per construction mode, structural violations and reasoning-derived
// triples. Components accept a *Metrics that may be nil.
//
// Components with their own collectors (the worker pool, the embedding cache)
// register through the MetricsRegistry Register methods, keyed "service.metric";
// duplicate registration is reported as an Invalid error.
package metric
