// Package construct is the streaming RDF construction engine. It turns a
// resolved mapping and a pull-based source of row chunks into triples.
//
// # Run lifecycle
//
// Every call to Engine.Run owns a small state machine:
//
//	Idle -> Receiving -> Flushing -> Done
//	  \________\____________\_____-> Aborted
//
// The engine asks the source for the next chunk only after it has fully
// converted the current one. The sink is opened at the start of the run and
// closed exactly once on every exit path, with commit=false unless the run
// reached Done.
//
// # Modes
//
// ModeAggregated keeps the graph in memory grouped by subject and, when the
// mapping enables aggregate_duplicates, collapses identical triples. Nothing
// is written until the source is exhausted, and the graph is discarded on
// abort. ModeStreaming writes every chunk as soon as it is converted, never
// deduplicates, and may leave partial output behind when a run aborts.
//
// # Per-row work
//
// For each row the engine expands subject IRI templates, applies column
// transforms, emits typed or language-tagged literals, follows
// relationships (join-column IRIs or deterministic UUIDv5 IRIs for nested
// records) and adds one rdf:type triple per class, plus superclasses when
// InferTypes is set. With Materialize set, declared inverse, symmetric and
// transitive properties produce single-hop derived links between resources
// of the same row; no closure is computed.
//
// Domain and range are checked on every emitted triple and cardinality per
// subject (row-local in streaming mode). Violations are counted and sampled
// in the ProcessingReport, never raised. Row conversion errors follow the
// mapping's on_error policy: report, skip or fail-fast.
package construct
