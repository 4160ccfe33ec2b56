// Package matcher scores data columns against candidate ontology
// properties.
//
// Each Matcher is one independent strategy: exact label equality over the
// SKOS and RDFS labels, embedding similarity, datatype compatibility,
// graph-context blends, property hierarchy, OWL characteristics,
// foreign-key structure, inherited properties, and partial/fuzzy string
// fallbacks. Every result carries a MatchKind whose confidence bounds the
// pipeline enforces: exact labels score in [0.90, 1.00], semantic matches
// in [0.40, 0.95], datatype compatibility at most 0.95.
//
// A Pipeline dispatches the enabled matchers for one column on a worker
// pool with a per-matcher timeout. Failures, panics and timeouts are
// isolated and counted in PerformanceMetrics; they never fail the call.
// The winner is chosen by confidence, then priority tier, then
// registration order, so concurrent completion order never changes the
// decision:
//
//	p := matcher.NewDefaultPipeline(reasoner, scorer, matcher.DefaultConfig(),
//		matcher.DefaultPipelineConfig(), logger, nil)
//	out, err := p.MatchAll(ctx, column, reasoner.CandidateProperties(class),
//		matcher.Context{Columns: columns, TargetClass: class}, p.DefaultOptions())
//
// Datatype compatibility is a booster: it raises the winner's confidence
// when it agrees and decides alone only when nothing else matched, capped
// by PipelineConfig.DatatypeSoloCap.
package matcher
