// Package rdfmapper turns tabular records into RDF aligned with an OWL
// ontology.
//
// The module has three layers, each usable on its own:
//
//   - ontology parses an ontology and answers hierarchy, domain, range and
//     characteristic questions through a Reasoner.
//   - matcher and alignment score every column against the candidate
//     properties of a target class and produce a mapping.Definition together
//     with an alignment.Report explaining each decision.
//   - construct streams row chunks through a resolved mapping into an
//     output.Sink, validating and optionally materializing OWL semantics.
//
// Mapper wires the three from a single config.Config:
//
//	cfg, err := config.Load("rdfmap.yaml")
//	if err != nil {
//		return err
//	}
//	m, err := rdfmapper.Open(ctx, "onto.nt", *cfg, rdfmapper.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//
//	res, err := m.Align(ctx, alignment.Input{Dataset: loans, TargetClass: "ex:Loan"})
//	if err != nil {
//		return err
//	}
//	report, err := m.Build(ctx, res.Mapping, dataset.NewSliceSource(rows, 500), sink)
//
// Errors carry a classification from the errors package: invalid input
// (errors.IsInvalid), transient failures of remote embedding services
// (errors.IsTransient) and fatal misconfiguration (errors.IsFatal).
package rdfmapper
