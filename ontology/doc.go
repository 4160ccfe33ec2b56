// Package ontology loads class and property declarations and answers the
// hierarchy and characteristic queries the matchers and the construction
// engine depend on.
//
// An Ontology is built once, either programmatically with a Builder or from
// a file with Load, and is never mutated afterwards. A Reasoner wraps it with
// precomputed closures:
//
//	ont, err := ontology.Load(ctx, "loans.nt")
//	if err != nil {
//		return err // fatal, wraps errors.ErrOntologyLoad
//	}
//	r := ontology.NewReasoner(ont)
//	for _, c := range r.CandidateProperties(ex + "MortgageLoan") {
//		fmt.Println(c.Property.IRI, c.Inherited, c.Distance)
//	}
//
// Reasoning is deliberately bounded: class ancestry, inherited properties
// and the declared OWL characteristics. There is no description-logic
// inference.
//
// Supported file formats are N-Triples/N-Quads (.nt, .nq) and the YAML/JSON
// ontology document described by Document. Turtle and RDF/XML sources need
// converting to N-Triples first.
package ontology
