// Package vocabulary holds the RDF, RDFS, OWL, SKOS and XSD terms the engine
// understands, a prefix table for compact IRIs, and the grouping of XSD
// datatypes into families used for type-compatibility scoring.
//
//	ns := vocabulary.DefaultNamespaces().Merge(vocabulary.Namespaces{"ex": "http://example.org/"})
//	iri, err := ns.Expand("ex:loanNumber")    // http://example.org/loanNumber
//	ns.Compact(vocabulary.XsdDecimal)          // xsd:decimal
//	vocabulary.FamilyOf(vocabulary.XsdInt)     // FamilyInteger
package vocabulary
