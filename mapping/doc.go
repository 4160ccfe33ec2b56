// Package mapping defines the mapping definition consumed by the construction
// engine: the namespace table, base IRI, entities with subject IRI templates,
// column property mappings and relationships.
//
// A Definition is the document form, read from YAML or JSON with Parse or
// Load and checked against an embedded JSON Schema. Resolve expands compact
// IRIs, parses templates and transform chains, and returns a Resolved value
// that stays read-only for the whole construction run:
//
//	def, err := mapping.Load("loans.mapping.yaml")
//	if err != nil {
//		return err // wraps errors.ErrConfigValidation
//	}
//	res, err := def.Resolve()
//
// Transform chains are written as "trim|to_decimal". The available names are
// listed by TransformNames.
package mapping
