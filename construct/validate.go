package construct

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/rdf"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// validator checks emitted triples against declared domains, ranges and
// cardinalities. Violations are counted and sampled, never returned.
type validator struct {
	reasoner *ontology.Reasoner
	report   *reportBuilder
	metrics  *metric.Metrics
}

func (v *validator) record(vi Violation) {
	v.report.violation(vi)
	v.metrics.RecordViolation(string(vi.Kind))
}

// checkRow runs the domain and range checks on every non-type triple of a
// row. Resource types are those asserted in the same row.
func (v *validator) checkRow(out *rowOutput) {
	ont := v.reasoner.Ontology()
	for _, t := range out.triples {
		if t.origin == originType || t.origin == originInferredType {
			continue
		}
		pred := string(t.Predicate)
		prop, ok := ont.Property(pred)
		if !ok {
			v.report.warnOnce("undeclared:"+pred, fmt.Sprintf("predicate %s is not declared in the ontology", pred))
			continue
		}
		subject := string(t.Subject)
		if prop.Domain != "" && !v.anyTypeIs(out.types[subject], prop.Domain) {
			v.record(Violation{
				Kind:      ViolationDomain,
				Row:       out.row,
				Subject:   subject,
				Predicate: pred,
				Object:    rdf.LexicalForm(t.Object),
				Expected:  prop.Domain,
				Actual:    strings.Join(out.types[subject], " "),
			})
		}
		if prop.Range != "" {
			if expected, actual, bad := v.rangeMismatch(prop, t.Object, out); bad {
				v.record(Violation{
					Kind:      ViolationRange,
					Row:       out.row,
					Subject:   subject,
					Predicate: pred,
					Object:    rdf.LexicalForm(t.Object),
					Expected:  expected,
					Actual:    actual,
				})
			}
		}
	}
}

// anyTypeIs reports whether one of types is class or a subclass of it. An
// untyped resource is not checked.
func (v *validator) anyTypeIs(types []string, class string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if v.reasoner.IsSubClassOf(t, class) {
			return true
		}
	}
	return false
}

func (v *validator) rangeMismatch(prop *ontology.Property, obj quad.Value, out *rowOutput) (expected, actual string, bad bool) {
	datatypeRange := vocabulary.IsDatatypeIRI(prop.Range)
	if iri, ok := rdf.IRIOf(obj); ok {
		if datatypeRange {
			if prop.Range == vocabulary.XsdAnyURI || prop.Range == vocabulary.RdfsLiteral {
				return "", "", false
			}
			return prop.Range, "IRI", true
		}
		types := out.types[iri]
		if !v.anyTypeIs(types, prop.Range) {
			return prop.Range, strings.Join(types, " "), true
		}
		return "", "", false
	}

	dt, _ := rdf.DatatypeOf(obj)
	if !datatypeRange {
		return prop.Range, dt, true
	}
	if ok, _ := v.reasoner.ValidateTypeCompatibility(prop, vocabulary.FamilyOf(dt)); !ok {
		return prop.Range, dt, true
	}
	return "", "", false
}

// checkCardinality compares the value counts of one subject with the
// declared constraints. mapped holds the predicates the mapping targets for
// this subject; min and exact constraints apply only to those.
func (v *validator) checkCardinality(row int, subject string, counts map[string]int, mapped map[string]struct{}) {
	preds := make(map[string]struct{}, len(counts)+len(mapped))
	for p := range counts {
		preds[p] = struct{}{}
	}
	for p := range mapped {
		preds[p] = struct{}{}
	}
	names := make([]string, 0, len(preds))
	for p := range preds {
		names = append(names, p)
	}
	sort.Strings(names)

	ont := v.reasoner.Ontology()
	for _, pred := range names {
		prop, ok := ont.Property(pred)
		if !ok {
			continue
		}
		n := counts[pred]
		_, isMapped := mapped[pred]
		card := prop.Cardinality

		limit := -1
		if prop.Characteristics.Has(ontology.Functional) {
			limit = 1
		}
		if card.Max != nil && (limit < 0 || *card.Max < limit) {
			limit = *card.Max
		}
		if limit >= 0 && n > limit {
			v.record(Violation{Kind: ViolationCardinalityMax, Row: row, Subject: subject, Predicate: pred,
				Expected: fmt.Sprintf("at most %d", limit), Actual: fmt.Sprint(n)})
		}
		if card.Exact != nil && (isMapped || n > 0) && n != *card.Exact {
			v.record(Violation{Kind: ViolationCardinalityEq, Row: row, Subject: subject, Predicate: pred,
				Expected: fmt.Sprintf("exactly %d", *card.Exact), Actual: fmt.Sprint(n)})
		}
		if card.Min != nil && isMapped && n < *card.Min {
			v.record(Violation{Kind: ViolationCardinalityMin, Row: row, Subject: subject, Predicate: pred,
				Expected: fmt.Sprintf("at least %d", *card.Min), Actual: fmt.Sprint(n)})
		}
	}
}
