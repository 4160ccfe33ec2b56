package matcher

import (
	"context"
	"fmt"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// StructuralMatcher links foreign-key-shaped columns to object properties
// whose range class is the referenced entity, and identifier columns to
// inverse-functional properties.
type StructuralMatcher struct {
	base
	reasoner *ontology.Reasoner
}

// NewStructuralMatcher creates the matcher.
func NewStructuralMatcher(reasoner *ontology.Reasoner, settings Settings) *StructuralMatcher {
	return &StructuralMatcher{
		base:     base{name: "structural_relationship", priority: TierOntology, settings: settings},
		reasoner: reasoner,
	}
}

// Match tries the foreign-key rule first, then the identifier rule.
func (m *StructuralMatcher) Match(_ context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, _ Context) (*MatchResult, error) {
	if entity, ok := ReferencedEntity(column.Name); ok || column.IsForeignKey {
		if !ok {
			entity = normalize(column.Name)
		}
		if r := m.matchReference(column, entity, candidates); r != nil {
			return r, nil
		}
	}
	if column.IsIdentifier {
		return m.matchIdentifier(column, candidates), nil
	}
	return nil, nil
}

func (m *StructuralMatcher) matchReference(column dataset.ColumnProfile, entity string, candidates []ontology.CandidateProperty) *MatchResult {
	ont := m.reasoner.Ontology()
	var best *MatchResult
	for _, c := range candidates {
		p := c.Property
		if !p.IsObject() {
			continue
		}
		score := 0.0
		var why string
		if names := classNames(ont, p.Range); matchesAny(entity, names) {
			score = 0.85
			why = fmt.Sprintf("column references %q; range %s", entity, vocabulary.LocalName(p.Range))
		} else if containsWords(vocabulary.LocalName(p.IRI), entity) {
			score = 0.75
			why = fmt.Sprintf("column references %q; property name %s", entity, vocabulary.LocalName(p.IRI))
		}
		if score == 0 {
			continue
		}
		if column.IsForeignKey {
			score += 0.05
		}
		if best == nil || score > best.Confidence {
			best = m.result(p, KindStructural, score, "range class", why)
		}
	}
	return best
}

func (m *StructuralMatcher) matchIdentifier(column dataset.ColumnProfile, candidates []ontology.CandidateProperty) *MatchResult {
	var best *MatchResult
	for _, c := range candidates {
		p := c.Property
		if !p.Characteristics.Has(ontology.InverseFunctional) {
			continue
		}
		sim, via := bestLabelSimilarity(column.Name, p)
		if sim == 0 {
			continue
		}
		score := 0.5 + 0.3*sim
		if best == nil || score > best.Confidence {
			best = m.result(p, KindStructural, score, via.source,
				fmt.Sprintf("identifier column (uniqueness %.2f) fits inverse-functional property", column.UniquenessRatio))
		}
	}
	return best
}

func classNames(ont *ontology.Ontology, iri string) []string {
	if iri == "" {
		return nil
	}
	names := []string{vocabulary.LocalName(iri)}
	if c, ok := ont.Class(iri); ok {
		names = append(names, c.Labels.All()...)
	}
	return names
}

func matchesAny(entity string, names []string) bool {
	for _, n := range names {
		if SameEntityName(entity, n) {
			return true
		}
	}
	return false
}
