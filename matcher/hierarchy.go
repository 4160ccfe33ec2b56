package matcher

import (
	"context"
	"fmt"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
)

// HierarchyMatcher prefers the most specific property: when a column
// names a specialization of a general property ("interest_amount" under
// "amount"), the sub-property wins over its parent.
type HierarchyMatcher struct {
	base
	reasoner *ontology.Reasoner
	// MinLabel is the label similarity the sub-property needs.
	MinLabel float64
}

// NewHierarchyMatcher creates the matcher.
func NewHierarchyMatcher(reasoner *ontology.Reasoner, settings Settings) *HierarchyMatcher {
	return &HierarchyMatcher{
		base:     base{name: "property_hierarchy", priority: TierOntology, settings: settings},
		reasoner: reasoner,
		MinLabel: 0.5,
	}
}

// Match looks for candidates with a parent whose label the column
// contains, and scores them by their own label similarity.
func (m *HierarchyMatcher) Match(_ context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, _ Context) (*MatchResult, error) {
	ont := m.reasoner.Ontology()
	var best *MatchResult
	for _, c := range candidates {
		p := c.Property
		if len(p.SuperProperties) == 0 {
			continue
		}
		parent, ok := m.containedParent(column.Name, ont, p)
		if !ok {
			continue
		}
		sim, via := bestLabelSimilarity(column.Name, p)
		if sim < m.MinLabel {
			continue
		}
		depth := len(m.reasoner.SubProperties(p.IRI))
		score := 0.55 + 0.4*sim
		if depth > 0 {
			// Not a leaf.
			score -= 0.05
		}
		if best == nil || score > best.Confidence {
			best = m.result(p, KindHierarchy, score, via.source,
				fmt.Sprintf("specializes %s; label similarity %.2f", parent, sim))
		}
	}
	return best, nil
}

func (m *HierarchyMatcher) containedParent(column string, ont *ontology.Ontology, p *ontology.Property) (string, bool) {
	for _, sup := range p.SuperProperties {
		parent, ok := ont.Property(sup)
		if !ok {
			continue
		}
		for _, l := range propertyLabels(parent) {
			if containsWords(column, l.text) {
				return sup, true
			}
		}
	}
	return "", false
}
