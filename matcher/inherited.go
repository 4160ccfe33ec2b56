package matcher

import (
	"context"
	"fmt"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
)

// InheritedPropertyMatcher considers only properties inherited from an
// ancestor of the target class. Confidence decays with inheritance
// distance so a direct property with the same label wins.
type InheritedPropertyMatcher struct {
	base
	// MinLabel is the label similarity a candidate needs.
	MinLabel float64
	// Decay is subtracted per subclass edge beyond the first.
	Decay float64
}

// NewInheritedPropertyMatcher creates the matcher.
func NewInheritedPropertyMatcher(settings Settings) *InheritedPropertyMatcher {
	return &InheritedPropertyMatcher{
		base:     base{name: "inherited_property", priority: TierOntology, settings: settings},
		MinLabel: 0.6,
		Decay:    0.05,
	}
}

// Match scores inherited candidates by label similarity.
func (m *InheritedPropertyMatcher) Match(_ context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, _ Context) (*MatchResult, error) {
	col := normalize(column.Name)
	var best *MatchResult
	for _, c := range candidates {
		if !c.Inherited {
			continue
		}
		sim, via := bestLabelSimilarity(column.Name, c.Property)
		for _, l := range propertyLabels(c.Property) {
			if r := editRatio(col, normalize(l.text)); r > sim {
				sim, via = r, l
			}
		}
		if sim < m.MinLabel {
			continue
		}
		factor := 0.9 - m.Decay*float64(c.Distance-1)
		score := sim * factor
		if best == nil || score > best.Confidence {
			best = m.result(c.Property, KindInherited, score, via.source,
				fmt.Sprintf("inherited from %s (%d level(s) up); label similarity %.2f", c.Property.Domain, c.Distance, sim))
		}
	}
	return best, nil
}
