package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
)

// OWLCharacteristicMatcher matches columns to functional and
// inverse-functional properties by label, then adjusts the confidence by
// whether the column's values respect the characteristic. Violations are
// kept in the justification.
type OWLCharacteristicMatcher struct {
	base
	reasoner *ontology.Reasoner
	// MinLabel is the label similarity a candidate needs.
	MinLabel float64
	// BaseWeight scales label similarity before adjustment.
	BaseWeight float64
}

// NewOWLCharacteristicMatcher creates the matcher.
func NewOWLCharacteristicMatcher(reasoner *ontology.Reasoner, settings Settings) *OWLCharacteristicMatcher {
	return &OWLCharacteristicMatcher{
		base:       base{name: "owl_characteristic", priority: TierOntology, settings: settings},
		reasoner:   reasoner,
		MinLabel:   0.6,
		BaseWeight: 0.9,
	}
}

// Match scores candidates that declare Functional or InverseFunctional.
func (m *OWLCharacteristicMatcher) Match(_ context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, _ Context) (*MatchResult, error) {
	var best *MatchResult
	for _, c := range candidates {
		p := c.Property
		chars := p.Characteristics
		if !chars.Has(ontology.Functional) && !chars.Has(ontology.InverseFunctional) {
			continue
		}
		sim, via := bestLabelSimilarity(column.Name, p)
		if sim < m.MinLabel {
			continue
		}

		score := m.BaseWeight * sim
		var notes []string
		for _, ch := range chars.List() {
			check := m.reasoner.ValidateUniquenessForCharacteristic(ch, column)
			if !check.Applicable {
				continue
			}
			score += check.Adjustment
			if check.Violation {
				notes = append(notes, "violation: "+check.Reason)
			} else {
				notes = append(notes, check.Reason)
			}
		}
		if best == nil || score > best.Confidence {
			best = m.result(p, KindOWLCharacteristic, score, via.source,
				fmt.Sprintf("%s property, label similarity %.2f; %s",
					strings.Join(chars.Strings(), "+"), sim, strings.Join(notes, "; ")))
		}
	}
	return best, nil
}
