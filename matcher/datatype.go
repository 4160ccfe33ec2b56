package matcher

import (
	"context"
	"fmt"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
)

// DatatypeMatcher scores candidates by how well their range fits the
// column's inferred type. On its own this is weak evidence: the pipeline
// uses it to boost another matcher that picked the same property, and caps
// it when nothing else matched.
type DatatypeMatcher struct {
	base
	reasoner *ontology.Reasoner
	// TypeWeight and LabelWeight blend range compatibility and label overlap.
	TypeWeight  float64
	LabelWeight float64
}

// NewDatatypeMatcher creates a datatype compatibility matcher.
func NewDatatypeMatcher(reasoner *ontology.Reasoner, settings Settings) *DatatypeMatcher {
	return &DatatypeMatcher{
		base:        base{name: "datatype_compatibility", priority: TierBooster, settings: settings},
		reasoner:    reasoner,
		TypeWeight:  0.6,
		LabelWeight: 0.35,
	}
}

// Match picks the compatible candidate with the best blended score. A
// candidate needs some label overlap unless it is the only compatible one.
func (m *DatatypeMatcher) Match(_ context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, _ Context) (*MatchResult, error) {
	type scored struct {
		p          *ontology.Property
		typeScore  float64
		labelScore float64
	}
	var compatible []scored
	for _, c := range candidates {
		valid, typeScore := m.reasoner.ValidateTypeCompatibility(c.Property, column.InferredType)
		if !valid {
			continue
		}
		label, _ := bestLabelSimilarity(column.Name, c.Property)
		compatible = append(compatible, scored{p: c.Property, typeScore: typeScore, labelScore: label})
	}

	var best *scored
	var bestScore float64
	for i := range compatible {
		s := &compatible[i]
		if s.labelScore == 0 && len(compatible) > 1 {
			continue
		}
		score := m.TypeWeight*s.typeScore + m.LabelWeight*s.labelScore
		if best == nil || score > bestScore {
			best, bestScore = s, score
		}
	}
	if best == nil {
		return nil, nil
	}
	return m.result(best.p, KindDatatype, bestScore, best.p.Range,
		fmt.Sprintf("inferred %s fits range %s (type %.2f, label %.2f)",
			column.InferredType, rangeName(best.p), best.typeScore, best.labelScore)), nil
}

func rangeName(p *ontology.Property) string {
	if p.Range == "" {
		return "unspecified"
	}
	return p.Range
}
