package matcher

import (
	"context"
	"fmt"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
)

// GraphWeights are the blend weights of GraphReasoningMatcher.
type GraphWeights struct {
	Label     float64 `json:"label" mapstructure:"label"`
	Type      float64 `json:"type" mapstructure:"type"`
	Structure float64 `json:"structure" mapstructure:"structure"`
	Context   float64 `json:"context" mapstructure:"context"`
}

// DefaultGraphWeights returns the default blend.
func DefaultGraphWeights() GraphWeights {
	return GraphWeights{Label: 0.45, Type: 0.25, Structure: 0.20, Context: 0.10}
}

// GraphReasoningMatcher blends label similarity with what the ontology
// says about each candidate: range compatibility, how the column's shape
// fits the property's characteristics and kind, and how much context the
// property has in the graph. Incompatible ranges are rejected outright.
type GraphReasoningMatcher struct {
	base
	reasoner *ontology.Reasoner
	weights  GraphWeights
	// MinLabel is the label similarity a candidate needs to be considered.
	MinLabel float64
}

// NewGraphReasoningMatcher creates the matcher.
func NewGraphReasoningMatcher(reasoner *ontology.Reasoner, weights GraphWeights, settings Settings) *GraphReasoningMatcher {
	return &GraphReasoningMatcher{
		base:     base{name: "graph_reasoning", priority: TierOntology, settings: settings},
		reasoner: reasoner,
		weights:  weights,
		MinLabel: 0.3,
	}
}

// Match scores every candidate and keeps the best blend.
func (m *GraphReasoningMatcher) Match(ctx context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, _ Context) (*MatchResult, error) {
	var best *MatchResult
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := c.Property
		label, via := m.labelScore(column.Name, p)
		if label < m.MinLabel {
			continue
		}
		valid, typeScore := m.reasoner.ValidateTypeCompatibility(p, column.InferredType)
		if !valid {
			continue
		}
		structure := m.structureScore(column, p)
		richness := m.contextScore(p)

		w := m.weights
		total := w.Label + w.Type + w.Structure + w.Context
		if total <= 0 {
			return nil, nil
		}
		score := (w.Label*label + w.Type*typeScore + w.Structure*structure + w.Context*richness) / total
		if best == nil || score > best.Confidence {
			best = m.result(p, KindGraphReasoning, score, via.source,
				fmt.Sprintf("label %.2f, type %.2f, structure %.2f, context %.2f", label, typeScore, structure, richness))
		}
	}
	return best, nil
}

func (m *GraphReasoningMatcher) labelScore(column string, p *ontology.Property) (float64, labelText) {
	best, via := bestLabelSimilarity(column, p)
	col := normalize(column)
	for _, l := range propertyLabels(p) {
		if r := editRatio(col, normalize(l.text)); r > best {
			best, via = r, l
		}
	}
	return best, via
}

func (m *GraphReasoningMatcher) structureScore(column dataset.ColumnProfile, p *ontology.Property) float64 {
	switch {
	case column.IsIdentifier && p.Characteristics.Has(ontology.InverseFunctional):
		return 1.0
	case column.IsForeignKey && p.IsObject():
		return 1.0
	case column.IsForeignKey != p.IsObject():
		return 0.3
	case column.IsMultiValued && p.Characteristics.Has(ontology.Functional):
		return 0
	default:
		return 0.5
	}
}

func (m *GraphReasoningMatcher) contextScore(p *ontology.Property) float64 {
	pc := m.reasoner.PropertyContext(p.IRI)
	score := 0.0
	if len(pc.Parents)+len(pc.Children) > 0 {
		score += 0.4
	}
	if len(pc.Siblings) > 0 {
		score += 0.2
	}
	if len(p.Labels.All()) > 1 {
		score += 0.2
	}
	if p.Comment != "" {
		score += 0.2
	}
	return score
}
