package matcher

import (
	"context"
	"fmt"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
)

// SimilarityScorer scores a query text against candidate texts in [0, 1].
// *embedding.Scorer implements it.
type SimilarityScorer interface {
	SimilarityMany(ctx context.Context, query string, candidates []string) ([]float64, error)
	Model() string
}

// SemanticMatcher compares the column name with property labels in
// embedding space. Its confidence never exceeds 0.95.
type SemanticMatcher struct {
	base
	scorer SimilarityScorer
}

// NewSemanticMatcher creates a semantic matcher. The threshold is the
// minimum similarity that yields a result.
func NewSemanticMatcher(scorer SimilarityScorer, settings Settings) *SemanticMatcher {
	return &SemanticMatcher{
		base:   base{name: "semantic_similarity", priority: TierSemantic, settings: settings},
		scorer: scorer,
	}
}

// Match embeds the column name and every label and keeps the closest property.
func (m *SemanticMatcher) Match(ctx context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, _ Context) (*MatchResult, error) {
	query := normalize(column.Name)
	if m.scorer == nil || query == "" || len(candidates) == 0 {
		return nil, nil
	}

	var texts []string
	var owners []int
	var sources []labelText
	for i, c := range candidates {
		for _, l := range propertyLabels(c.Property) {
			text := normalize(l.text)
			if text == "" {
				continue
			}
			texts = append(texts, text)
			owners = append(owners, i)
			sources = append(sources, l)
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}

	scores, err := m.scorer.SimilarityMany(ctx, query, texts)
	if err != nil {
		return nil, err
	}

	best := -1
	for i, s := range scores {
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	sim := scores[best]
	if sim < m.Threshold() {
		return nil, nil
	}
	p := candidates[owners[best]].Property
	return m.result(p, KindSemantic, sim, sources[best].source,
		fmt.Sprintf("%s similarity %.2f between %q and %q (%s)", m.scorer.Model(), sim, query, texts[best], sources[best].source)), nil
}
