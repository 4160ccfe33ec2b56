package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
)

// PartialStringMatcher is a fallback that matches when the normalized
// column name contains a label or is contained in one.
type PartialStringMatcher struct {
	base
	// MinLength is the shortest label or column considered.
	MinLength int
}

// NewPartialStringMatcher creates the matcher.
func NewPartialStringMatcher(settings Settings) *PartialStringMatcher {
	return &PartialStringMatcher{
		base:      base{name: "partial_string", priority: TierFallback, settings: settings},
		MinLength: 3,
	}
}

// Match scores containment by the length ratio of the shorter string.
func (m *PartialStringMatcher) Match(_ context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, _ Context) (*MatchResult, error) {
	col := normalize(column.Name)
	if len(col) < m.MinLength {
		return nil, nil
	}
	var best *MatchResult
	for _, c := range candidates {
		for _, l := range propertyLabels(c.Property) {
			label := normalize(l.text)
			if len(label) < m.MinLength || label == col {
				continue
			}
			if !strings.Contains(col, label) && !strings.Contains(label, col) {
				continue
			}
			ratio := float64(min(len(col), len(label))) / float64(max(len(col), len(label)))
			score := 0.5 + 0.3*ratio
			if best == nil || score > best.Confidence {
				best = m.result(c.Property, KindFuzzy, score, l.source,
					fmt.Sprintf("%q and %q overlap (length ratio %.2f)", col, label, ratio))
			}
		}
	}
	return best, nil
}

// FuzzyStringMatcher is a fallback on edit distance between the normalized
// column name and each label.
type FuzzyStringMatcher struct {
	base
	// MinRatio is the edit ratio a label needs.
	MinRatio float64
}

// NewFuzzyStringMatcher creates the matcher.
func NewFuzzyStringMatcher(settings Settings) *FuzzyStringMatcher {
	return &FuzzyStringMatcher{
		base:     base{name: "fuzzy_string", priority: TierFallback, settings: settings},
		MinRatio: 0.75,
	}
}

// Match keeps the label with the best edit ratio.
func (m *FuzzyStringMatcher) Match(_ context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, _ Context) (*MatchResult, error) {
	col := normalize(column.Name)
	if col == "" {
		return nil, nil
	}
	var best *MatchResult
	for _, c := range candidates {
		for _, l := range propertyLabels(c.Property) {
			ratio := editRatio(col, normalize(l.text))
			if ratio < m.MinRatio {
				continue
			}
			score := 0.85 * ratio
			if best == nil || score > best.Confidence {
				best = m.result(c.Property, KindFuzzy, score, l.source,
					fmt.Sprintf("edit similarity %.2f to %q", ratio, l.text))
			}
		}
	}
	return best, nil
}
