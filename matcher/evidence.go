package matcher

import (
	"fmt"
	"strings"

	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// EvidenceItem is a MatchResult flattened for reporting.
type EvidenceItem struct {
	Matcher       string           `json:"matcher_name"`
	Property      string           `json:"property"`
	Confidence    float64          `json:"confidence"`
	Kind          MatchKind        `json:"match_type"`
	MatchedVia    string           `json:"matched_via"`
	Category      EvidenceCategory `json:"category"`
	Justification string           `json:"justification,omitempty"`
}

// Evidence flattens r.
func (r MatchResult) Evidence() EvidenceItem {
	item := EvidenceItem{
		Matcher:       r.Matcher,
		Confidence:    r.Confidence,
		Kind:          r.Kind,
		MatchedVia:    r.MatchedVia,
		Category:      r.Kind.Category(),
		Justification: r.Justification,
	}
	if r.Property != nil {
		item.Property = r.Property.IRI
	}
	return item
}

// EvidenceGroup summarizes the evidence of one category.
type EvidenceGroup struct {
	Category          EvidenceCategory `json:"category"`
	Count             int              `json:"count"`
	AverageConfidence float64          `json:"average_confidence"`
	Items             []EvidenceItem   `json:"items,omitempty"`
}

// GroupEvidence buckets items by category. Every category is present in
// the result, in AllCategories order, even when empty.
func GroupEvidence(items []EvidenceItem) []EvidenceGroup {
	groups := make([]EvidenceGroup, 0, len(AllCategories()))
	for _, cat := range AllCategories() {
		g := EvidenceGroup{Category: cat}
		var sum float64
		for _, item := range items {
			if item.Category == cat {
				g.Items = append(g.Items, item)
				sum += item.Confidence
			}
		}
		g.Count = len(g.Items)
		if g.Count > 0 {
			g.AverageConfidence = sum / float64(g.Count)
		}
		groups = append(groups, g)
	}
	return groups
}

// Summarize explains a decision in one paragraph.
func Summarize(column string, winner *MatchResult, groups []EvidenceGroup) string {
	if winner == nil {
		return fmt.Sprintf("No matcher produced evidence for %q.", column)
	}
	var b strings.Builder
	name := vocabulary.LocalName(winner.Property.IRI)
	if label := winner.Property.Labels.Primary(); label != "" {
		name = label
	}
	fmt.Fprintf(&b, "Matched %q to %s via %s (%s) with confidence %.2f.",
		column, name, winner.Matcher, winner.Kind, winner.Confidence)
	for _, g := range groups {
		if g.Count == 0 {
			fmt.Fprintf(&b, " No %s evidence.", g.Category)
			continue
		}
		fmt.Fprintf(&b, " %d %s item(s), average %.2f.", g.Count, g.Category, g.AverageConfidence)
	}
	return b.String()
}
