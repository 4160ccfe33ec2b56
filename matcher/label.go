package matcher

import (
	"context"
	"fmt"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// LabelSource selects which labels an ExactLabelMatcher compares.
type LabelSource int

const (
	SourcePrefLabel LabelSource = iota
	SourceRdfsLabel
	SourceAltLabel
	SourceHiddenLabel
	SourceLocalName
)

var labelSources = map[LabelSource]struct {
	name       string
	via        string
	confidence float64
}{
	SourcePrefLabel:   {"exact_pref_label", "skos:prefLabel", 1.00},
	SourceRdfsLabel:   {"exact_rdfs_label", "rdfs:label", 0.97},
	SourceAltLabel:    {"exact_alt_label", "skos:altLabel", 0.94},
	SourceHiddenLabel: {"exact_hidden_label", "skos:hiddenLabel", 0.92},
	SourceLocalName:   {"exact_local_name", "local name", 0.90},
}

// ExactLabelMatcher reports a property whose label of the chosen source
// equals the column name after normalization.
type ExactLabelMatcher struct {
	base
	source     LabelSource
	confidence float64
}

// NewExactLabelMatcher creates an exact matcher over one label source.
func NewExactLabelMatcher(source LabelSource, settings Settings) *ExactLabelMatcher {
	meta := labelSources[source]
	return &ExactLabelMatcher{
		base:       base{name: meta.name, priority: TierExact, settings: settings},
		source:     source,
		confidence: meta.confidence,
	}
}

func (m *ExactLabelMatcher) labels(p *ontology.Property) []string {
	switch m.source {
	case SourcePrefLabel:
		return p.Labels.Pref
	case SourceRdfsLabel:
		return p.Labels.Label
	case SourceAltLabel:
		return p.Labels.Alt
	case SourceHiddenLabel:
		return p.Labels.Hidden
	default:
		return []string{vocabulary.LocalName(p.IRI)}
	}
}

// Match returns the first candidate, in candidate order, with an equal label.
func (m *ExactLabelMatcher) Match(_ context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, _ Context) (*MatchResult, error) {
	want := normalize(column.Name)
	if want == "" {
		return nil, nil
	}
	via := labelSources[m.source].via
	for _, c := range candidates {
		for _, label := range m.labels(c.Property) {
			if normalize(label) == want {
				return m.result(c.Property, KindExactLabel, m.confidence, via,
					fmt.Sprintf("column %q equals %s %q", column.Name, via, label)), nil
			}
		}
	}
	return nil, nil
}
