package matcher

import (
	"context"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
)

// Priority tiers. Lower tiers win confidence ties. Results from the
// fallback tier count only when no other tier produced evidence.
const (
	TierExact    = 0
	TierSemantic = 1
	TierOntology = 2
	TierBooster  = 3
	TierFallback = 4
)

// Context carries what a matcher may look at besides the column itself.
type Context struct {
	// Columns holds every column of the dataset, including the one scored.
	Columns []dataset.ColumnProfile
	// TargetClass is the class the dataset is being aligned to, if known.
	TargetClass string
}

// Siblings returns the other columns of the dataset.
func (c Context) Siblings(column string) []dataset.ColumnProfile {
	out := make([]dataset.ColumnProfile, 0, len(c.Columns))
	for _, col := range c.Columns {
		if col.Name != column {
			out = append(out, col)
		}
	}
	return out
}

// MatchResult is one matcher's opinion about a column.
type MatchResult struct {
	Property      *ontology.Property
	Confidence    float64
	Kind          MatchKind
	MatchedVia    string
	Justification string
	Matcher       string

	// Set by the pipeline.
	Priority int
	order    int
}

// Matcher is a scoring strategy. Implementations must not mutate their
// inputs or any shared state, and must honour ctx cancellation when they
// block. A nil result with a nil error means no opinion.
type Matcher interface {
	Name() string
	Priority() int
	Enabled() bool
	Threshold() float64
	Match(ctx context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, mctx Context) (*MatchResult, error)
}

// Settings are the per-matcher knobs exposed in configuration.
type Settings struct {
	Enabled   bool    `json:"enabled" mapstructure:"enabled"`
	Threshold float64 `json:"threshold" mapstructure:"threshold"`
}

// base implements the bookkeeping half of Matcher.
type base struct {
	name     string
	priority int
	settings Settings
}

func (b base) Name() string       { return b.name }
func (b base) Priority() int      { return b.priority }
func (b base) Enabled() bool      { return b.settings.Enabled }
func (b base) Threshold() float64 { return b.settings.Threshold }

func (b base) result(p *ontology.Property, kind MatchKind, confidence float64, via, why string) *MatchResult {
	return &MatchResult{
		Property:      p,
		Confidence:    kind.Bounds().Clamp(confidence),
		Kind:          kind,
		MatchedVia:    via,
		Justification: why,
		Matcher:       b.name,
	}
}
