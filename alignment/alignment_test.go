package alignment

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/matcher"
	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

const ex = "http://example.org/onto#"

func testReasoner() *ontology.Reasoner {
	b := ontology.NewBuilder()
	b.AddClass(ontology.Class{IRI: ex + "Loan"})
	b.AddClass(ontology.Class{IRI: ex + "Borrower"})
	b.AddProperty(ontology.Property{
		IRI: ex + "loanNumber", Domain: ex + "Loan", Range: vocabulary.XsdString,
		Kind: ontology.KindDatatype, Labels: ontology.Labels{Label: []string{"loan number"}},
	})
	b.AddProperty(ontology.Property{
		IRI: ex + "principalAmount", Domain: ex + "Loan", Range: vocabulary.XsdDecimal,
		Kind: ontology.KindDatatype, Labels: ontology.Labels{Label: []string{"principal amount"}},
	})
	b.AddProperty(ontology.Property{
		IRI: ex + "hasBorrower", Domain: ex + "Loan", Range: ex + "Borrower",
		Kind: ontology.KindObject, Labels: ontology.Labels{Label: []string{"has borrower"}},
	})
	b.AddProperty(ontology.Property{
		IRI: ex + "borrowerName", Domain: ex + "Borrower", Range: vocabulary.XsdString,
		Kind: ontology.KindDatatype,
	})
	return ontology.NewReasoner(b.Build())
}

// stubMatcher returns canned winners per column.
type stubMatcher struct {
	winners map[string]matcher.MatchResult
	// runnersUp follow the winner in a column's evidence.
	runnersUp map[string][]matcher.MatchResult
	err       error
}

func (s stubMatcher) MatchAll(_ context.Context, column dataset.ColumnProfile, _ []ontology.CandidateProperty, _ matcher.Context, _ matcher.MatchOptions) (*matcher.Outcome, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := &matcher.Outcome{Column: column.Name, Metrics: matcher.PerformanceMetrics{MatchersRun: 2}}
	if w, ok := s.winners[column.Name]; ok {
		out.Winner = &w
		out.Evidence = append([]matcher.MatchResult{w}, s.runnersUp[column.Name]...)
		out.Metrics.MatchersSucceeded = 1
		out.Metrics.MatchersNoMatch = 1
	}
	return out, nil
}

func (stubMatcher) DefaultOptions() matcher.MatchOptions { return matcher.MatchOptions{TopK: 5} }

func winner(r *ontology.Reasoner, prop string, confidence float64, kind matcher.MatchKind) matcher.MatchResult {
	p, _ := r.Ontology().Property(ex + prop)
	return matcher.MatchResult{Property: p, Confidence: confidence, Kind: kind, Matcher: "stub", MatchedVia: "label"}
}

// loanRows has 20 loans over borrowers B1..B10, two loans each.
func loanRecordSet() dataset.RecordSet {
	rows := make([]dataset.Row, 20)
	for i := range rows {
		rows[i] = dataset.Row{
			"loan_number":      fmt.Sprintf("L%03d", i+1),
			"principal_amount": fmt.Sprintf("%d.50", 1000*(i+1)),
			"borrower_id":      fmt.Sprintf("B%d", i%10+1),
			"remarks":          []string{"alpha", "beta", "gamma"}[i%3],
		}
	}
	return dataset.NewRecordSet("loans", []string{"loan_number", "principal_amount", "borrower_id", "remarks"},
		rows, dataset.DefaultProfileOptions())
}

// borrowerRecordSet has ten unique ids, the first known of which match loans.
func borrowerRecordSet(known int) dataset.RecordSet {
	rows := make([]dataset.Row, 10)
	for i := range rows {
		id := fmt.Sprintf("X%d", i+1)
		if i < known {
			id = fmt.Sprintf("B%d", i+1)
		}
		rows[i] = dataset.Row{"borrower_id": id, "name": fmt.Sprintf("Borrower %d", i+1)}
	}
	return dataset.NewRecordSet("borrowers", []string{"borrower_id", "name"}, rows, dataset.DefaultProfileOptions())
}

func TestComputeOverlap(t *testing.T) {
	tests := []struct {
		name   string
		source []string
		target []string
		want   ValueOverlap
	}{
		{
			name:   "partial",
			source: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
			target: []string{"a", "b", "c", "x"},
			want:   ValueOverlap{SourceDistinct: 10, TargetDistinct: 4, MatchedCount: 3, MatchRate: 0.3},
		},
		{
			name:   "duplicates and blanks ignored",
			source: []string{"a", "a", " ", "", "b"},
			target: []string{"a", "b", "b"},
			want:   ValueOverlap{SourceDistinct: 2, TargetDistinct: 2, MatchedCount: 2, MatchRate: 1},
		},
		{
			name:   "empty source",
			target: []string{"a"},
			want:   ValueOverlap{TargetDistinct: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeOverlap(tt.source, tt.target))
		})
	}
}

func TestEntitySlug(t *testing.T) {
	tests := map[string]string{
		ex + "Loan":         "loan",
		ex + "MortgageLoan": "mortgage_loan",
		ex + "HTTPResource": "httpresource",
		ex + "Item2Box":     "item2_box",
		"urn:x:":            "urn_x",
		"---":               "resource",
	}
	for in, want := range tests {
		assert.Equal(t, want, entitySlug(in), in)
	}
}

func TestGenerate_RelationshipThreshold(t *testing.T) {
	r := testReasoner()
	stub := stubMatcher{winners: map[string]matcher.MatchResult{
		"loan_number":      winner(r, "loanNumber", 0.95, matcher.KindExactLabel),
		"principal_amount": winner(r, "principalAmount", 0.95, matcher.KindExactLabel),
		"borrower_id":      winner(r, "hasBorrower", 0.85, matcher.KindStructural),
	}}

	tests := []struct {
		name     string
		known    int
		accepted bool
	}{
		{name: "30 percent accepted", known: 3, accepted: true},
		{name: "20 percent rejected", known: 2, accepted: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGenerator(r, stub, DefaultConfig())
			require.NoError(t, err)

			res, err := g.Generate(context.Background(), Input{
				Dataset:     loanRecordSet(),
				TargetClass: ex + "Loan",
				Related:     []dataset.RecordSet{borrowerRecordSet(tt.known)},
			})
			require.NoError(t, err)

			require.Len(t, res.Report.Relationships, 1)
			d := res.Report.Relationships[0]
			assert.Equal(t, "borrower_id", d.Column)
			assert.Equal(t, "borrower", d.ReferencedEntity)
			assert.Equal(t, "borrowers", d.TargetDataset)
			assert.Equal(t, "borrower_id", d.TargetColumn)
			assert.Equal(t, tt.accepted, d.Accepted, d.Reason)
			assert.Equal(t, 10, d.Overlap.SourceDistinct)
			assert.Equal(t, tt.known, d.Overlap.MatchedCount)

			def := res.Mapping
			if tt.accepted {
				require.Len(t, def.Relationships, 1)
				rel := def.Relationships[0]
				assert.Equal(t, ex+"hasBorrower", rel.Predicate)
				assert.Equal(t, ex+"Borrower", rel.Class)
				assert.Equal(t, "borrower/{borrower_id}", rel.IRITemplate)
				assert.NotContains(t, def.Columns, "borrower_id")
				assert.Equal(t, 1, res.Report.Statistics.RelationshipsAccepted)
			} else {
				assert.Empty(t, def.Relationships)
				require.Contains(t, def.Columns, "borrower_id")
				assert.Equal(t, ex+"hasBorrower", def.Columns["borrower_id"].Predicate)
				assert.Contains(t, d.Reason, "below 30%")
				assert.Equal(t, 1, res.Report.Statistics.RelationshipsRejected)
				assert.True(t, slices.ContainsFunc(res.Report.Warnings, func(w string) bool {
					return strings.Contains(w, `"borrower_id"`) && strings.Contains(w, "hasBorrower")
				}), res.Report.Warnings)
			}
			require.NoError(t, def.Validate())
		})
	}
}

func TestGenerate_RejectedRelationshipFallsBackToLiteral(t *testing.T) {
	r := testReasoner()
	stub := stubMatcher{
		winners: map[string]matcher.MatchResult{
			"loan_number":      winner(r, "loanNumber", 0.95, matcher.KindExactLabel),
			"principal_amount": winner(r, "principalAmount", 0.95, matcher.KindExactLabel),
			"borrower_id":      winner(r, "hasBorrower", 0.85, matcher.KindStructural),
		},
		runnersUp: map[string][]matcher.MatchResult{
			"borrower_id": {
				winner(r, "principalAmount", 0.40, matcher.KindFuzzy),
				winner(r, "borrowerName", 0.70, matcher.KindFuzzy),
			},
		},
	}
	g, err := NewGenerator(r, stub, DefaultConfig())
	require.NoError(t, err)

	res, err := g.Generate(context.Background(), Input{
		Dataset:     loanRecordSet(),
		TargetClass: ex + "Loan",
		Related:     []dataset.RecordSet{borrowerRecordSet(2)},
	})
	require.NoError(t, err)

	require.Len(t, res.Report.Relationships, 1)
	assert.False(t, res.Report.Relationships[0].Accepted)
	pm := res.Mapping.Columns["borrower_id"]
	assert.Equal(t, ex+"borrowerName", pm.Predicate)
	assert.Equal(t, vocabulary.XsdString, pm.Datatype)
	assert.Empty(t, res.Report.Warnings)

	idx := slices.IndexFunc(res.Report.MatchDetails, func(d MatchDetail) bool { return d.ColumnName == "borrower_id" })
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, ex+"borrowerName", res.Report.MatchDetails[idx].MatchedProperty)
	assert.InDelta(t, 0.70, res.Report.MatchDetails[idx].ConfidenceScore, 1e-9)
	require.NoError(t, res.Mapping.Validate())
}

func TestGenerate_MappingShape(t *testing.T) {
	r := testReasoner()
	stub := stubMatcher{winners: map[string]matcher.MatchResult{
		"loan_number":      winner(r, "loanNumber", 0.95, matcher.KindExactLabel),
		"principal_amount": winner(r, "principalAmount", 0.90, matcher.KindExactLabel),
		"remarks":          winner(r, "loanNumber", 0.45, matcher.KindDatatype),
	}}
	m := metric.NewMetrics()
	g, err := NewGenerator(r, stub, DefaultConfig(), WithMetrics(m))
	require.NoError(t, err)

	res, err := g.Generate(context.Background(), Input{Dataset: loanRecordSet(), TargetClass: ex + "Loan"})
	require.NoError(t, err)

	def := res.Mapping
	require.Len(t, def.Entities, 1)
	assert.Equal(t, "loan", def.Entities[0].Name)
	assert.Equal(t, ex+"Loan", def.Entities[0].Class)
	assert.Equal(t, "loan/{loan_number}", def.Entities[0].IRITemplate)
	assert.Equal(t, "http://example.org/data/", def.BaseIRI)

	key := def.Columns["loan_number"]
	assert.True(t, key.Required)
	assert.Equal(t, vocabulary.XsdString, key.Datatype)
	assert.Empty(t, key.Transform)

	amount := def.Columns["principal_amount"]
	assert.Equal(t, ex+"principalAmount", amount.Predicate)
	assert.Equal(t, vocabulary.XsdDecimal, amount.Datatype)
	assert.Equal(t, "to_decimal", amount.Transform)
	assert.False(t, amount.Required)

	assert.NotContains(t, def.Columns, "remarks")
	assert.NotContains(t, def.Columns, "borrower_id")

	rep := res.Report
	assert.Equal(t, ReportSchemaVersion, rep.SchemaVersion)
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "loans", rep.Dataset)
	assert.Equal(t, 4, rep.Statistics.TotalColumns)
	assert.Equal(t, 2, rep.Statistics.MappedColumns)
	assert.Equal(t, 2, rep.Statistics.UnmappedColumns)
	assert.InDelta(t, 0.925, rep.Statistics.AverageConfidence, 1e-9)
	assert.InDelta(t, 0.75, rep.Statistics.MatchersFiredAvg, 1e-9)
	assert.Equal(t, 2, rep.Statistics.HighConfidenceMatches)

	require.Len(t, rep.MatchDetails, 2)
	assert.Equal(t, "loan_number", rep.MatchDetails[0].ColumnName)
	assert.Equal(t, "principal_amount", rep.MatchDetails[1].ColumnName)

	remarks, ok := rep.Unmapped("remarks")
	require.True(t, ok)
	assert.Equal(t, ex+"loanNumber", remarks.BestCandidate)
	assert.InDelta(t, 0.45, remarks.BestConfidence, 1e-9)
	assert.Contains(t, remarks.Reason, "below minimum")

	borrower, ok := rep.Unmapped("borrower_id")
	require.True(t, ok)
	assert.Empty(t, borrower.BestCandidate)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ColumnsAligned.WithLabelValues("mapped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ColumnsAligned.WithLabelValues("unmapped")))

	raw, err := json.Marshal(rep)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	stats := decoded["statistics"].(map[string]any)
	for _, k := range []string{"total_columns", "mapped_columns", "average_confidence", "matchers_fired_avg"} {
		assert.Contains(t, stats, k)
	}
	detail := decoded["match_details"].([]any)[0].(map[string]any)
	for _, k := range []string{"column_name", "matched_property", "matcher_name", "confidence_score", "match_type", "matched_via", "evidence"} {
		assert.Contains(t, detail, k)
	}
	assert.Equal(t, "exact_label", detail["match_type"])
}

func TestGenerate_DefaultPipeline(t *testing.T) {
	r := testReasoner()
	p := matcher.NewDefaultPipeline(r, nil, matcher.DefaultConfig(), matcher.DefaultPipelineConfig(), nil, nil)
	g, err := NewGenerator(r, p, DefaultConfig())
	require.NoError(t, err)

	in := Input{
		Dataset:     loanRecordSet(),
		TargetClass: ex + "Loan",
		Related:     []dataset.RecordSet{borrowerRecordSet(10)},
	}
	first, err := g.Generate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, ex+"loanNumber", first.Mapping.Columns["loan_number"].Predicate)
	assert.Equal(t, ex+"principalAmount", first.Mapping.Columns["principal_amount"].Predicate)
	require.Len(t, first.Mapping.Relationships, 1)
	assert.Equal(t, ex+"hasBorrower", first.Mapping.Relationships[0].Predicate)

	second, err := g.Generate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.Mapping, second.Mapping)
	assert.NotEqual(t, first.Report.RunID, second.Report.RunID)
	for i, d := range first.Report.MatchDetails {
		assert.Equal(t, d.MatchedProperty, second.Report.MatchDetails[i].MatchedProperty)
	}
}

func TestGenerate_Errors(t *testing.T) {
	r := testReasoner()

	t.Run("unknown class", func(t *testing.T) {
		g, err := NewGenerator(r, stubMatcher{}, DefaultConfig())
		require.NoError(t, err)
		_, err = g.Generate(context.Background(), Input{Dataset: loanRecordSet(), TargetClass: ex + "Car"})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrUnknownClass)
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("compact class", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Namespaces = map[string]string{"ex": ex}
		g, err := NewGenerator(r, stubMatcher{}, cfg)
		require.NoError(t, err)
		res, err := g.Generate(context.Background(), Input{Dataset: loanRecordSet(), TargetClass: "ex:Loan"})
		require.NoError(t, err)
		assert.Equal(t, ex+"Loan", res.Report.TargetClass)
		assert.Equal(t, ex, res.Mapping.Namespaces["ex"])
	})

	t.Run("matcher failure", func(t *testing.T) {
		g, err := NewGenerator(r, stubMatcher{err: fmt.Errorf("boom")}, DefaultConfig())
		require.NoError(t, err)
		_, err = g.Generate(context.Background(), Input{Dataset: loanRecordSet(), TargetClass: ex + "Loan"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("no columns", func(t *testing.T) {
		g, err := NewGenerator(r, stubMatcher{}, DefaultConfig())
		require.NoError(t, err)
		_, err = g.Generate(context.Background(), Input{Dataset: dataset.RecordSet{Name: "empty"}, TargetClass: ex + "Loan"})
		assert.ErrorIs(t, err, errors.ErrInvalidData)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.OverlapThreshold = 1.5
		_, err := NewGenerator(r, stubMatcher{}, cfg)
		assert.ErrorIs(t, err, errors.ErrConfigValidation)
	})

	t.Run("nil pipeline", func(t *testing.T) {
		_, err := NewGenerator(r, nil, DefaultConfig())
		assert.True(t, errors.IsFatal(err))
	})
}

func TestGenerate_NoUniqueColumnWarns(t *testing.T) {
	r := testReasoner()
	rows := []dataset.Row{{"code": "a"}, {"code": "a"}, {"code": "b"}}
	rs := dataset.NewRecordSet("codes", []string{"code"}, rows, dataset.DefaultProfileOptions())

	g, err := NewGenerator(r, stubMatcher{}, DefaultConfig())
	require.NoError(t, err)
	res, err := g.Generate(context.Background(), Input{Dataset: rs, TargetClass: ex + "Loan"})
	require.NoError(t, err)
	require.Len(t, res.Report.Warnings, 1)
	assert.Contains(t, res.Report.Warnings[0], `"code"`)
	assert.Equal(t, "loan/{code}", res.Mapping.Entities[0].IRITemplate)
}

func TestReportBuilder_Snapshot(t *testing.T) {
	b := NewReportBuilder("ds", ex+"Loan")
	b.AddMatch(MatchDetail{ColumnName: "a", ConfidenceScore: 0.9, Performance: matcher.PerformanceMetrics{MatchersSucceeded: 3}})
	b.AddMatch(MatchDetail{ColumnName: "b", ConfidenceScore: 0.6, Performance: matcher.PerformanceMetrics{MatchersSucceeded: 1, MatchersFailed: 1}})
	b.AddUnmapped(UnmappedColumn{ColumnName: "c"}, matcher.PerformanceMetrics{MatchersTimedOut: 2})

	first := b.Build()
	b.AddMatch(MatchDetail{ColumnName: "d", ConfidenceScore: 0.3})
	second := b.Build()

	assert.Equal(t, 3, first.Statistics.TotalColumns)
	assert.Len(t, first.MatchDetails, 2)
	assert.InDelta(t, 0.75, first.Statistics.AverageConfidence, 1e-9)
	assert.InDelta(t, 1.333, first.Statistics.MatchersFiredAvg, 1e-9)
	assert.Equal(t, 1, first.Statistics.HighConfidenceMatches)
	assert.Equal(t, 1, first.Statistics.MediumConfidenceMatches)
	assert.Equal(t, 1, first.Statistics.MatchersFailed)
	assert.Equal(t, 2, first.Statistics.MatchersTimedOut)

	assert.Len(t, second.MatchDetails, 3)
	assert.Equal(t, 1, second.Statistics.LowConfidenceMatches)
	assert.NotEqual(t, first.RunID, second.RunID)
}
