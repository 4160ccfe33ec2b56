package matcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
)

type stubMatcher struct {
	base
	fn func(ctx context.Context, candidates []ontology.CandidateProperty) (*MatchResult, error)
}

func newStub(name string, priority int, fn func(context.Context, []ontology.CandidateProperty) (*MatchResult, error)) *stubMatcher {
	return &stubMatcher{
		base: base{name: name, priority: priority, settings: Settings{Enabled: true, Threshold: 0.1}},
		fn:   fn,
	}
}

func (s *stubMatcher) Match(ctx context.Context, _ dataset.ColumnProfile, candidates []ontology.CandidateProperty, _ Context) (*MatchResult, error) {
	return s.fn(ctx, candidates)
}

func fixed(r *ontology.Reasoner, name string, priority int, kind MatchKind, iri string, confidence float64) *stubMatcher {
	p, _ := r.Ontology().Property(iri)
	return newStub(name, priority, func(context.Context, []ontology.CandidateProperty) (*MatchResult, error) {
		return &MatchResult{Property: p, Confidence: confidence, Kind: kind, Matcher: name}, nil
	})
}

func testPipelineConfig() PipelineConfig {
	cfg := DefaultPipelineConfig()
	cfg.MatcherTimeout = 200 * time.Millisecond
	return cfg
}

func TestPipeline_WinnerOrdering(t *testing.T) {
	r := testReasoner(t)
	p := NewPipeline(testPipelineConfig()).Register(
		fixed(r, "a", TierOntology, KindGraphReasoning, ex+"loanNumber", 0.8),
		fixed(r, "b", TierSemantic, KindGraphReasoning, ex+"principalAmount", 0.8),
		fixed(r, "c", TierOntology, KindGraphReasoning, ex+"email", 0.8),
		fixed(r, "d", TierOntology, KindGraphReasoning, ex+"issueDate", 0.7),
	)

	for i := 0; i < 10; i++ {
		out, err := p.MatchAll(context.Background(), profile("col", "v"), nil, Context{}, p.DefaultOptions())
		require.NoError(t, err)
		require.NotNil(t, out.Winner)
		assert.Equal(t, "b", out.Winner.Matcher)
		require.Len(t, out.Evidence, 4)
		assert.Equal(t, []string{"b", "a", "c", "d"}, []string{
			out.Evidence[0].Matcher, out.Evidence[1].Matcher, out.Evidence[2].Matcher, out.Evidence[3].Matcher,
		})
	}

	out, err := p.MatchAll(context.Background(), profile("col", "v"), nil, Context{}, MatchOptions{TopK: 2})
	require.NoError(t, err)
	assert.Len(t, out.Evidence, 2)
}

func TestPipeline_FailureIsolation(t *testing.T) {
	r := testReasoner(t)
	candidates := r.CandidateProperties(ex + "Loan")
	columns := []dataset.ColumnProfile{
		profile("loan_number", "L1", "L2"),
		profile("principal_amount", "100.0", "200.5"),
		profile("email", "a@x", "b@x"),
	}

	baseline := NewDefaultPipeline(r, nil, DefaultConfig(), testPipelineConfig(), nil, nil)
	faulty := NewDefaultPipeline(r, nil, DefaultConfig(), testPipelineConfig(), nil, nil)
	faulty.Register(
		newStub("panics", TierExact, func(context.Context, []ontology.CandidateProperty) (*MatchResult, error) {
			panic("boom")
		}),
		newStub("fails", TierExact, func(context.Context, []ontology.CandidateProperty) (*MatchResult, error) {
			return nil, errors.New("backend unavailable")
		}),
		newStub("hangs", TierExact, func(ctx context.Context, _ []ontology.CandidateProperty) (*MatchResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	)

	mctx := Context{Columns: columns, TargetClass: ex + "Loan"}
	for _, col := range columns {
		want, err := baseline.MatchAll(context.Background(), col, candidates, mctx, baseline.DefaultOptions())
		require.NoError(t, err)
		got, err := faulty.MatchAll(context.Background(), col, candidates, mctx, faulty.DefaultOptions())
		require.NoError(t, err)

		require.NotNil(t, want.Winner, col.Name)
		require.NotNil(t, got.Winner, col.Name)
		assert.Equal(t, want.Winner.Property.IRI, got.Winner.Property.IRI, col.Name)
		assert.Equal(t, want.Winner.Confidence, got.Winner.Confidence, col.Name)
		assert.Equal(t, want.Winner.Matcher, got.Winner.Matcher, col.Name)

		assert.Equal(t, 2, got.Metrics.MatchersFailed, col.Name)
		assert.Equal(t, 1, got.Metrics.MatchersTimedOut, col.Name)
		assert.Len(t, got.Metrics.Failures, 3)
		assert.Equal(t, 0, want.Metrics.MatchersFailed)
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	r := testReasoner(t)
	candidates := r.CandidateProperties(ex + "Loan")
	p := NewDefaultPipeline(r, nil, DefaultConfig(), testPipelineConfig(), nil, nil)
	columns := []dataset.ColumnProfile{
		profile("loan_number", "L1", "L2"),
		profile("principal", "100.0"),
		profile("borrower_id", "B1", "B1"),
		profile("interest_amount", "1.5"),
		profile("issue_dt", "2024-01-01"),
	}

	decide := func(parallel bool) map[string]string {
		out := make(map[string]string)
		for _, col := range columns {
			res, err := p.MatchAll(context.Background(), col, candidates, Context{Columns: columns}, MatchOptions{Parallel: parallel})
			require.NoError(t, err)
			if res.Winner != nil {
				out[col.Name] = res.Winner.Property.IRI + "|" + res.Winner.Matcher
			}
		}
		return out
	}

	first := decide(true)
	assert.Equal(t, ex+"loanNumber|exact_pref_label", first["loan_number"])
	assert.Equal(t, ex+"interestAmount|exact_rdfs_label", first["interest_amount"])
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, decide(true))
	}
	assert.Equal(t, first, decide(false))
}

func TestPipeline_DatatypeBoosterAndSoloCap(t *testing.T) {
	r := testReasoner(t)
	candidates := r.CandidateProperties(ex + "Loan")
	cfg := testPipelineConfig()
	column := profile("principal_amt", "100.5", "20.25")

	solo := NewPipeline(cfg).Register(NewDatatypeMatcher(r, Settings{Enabled: true, Threshold: 0.1}))
	out, err := solo.MatchAll(context.Background(), column, candidates, Context{}, solo.DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, out.Winner)
	assert.Equal(t, ex+"principalAmount", out.Winner.Property.IRI)
	assert.LessOrEqual(t, out.Winner.Confidence, cfg.DatatypeSoloCap)

	boosted := NewPipeline(cfg).Register(
		fixed(r, "graph", TierOntology, KindGraphReasoning, ex+"principalAmount", 0.7),
		NewDatatypeMatcher(r, Settings{Enabled: true, Threshold: 0.1}),
	)
	out, err = boosted.MatchAll(context.Background(), column, candidates, Context{}, boosted.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "graph", out.Winner.Matcher)
	assert.InDelta(t, 0.75, out.Winner.Confidence, 1e-9)
	assert.Len(t, out.Evidence, 2)
}

func TestPipeline_FallbackOnlyWithoutPrimaryEvidence(t *testing.T) {
	r := testReasoner(t)
	p := NewPipeline(testPipelineConfig()).Register(
		fixed(r, "fuzzy", TierFallback, KindFuzzy, ex+"email", 0.85),
		fixed(r, "graph", TierOntology, KindGraphReasoning, ex+"loanNumber", 0.6),
	)
	out, err := p.MatchAll(context.Background(), profile("col", "v"), nil, Context{}, p.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "graph", out.Winner.Matcher)
	for _, e := range out.Evidence {
		assert.NotEqual(t, "fuzzy", e.Matcher)
	}

	onlyFallback := NewPipeline(testPipelineConfig()).Register(fixed(r, "fuzzy", TierFallback, KindFuzzy, ex+"email", 0.7))
	out, err = onlyFallback.MatchAll(context.Background(), profile("col", "v"), nil, Context{}, onlyFallback.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "fuzzy", out.Winner.Matcher)
}

func TestPipeline_RejectsOutOfBoundsConfidence(t *testing.T) {
	r := testReasoner(t)
	p := NewPipeline(testPipelineConfig()).Register(
		fixed(r, "liar", TierExact, KindExactLabel, ex+"email", 0.5),
		fixed(r, "weak", TierOntology, KindGraphReasoning, ex+"email", 0.05),
	)
	out, err := p.MatchAll(context.Background(), profile("col", "v"), nil, Context{}, p.DefaultOptions())
	require.NoError(t, err)
	assert.Nil(t, out.Winner)
	assert.Equal(t, 1, out.Metrics.MatchersFailed)
	assert.Equal(t, 1, out.Metrics.BelowThreshold)
	assert.Contains(t, out.Reasoning, "No matcher")
}

func TestPipeline_EvidenceGroups(t *testing.T) {
	r := testReasoner(t)
	p := NewPipeline(testPipelineConfig()).Register(
		fixed(r, "label", TierExact, KindExactLabel, ex+"email", 0.97),
		fixed(r, "owl", TierOntology, KindOWLCharacteristic, ex+"email", 0.9),
		fixed(r, "fk", TierOntology, KindStructural, ex+"email", 0.6),
	)
	out, err := p.MatchAll(context.Background(), profile("email", "a@x"), nil, Context{}, p.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out.Groups, 3)
	for _, g := range out.Groups {
		assert.Equal(t, 1, g.Count, g.Category.String())
	}
	assert.Contains(t, out.Reasoning, "email")
	assert.Contains(t, out.Reasoning, "ontological_validation")
	assert.Greater(t, out.Metrics.Duration, time.Duration(0))
	assert.Equal(t, 3, out.Metrics.MatchersSucceeded)
	assert.Contains(t, p.Latency(), "label")
}

func TestPipeline_CancelledContext(t *testing.T) {
	r := testReasoner(t)
	p := NewDefaultPipeline(r, nil, DefaultConfig(), testPipelineConfig(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.MatchAll(ctx, profile("email", "a@x"), r.CandidateProperties(ex+"Loan"), Context{}, p.DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_PoolMetricsRegisteredOnce(t *testing.T) {
	r := testReasoner(t)
	candidates := r.CandidateProperties(ex + "Loan")
	registry := metric.NewMetricsRegistry()

	p := NewDefaultPipeline(r, nil, DefaultConfig(), testPipelineConfig(), nil, nil, WithMetricsRegistry(registry))
	require.NotNil(t, p.pool)

	col := profile("loan_number", "L1", "L2")
	tasks := 0
	for i := 0; i < 2; i++ {
		out, err := p.MatchAll(context.Background(), col, candidates, Context{}, p.DefaultOptions())
		require.NoError(t, err)
		tasks += out.Metrics.MatchersRun
	}

	count, err := testutil.GatherAndCount(registry.PrometheusRegistry(), MatcherPoolMetricsPrefix+"_submitted_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == MatcherPoolMetricsPrefix+"_submitted_total" {
			assert.Equal(t, float64(tasks), f.GetMetric()[0].GetCounter().GetValue())
		}
	}

	// A second pipeline on the same registry matches without pool metrics.
	second := NewDefaultPipeline(r, nil, DefaultConfig(), testPipelineConfig(), nil, nil, WithMetricsRegistry(registry))
	assert.Nil(t, second.pool)
	out, err := second.MatchAll(context.Background(), col, candidates, Context{}, second.DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, out.Winner)
}
