package rdfmapper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rxcthefirst/RdfMapper-sub000/alignment"
	"github.com/Rxcthefirst/RdfMapper-sub000/config"
	"github.com/Rxcthefirst/RdfMapper-sub000/construct"
	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/matcher"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/output"
	"github.com/Rxcthefirst/RdfMapper-sub000/rdf"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

const ex = "http://example.org/onto#"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loanOntology() *ontology.Ontology {
	b := ontology.NewBuilder()
	b.AddClass(ontology.Class{IRI: ex + "Loan", Labels: ontology.Labels{Label: []string{"loan"}}})
	b.AddClass(ontology.Class{IRI: ex + "Borrower", Labels: ontology.Labels{Label: []string{"borrower"}}})
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
	return b.Build()
}

func loanRows() []dataset.Row {
	rows := make([]dataset.Row, 20)
	for i := range rows {
		rows[i] = dataset.Row{
			"loan_number":      fmt.Sprintf("L%03d", i+1),
			"principal_amount": fmt.Sprintf("%d.50", 1000*(i+1)),
			"borrower_id":      fmt.Sprintf("B%d", i%10+1),
		}
	}
	return rows
}

func alignmentInput(rows []dataset.Row) alignment.Input {
	opts := dataset.DefaultProfileOptions()
	borrowers := make([]dataset.Row, 10)
	for i := range borrowers {
		borrowers[i] = dataset.Row{"borrower_id": fmt.Sprintf("B%d", i+1)}
	}
	return alignment.Input{
		Dataset:     dataset.NewRecordSet("loans", []string{"loan_number", "principal_amount", "borrower_id"}, rows, opts),
		TargetClass: ex + "Loan",
		Related:     []dataset.RecordSet{dataset.NewRecordSet("borrowers", []string{"borrower_id"}, borrowers, opts)},
	}
}

func TestMapper_AlignAndBuild(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Embedding.Provider = config.ProviderNone

	m, err := New(loanOntology(), cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer m.Close()
	assert.Nil(t, m.MetricsRegistry())
	assert.NotContains(t, m.Pipeline().Matchers(), "semantic_similarity")

	rows := loanRows()
	res, err := m.Align(ctx, alignmentInput(rows))
	require.NoError(t, err)
	assert.Equal(t, ex+"loanNumber", res.Mapping.Columns["loan_number"].Predicate)
	require.Len(t, res.Mapping.Relationships, 1)
	assert.Equal(t, 1, res.Report.Statistics.RelationshipsAccepted)

	sink := output.NewMemorySink()
	report, err := m.Build(ctx, res.Mapping, dataset.NewSliceSource(rows, 7), sink)
	require.NoError(t, err)
	assert.Equal(t, construct.StateDone, report.State)
	assert.Equal(t, 20, report.TotalRows)
	assert.Equal(t, 20, report.SuccessfulRows)
	assert.Zero(t, report.FailedRows)

	closed, committed := sink.Closed()
	assert.True(t, closed)
	assert.True(t, committed)

	base := cfg.Generator.BaseIRI
	triples := sink.Triples()
	assert.Contains(t, triples, rdf.New(base+"loan/L001", vocabulary.RdfType, rdf.IRI(ex+"Loan")))
	assert.Contains(t, triples, rdf.New(base+"loan/L001", ex+"hasBorrower", rdf.IRI(base+"borrower/B1")))
	assert.Contains(t, triples, rdf.New(base+"loan/L011", ex+"hasBorrower", rdf.IRI(base+"borrower/B1")))
	assert.Contains(t, triples, rdf.New(base+"loan/L002", ex+"loanNumber", rdf.Literal("L002", vocabulary.XsdString)))
}

func TestMapper_BM25AndMetrics(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Metrics.Enabled = true

	m, err := New(loanOntology(), cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer m.Close()
	require.NotNil(t, m.MetricsRegistry())
	assert.Contains(t, m.Pipeline().Matchers(), "semantic_similarity")

	rows := loanRows()
	res, err := m.Align(ctx, alignmentInput(rows))
	require.NoError(t, err)
	require.Len(t, res.Mapping.Relationships, 1)
	assert.Equal(t, ex+"hasBorrower", res.Mapping.Relationships[0].Predicate)

	_, err = m.Build(ctx, res.Mapping, dataset.NewSliceSource(rows, 0), output.NewMemorySink())
	require.NoError(t, err)

	metrics := m.MetricsRegistry().CoreMetrics()
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ColumnsAligned.WithLabelValues("relationship")))
	assert.Equal(t, float64(20), testutil.ToFloat64(metrics.RowsProcessed.WithLabelValues("succeeded")))

	families, err := m.MetricsRegistry().PrometheusRegistry().Gather()
	require.NoError(t, err)
	var submitted float64
	for _, f := range families {
		if f.GetName() == matcher.MatcherPoolMetricsPrefix+"_submitted_total" {
			submitted = f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Positive(t, submitted)
}

func TestMapper_Errors(t *testing.T) {
	t.Run("nil ontology", func(t *testing.T) {
		_, err := New(nil, config.DefaultConfig())
		require.Error(t, err)
		assert.True(t, errors.IsFatal(err))
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Embedding.Provider = "word2vec"
		_, err := New(loanOntology(), cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrConfigValidation)
	})

	t.Run("nil mapping", func(t *testing.T) {
		m, err := New(loanOntology(), config.DefaultConfig(), WithLogger(quietLogger()))
		require.NoError(t, err)
		_, err = m.Build(context.Background(), nil, dataset.NewSliceSource(nil, 0), output.NewMemorySink())
		assert.ErrorIs(t, err, errors.ErrMissingConfig)
	})

	t.Run("missing ontology file", func(t *testing.T) {
		_, err := Open(context.Background(), filepath.Join(t.TempDir(), "none.nt"), config.DefaultConfig())
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrOntologyLoad)
	})
}

func TestOpen_Document(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onto.nt")
	doc := fmt.Sprintf(`<%sLoan> <%s> <%s> .
<%sloanNumber> <%s> <%s> .
<%sloanNumber> <%s> <%sLoan> .
`,
		ex, vocabulary.RdfType, vocabulary.OwlClass,
		ex, vocabulary.RdfType, vocabulary.OwlDatatypeProperty,
		ex, vocabulary.RdfsDomain, ex)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	m, err := Open(context.Background(), path, config.DefaultConfig(), WithLogger(quietLogger()))
	require.NoError(t, err)
	defer m.Close()

	_, ok := m.Reasoner().Ontology().Property(ex + "loanNumber")
	assert.True(t, ok)
}
