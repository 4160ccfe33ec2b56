package matcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

const ex = "http://example.org/loan#"

func testReasoner(t *testing.T) *ontology.Reasoner {
	t.Helper()
	b := ontology.NewBuilder()
	b.AddClass(ontology.Class{IRI: ex + "FinancialInstrument"})
	b.AddClass(ontology.Class{IRI: ex + "Loan", SuperClasses: []string{ex + "FinancialInstrument"}})
	b.AddClass(ontology.Class{IRI: ex + "Borrower", Labels: ontology.Labels{Label: []string{"Borrower"}}})
	b.AddProperty(ontology.Property{IRI: ex + "loanNumber", Domain: ex + "Loan", Range: vocabulary.XsdString,
		Labels: ontology.Labels{Pref: []string{"Loan Number"}}, Characteristics: ontology.Characteristics(ontology.InverseFunctional)})
	b.AddProperty(ontology.Property{IRI: ex + "principalAmount", Domain: ex + "Loan", Range: vocabulary.XsdDecimal,
		Labels: ontology.Labels{Label: []string{"Principal Amount"}, Alt: []string{"principal"}}})
	b.AddProperty(ontology.Property{IRI: ex + "email", Domain: ex + "Loan", Range: vocabulary.XsdString,
		Labels: ontology.Labels{Label: []string{"email"}}, Characteristics: ontology.Characteristics(ontology.InverseFunctional)})
	b.AddProperty(ontology.Property{IRI: ex + "hasBorrower", Domain: ex + "Loan", Range: ex + "Borrower",
		Labels: ontology.Labels{Label: []string{"has borrower"}}})
	b.AddProperty(ontology.Property{IRI: ex + "issueDate", Domain: ex + "FinancialInstrument", Range: vocabulary.XsdDate,
		Labels: ontology.Labels{Label: []string{"Issue Date"}}})
	b.AddProperty(ontology.Property{IRI: ex + "amount", Range: vocabulary.XsdDecimal, Labels: ontology.Labels{Label: []string{"amount"}}})
	b.AddProperty(ontology.Property{IRI: ex + "interestAmount", Domain: ex + "Loan", Range: vocabulary.XsdDecimal,
		SuperProperties: []string{ex + "amount"}, Labels: ontology.Labels{Label: []string{"Interest Amount"}}})
	return ontology.NewReasoner(b.Build())
}

func profile(name string, values ...string) dataset.ColumnProfile {
	return dataset.ProfileColumn(name, values, dataset.DefaultProfileOptions())
}

func TestKindCategoryIsTotal(t *testing.T) {
	seen := make(map[EvidenceCategory]bool)
	for _, k := range AllKinds() {
		assert.NotPanics(t, func() { seen[k.Category()] = true }, k.String())
		b := k.Bounds()
		assert.LessOrEqual(t, b.Min, b.Max, k.String())
		assert.LessOrEqual(t, b.Max, 1.0, k.String())
	}
	assert.Len(t, seen, len(AllCategories()))
	assert.Equal(t, Bounds{Min: 0.90, Max: 1.00}, KindExactLabel.Bounds())
	assert.Equal(t, Bounds{Min: 0.40, Max: 0.95}, KindSemantic.Bounds())
	assert.Equal(t, 0.95, KindDatatype.Bounds().Max)
}

func TestExactLabelMatchers(t *testing.T) {
	r := testReasoner(t)
	candidates := r.CandidateProperties(ex + "Loan")
	on := Settings{Enabled: true, Threshold: 0.9}

	tests := []struct {
		source LabelSource
		column string
		want   string
	}{
		{SourcePrefLabel, "loan_number", ex + "loanNumber"},
		{SourceRdfsLabel, "PrincipalAmount", ex + "principalAmount"},
		{SourceAltLabel, "PRINCIPAL", ex + "principalAmount"},
		{SourceLocalName, "issue-date", ex + "issueDate"},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			m := NewExactLabelMatcher(tt.source, on)
			res, err := m.Match(context.Background(), profile(tt.column, "x"), candidates, Context{})
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, tt.want, res.Property.IRI)
			assert.True(t, KindExactLabel.Bounds().Contains(res.Confidence))
			assert.Equal(t, KindExactLabel, res.Kind)
		})
	}

	m := NewExactLabelMatcher(SourceHiddenLabel, on)
	res, err := m.Match(context.Background(), profile("loan_number", "x"), candidates, Context{})
	require.NoError(t, err)
	assert.Nil(t, res)
}

type fixedScorer struct {
	score float64
}

func (s fixedScorer) SimilarityMany(_ context.Context, _ string, candidates []string) ([]float64, error) {
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		if c == "principal amount" {
			out[i] = s.score
		} else {
			out[i] = 0.1
		}
	}
	return out, nil
}

func (s fixedScorer) Model() string { return "fixed" }

func TestSemanticMatcher_Bounds(t *testing.T) {
	r := testReasoner(t)
	candidates := r.CandidateProperties(ex + "Loan")
	column := profile("loan_principal", "100.5")

	for _, score := range []float64{1.0, 0.97, 0.7} {
		m := NewSemanticMatcher(fixedScorer{score: score}, Settings{Enabled: true, Threshold: 0.5})
		res, err := m.Match(context.Background(), column, candidates, Context{})
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, ex+"principalAmount", res.Property.IRI)
		assert.True(t, KindSemantic.Bounds().Contains(res.Confidence), "confidence %.2f", res.Confidence)
	}

	m := NewSemanticMatcher(fixedScorer{score: 0.3}, Settings{Enabled: true, Threshold: 0.5})
	res, err := m.Match(context.Background(), column, candidates, Context{})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestOWLCharacteristicMatcher_Uniqueness(t *testing.T) {
	r := testReasoner(t)
	candidates := r.CandidateProperties(ex + "Loan")
	m := NewOWLCharacteristicMatcher(r, Settings{Enabled: true, Threshold: 0.5})

	repeated, err := m.Match(context.Background(), profile("email", "a@x", "b@x", "a@x"), candidates, Context{})
	require.NoError(t, err)
	unique, err := m.Match(context.Background(), profile("email", "a@x", "b@x", "c@x"), candidates, Context{})
	require.NoError(t, err)

	require.NotNil(t, repeated)
	require.NotNil(t, unique)
	assert.Equal(t, ex+"email", repeated.Property.IRI)
	assert.Equal(t, ex+"email", unique.Property.IRI)
	assert.Less(t, repeated.Confidence, unique.Confidence)
	assert.Contains(t, repeated.Justification, "violation")
	assert.NotContains(t, unique.Justification, "violation")
}

func TestStructuralMatcher(t *testing.T) {
	r := testReasoner(t)
	candidates := r.CandidateProperties(ex + "Loan")
	m := NewStructuralMatcher(r, Settings{Enabled: true, Threshold: 0.6})

	col := profile("borrower_id", "B1", "B2", "B1")
	res, err := m.Match(context.Background(), col, candidates, Context{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, ex+"hasBorrower", res.Property.IRI)
	assert.Equal(t, CategoryStructural, res.Kind.Category())
}

func TestHierarchyMatcher_PrefersSubProperty(t *testing.T) {
	r := testReasoner(t)
	candidates := r.CandidateProperties(ex + "Loan")
	m := NewHierarchyMatcher(r, Settings{Enabled: true, Threshold: 0.6})

	res, err := m.Match(context.Background(), profile("interest_amount", "1.5"), candidates, Context{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, ex+"interestAmount", res.Property.IRI)
}

func TestInheritedPropertyMatcher(t *testing.T) {
	r := testReasoner(t)
	candidates := r.CandidateProperties(ex + "Loan")
	m := NewInheritedPropertyMatcher(Settings{Enabled: true, Threshold: 0.5})

	res, err := m.Match(context.Background(), profile("issue_date", "2024-01-01"), candidates, Context{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, ex+"issueDate", res.Property.IRI)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)

	res, err = m.Match(context.Background(), profile("loan_number", "L1"), candidates, Context{})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestFallbackMatchers(t *testing.T) {
	r := testReasoner(t)
	candidates := r.CandidateProperties(ex + "Loan")

	fuzzy := NewFuzzyStringMatcher(Settings{Enabled: true, Threshold: 0.5})
	res, err := fuzzy.Match(context.Background(), profile("principle_amount", "1"), candidates, Context{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, ex+"principalAmount", res.Property.IRI)
	assert.True(t, KindFuzzy.Bounds().Contains(res.Confidence))

	partial := NewPartialStringMatcher(Settings{Enabled: true, Threshold: 0.5})
	res, err = partial.Match(context.Background(), profile("borrower_email", "a@x"), candidates, Context{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, ex+"email", res.Property.IRI)
}

func TestReferencedEntity(t *testing.T) {
	tests := []struct {
		column string
		want   string
		ok     bool
	}{
		{"customer_id", "customer", true},
		{"customerId", "customer", true},
		{"order_items_ref", "order item", true},
		{"categories_code", "category", true},
		{"id", "", false},
		{"amount", "", false},
	}
	for _, tt := range tests {
		got, ok := ReferencedEntity(tt.column)
		assert.Equal(t, tt.ok, ok, tt.column)
		assert.Equal(t, tt.want, got, tt.column)
	}
	assert.True(t, SameEntityName("Customers", "customer"))
	assert.True(t, SameEntityName("order_items", "OrderItem"))
	assert.False(t, SameEntityName("order", "orders_line"))
}

func TestEditRatio(t *testing.T) {
	assert.Equal(t, 1.0, editRatio("abc", "abc"))
	assert.InDelta(t, 2.0/3.0, editRatio("abc", "abd"), 1e-9)
	assert.Equal(t, 0.0, editRatio("abc", ""))
}
