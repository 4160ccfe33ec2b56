package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

const ex = "http://example.org/loan#"

func loanOntology() *Ontology {
	b := NewBuilder()
	b.AddClass(Class{IRI: ex + "FinancialInstrument"})
	b.AddClass(Class{IRI: ex + "Loan", SuperClasses: []string{ex + "FinancialInstrument"}})
	b.AddClass(Class{IRI: ex + "MortgageLoan", SuperClasses: []string{ex + "Loan"}})
	b.AddClass(Class{IRI: ex + "Borrower"})
	b.AddProperty(Property{IRI: ex + "instrumentId", Domain: ex + "FinancialInstrument", Range: vocabulary.XsdString,
		Characteristics: Characteristics(InverseFunctional)})
	b.AddProperty(Property{IRI: ex + "principalAmount", Domain: ex + "Loan", Range: vocabulary.XsdDecimal})
	b.AddProperty(Property{IRI: ex + "loanNumber", Domain: ex + "MortgageLoan", Range: vocabulary.XsdString})
	b.AddProperty(Property{IRI: ex + "hasBorrower", Domain: ex + "Loan", Range: ex + "Borrower"})
	b.AddProperty(Property{IRI: ex + "borrowerOf", InverseOf: ex + "hasBorrower"})
	b.AddProperty(Property{IRI: ex + "amount", Range: vocabulary.XsdDecimal})
	b.AddProperty(Property{IRI: ex + "interestAmount", Domain: ex + "Loan", SuperProperties: []string{ex + "amount"}})
	return b.Build()
}

func iris(props []*Property) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.IRI)
	}
	return out
}

func TestReasoner_InheritedPropertiesDeduplicated(t *testing.T) {
	b := NewBuilder()
	b.AddClass(Class{IRI: ex + "FinancialInstrument"})
	b.AddClass(Class{IRI: ex + "Loan", SuperClasses: []string{ex + "FinancialInstrument"}})
	b.AddClass(Class{IRI: ex + "MortgageLoan", SuperClasses: []string{ex + "Loan", ex + "FinancialInstrument"}})
	b.AddProperty(Property{IRI: ex + "instrumentId", Domain: ex + "FinancialInstrument"})
	b.AddProperty(Property{IRI: ex + "principalAmount", Domain: ex + "Loan"})
	b.AddProperty(Property{IRI: ex + "loanNumber", Domain: ex + "MortgageLoan"})
	r := NewReasoner(b.Build())

	got := iris(r.InheritedProperties(ex + "MortgageLoan"))
	assert.Equal(t, []string{ex + "loanNumber", ex + "principalAmount", ex + "instrumentId"}, got)
}

func TestReasoner_Ancestors(t *testing.T) {
	r := NewReasoner(loanOntology())

	assert.Equal(t,
		[]string{ex + "MortgageLoan", ex + "Loan", ex + "FinancialInstrument"},
		r.Ancestors(ex+"MortgageLoan"))
	assert.Equal(t, []string{ex + "Unknown"}, r.Ancestors(ex+"Unknown"))
	assert.True(t, r.IsSubClassOf(ex+"MortgageLoan", ex+"FinancialInstrument"))
	assert.False(t, r.IsSubClassOf(ex+"Loan", ex+"MortgageLoan"))
}

func TestReasoner_AncestorsCycle(t *testing.T) {
	b := NewBuilder()
	b.AddClass(Class{IRI: ex + "A", SuperClasses: []string{ex + "B"}})
	b.AddClass(Class{IRI: ex + "B", SuperClasses: []string{ex + "A"}})
	r := NewReasoner(b.Build())

	assert.Equal(t, []string{ex + "A", ex + "B"}, r.Ancestors(ex+"A"))
	assert.True(t, r.IsSubClassOf(ex+"B", ex+"A"))
}

func TestReasoner_CandidateProperties(t *testing.T) {
	r := NewReasoner(loanOntology())

	byIRI := make(map[string]CandidateProperty)
	for _, c := range r.CandidateProperties(ex + "MortgageLoan") {
		byIRI[c.Property.IRI] = c
	}
	require.Contains(t, byIRI, ex+"loanNumber")
	assert.False(t, byIRI[ex+"loanNumber"].Inherited)
	assert.True(t, byIRI[ex+"principalAmount"].Inherited)
	assert.Equal(t, 2, byIRI[ex+"instrumentId"].Distance)
	assert.True(t, byIRI[ex+"amount"].Global)

	cfg := DefaultConfig()
	cfg.IncludeGlobalProperties = false
	r = NewReasoner(loanOntology(), WithConfig(cfg))
	for _, c := range r.CandidateProperties(ex + "MortgageLoan") {
		assert.NotEqual(t, ex+"amount", c.Property.IRI)
	}
}

func TestReasoner_PropertyContext(t *testing.T) {
	r := NewReasoner(loanOntology())

	pc := r.PropertyContext(ex + "interestAmount")
	assert.Equal(t, []string{ex + "amount"}, pc.Parents)
	assert.Empty(t, pc.Siblings)
	assert.Equal(t, []string{ex + "Loan", ex + "FinancialInstrument"}, pc.DomainAncestors)

	pc = r.PropertyContext(ex + "principalAmount")
	assert.Contains(t, pc.Siblings, ex+"hasBorrower")
	assert.NotContains(t, pc.Siblings, ex+"principalAmount")

	assert.Equal(t, []string{ex + "interestAmount"}, r.SubProperties(ex+"amount"))
	assert.Equal(t, PropertyContext{}, r.PropertyContext(ex+"missing"))
}

func TestReasoner_InverseAndKind(t *testing.T) {
	ont := loanOntology()
	r := NewReasoner(ont)

	inv, ok := r.InverseOf(ex + "hasBorrower")
	require.True(t, ok)
	assert.Equal(t, ex+"borrowerOf", inv)

	p, _ := ont.Property(ex + "hasBorrower")
	assert.Equal(t, KindObject, p.Kind)
	p, _ = ont.Property(ex + "principalAmount")
	assert.Equal(t, KindDatatype, p.Kind)
	assert.True(t, r.Characteristics(ex+"instrumentId").Has(InverseFunctional))
}

func TestReasoner_ValidateTypeCompatibility(t *testing.T) {
	r := NewReasoner(loanOntology())
	prop := func(rng string, kind PropertyKind) *Property {
		return &Property{IRI: ex + "p", Range: rng, Kind: kind}
	}

	tests := []struct {
		name      string
		prop      *Property
		family    vocabulary.DatatypeFamily
		wantValid bool
		wantScore float64
	}{
		{"exact decimal", prop(vocabulary.XsdDecimal, KindDatatype), vocabulary.FamilyDecimal, true, 1.0},
		{"integer into decimal", prop(vocabulary.XsdDecimal, KindDatatype), vocabulary.FamilyInteger, true, 0.8},
		{"decimal into integer", prop(vocabulary.XsdInteger, KindDatatype), vocabulary.FamilyDecimal, true, 0.6},
		{"date into datetime", prop(vocabulary.XsdDateTime, KindDatatype), vocabulary.FamilyDate, true, 0.7},
		{"anything into string", prop(vocabulary.XsdString, KindDatatype), vocabulary.FamilyInteger, true, 0.5},
		{"unknown column", prop(vocabulary.XsdDate, KindDatatype), vocabulary.FamilyUnknown, true, 0.5},
		{"string into date", prop(vocabulary.XsdDate, KindDatatype), vocabulary.FamilyString, false, 0},
		{"boolean into decimal", prop(vocabulary.XsdDecimal, KindDatatype), vocabulary.FamilyBoolean, false, 0},
		{"uri into object", prop(ex+"Borrower", KindObject), vocabulary.FamilyURI, true, 0.9},
		{"key into object", prop(ex+"Borrower", KindObject), vocabulary.FamilyString, true, 0.6},
		{"decimal into object", prop(ex+"Borrower", KindObject), vocabulary.FamilyDecimal, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, score := r.ValidateTypeCompatibility(tt.prop, tt.family)
			assert.Equal(t, tt.wantValid, valid)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
		})
	}
}

func TestReasoner_ValidateUniquenessForCharacteristic(t *testing.T) {
	r := NewReasoner(loanOntology())
	opts := dataset.DefaultProfileOptions()

	repeated := dataset.ProfileColumn("email", []string{"a@x", "b@x", "a@x"}, opts)
	unique := dataset.ProfileColumn("email", []string{"a@x", "b@x", "c@x"}, opts)

	low := r.ValidateUniquenessForCharacteristic(InverseFunctional, repeated)
	high := r.ValidateUniquenessForCharacteristic(InverseFunctional, unique)

	assert.True(t, low.Violation)
	assert.False(t, high.Violation)
	assert.Less(t, low.Adjustment, high.Adjustment)
	assert.InDelta(t, 0.05, high.Adjustment, 1e-9)
	assert.InDelta(t, -(0.90 - repeated.UniquenessRatio), low.Adjustment, 1e-9)

	multi := dataset.ColumnProfile{Name: "tags", IsMultiValued: true}
	check := r.ValidateUniquenessForCharacteristic(Functional, multi)
	assert.True(t, check.Violation)
	assert.InDelta(t, -0.10, check.Adjustment, 1e-9)

	assert.False(t, r.ValidateUniquenessForCharacteristic(Symmetric, unique).Applicable)
}
