package rdf

import (
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"

	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

func TestTriple_Key(t *testing.T) {
	a := New("http://ex.org/l/1", "http://ex.org/amount", Literal("1", vocabulary.XsdInteger))
	b := New("http://ex.org/l/1", "http://ex.org/amount", Literal("1", vocabulary.XsdInteger))
	c := New("http://ex.org/l/1", "http://ex.org/amount", Literal("1", ""))
	d := New("http://ex.org/l/1", "http://ex.org/amount", IRI("1"))

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.NotEqual(t, c.Key(), d.Key())
}

func TestTriple_String(t *testing.T) {
	tr := New("http://ex.org/l/1", vocabulary.RdfType, IRI("http://ex.org/Loan"))
	assert.Equal(t, "<http://ex.org/l/1> <"+vocabulary.RdfType+"> <http://ex.org/Loan> .", tr.String())
	assert.False(t, tr.IsLiteral())
	assert.Equal(t, quad.IRI("http://ex.org/l/1"), tr.Quad().Subject)
	assert.Nil(t, tr.Quad().Label)
}

func TestLiteralHelpers(t *testing.T) {
	plain := Literal("abc", vocabulary.XsdString)
	assert.Equal(t, quad.String("abc"), plain)

	dt, ok := DatatypeOf(plain)
	assert.True(t, ok)
	assert.Equal(t, vocabulary.XsdString, dt)

	typed := Literal("2024-01-02", vocabulary.XsdDate)
	dt, _ = DatatypeOf(typed)
	assert.Equal(t, vocabulary.XsdDate, dt)
	assert.Equal(t, "2024-01-02", LexicalForm(typed))

	lang := LangLiteral("Prêt", "fr")
	dt, _ = DatatypeOf(lang)
	assert.Equal(t, vocabulary.RdfLangStr, dt)
	assert.True(t, IsLiteral(lang))

	_, ok = DatatypeOf(IRI("http://ex.org/x"))
	assert.False(t, ok)
	iri, ok := IRIOf(IRI("http://ex.org/x"))
	assert.True(t, ok)
	assert.Equal(t, "http://ex.org/x", iri)
	assert.Equal(t, "42", LexicalForm(quad.Int(42)))
}
