// Package rdf defines the Triple, the unit of output of the construction
// engine, on top of the cayley quad value model.
package rdf

import (
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// Triple is one (subject, predicate, object) statement. Subjects and
// predicates are always IRIs; objects are IRIs or literals.
type Triple struct {
	Subject   quad.IRI
	Predicate quad.IRI
	Object    quad.Value
}

// New builds a triple from IRI strings and an object value.
func New(subject, predicate string, object quad.Value) Triple {
	return Triple{Subject: quad.IRI(subject), Predicate: quad.IRI(predicate), Object: object}
}

// Key identifies the triple for deduplication. Literal objects keep their
// datatype and language, so "1"^^xsd:integer and "1" are distinct.
func (t Triple) Key() string {
	var b strings.Builder
	b.Grow(len(t.Subject) + len(t.Predicate) + 32)
	b.WriteString(string(t.Subject))
	b.WriteByte(0)
	b.WriteString(string(t.Predicate))
	b.WriteByte(0)
	b.WriteString(quad.StringOf(t.Object))
	return b.String()
}

// Quad converts the triple into a default-graph quad for serializers.
func (t Triple) Quad() quad.Quad {
	return quad.Quad{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object}
}

// String renders the triple in N-Triples form without the trailing newline.
func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject.String(), t.Predicate.String(), quad.StringOf(t.Object))
}

// IsLiteral reports whether the object is a literal.
func (t Triple) IsLiteral() bool {
	return IsLiteral(t.Object)
}

// IRI returns an IRI value.
func IRI(iri string) quad.IRI {
	return quad.IRI(iri)
}

// Literal returns a literal with the given datatype. Plain strings
// (no datatype or xsd:string) are simple literals.
func Literal(value, datatype string) quad.Value {
	if datatype == "" || datatype == vocabulary.XsdString {
		return quad.String(value)
	}
	return quad.TypedString{Value: quad.String(value), Type: quad.IRI(datatype)}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(value, lang string) quad.Value {
	return quad.LangString{Value: quad.String(value), Lang: lang}
}

// IsLiteral reports whether v is a literal value.
func IsLiteral(v quad.Value) bool {
	switch v.(type) {
	case quad.IRI, quad.BNode, nil:
		return false
	default:
		return true
	}
}

// IRIOf returns the IRI string of v and whether v is an IRI.
func IRIOf(v quad.Value) (string, bool) {
	if iri, ok := v.(quad.IRI); ok {
		return string(iri), true
	}
	return "", false
}

// DatatypeOf returns the datatype IRI of a literal. Simple literals are
// xsd:string, language-tagged ones rdf:langString. Native values produced
// by the quad parsers (integers, floats, booleans, times) map to their XSD type.
func DatatypeOf(v quad.Value) (string, bool) {
	switch val := v.(type) {
	case quad.String:
		return vocabulary.XsdString, true
	case quad.TypedString:
		return string(val.Type), true
	case quad.LangString:
		return vocabulary.RdfLangStr, true
	case quad.Int:
		return vocabulary.XsdInteger, true
	case quad.Float:
		return vocabulary.XsdDouble, true
	case quad.Bool:
		return vocabulary.XsdBoolean, true
	case quad.Time:
		return vocabulary.XsdDateTime, true
	default:
		return "", false
	}
}

// LexicalForm returns the literal text of v, or the IRI string for IRIs.
func LexicalForm(v quad.Value) string {
	switch val := v.(type) {
	case quad.IRI:
		return string(val)
	case quad.String:
		return string(val)
	case quad.TypedString:
		return string(val.Value)
	case quad.LangString:
		return string(val.Value)
	case nil:
		return ""
	default:
		return fmt.Sprint(quad.NativeOf(v))
	}
}
