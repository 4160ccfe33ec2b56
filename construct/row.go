package construct

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/google/uuid"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/mapping"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/rdf"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// origin records what produced a triple.
type origin uint8

const (
	originMapped origin = iota
	originType
	originInferredType
	originInverse
	originSymmetric
	originTransitive
)

type emitted struct {
	rdf.Triple
	origin origin
}

// rowOutput is everything one row produced. types and mapped are keyed by
// subject IRI.
type rowOutput struct {
	row     int
	triples []emitted
	types   map[string][]string
	mapped  map[string]map[string]struct{}
}

func (o *rowOutput) add(s, p string, obj quad.Value, from origin) {
	o.triples = append(o.triples, emitted{Triple: rdf.New(s, p, obj), origin: from})
}

func (o *rowOutput) mark(s, p string) {
	preds, ok := o.mapped[s]
	if !ok {
		preds = make(map[string]struct{})
		o.mapped[s] = preds
	}
	preds[p] = struct{}{}
}

func (o *rowOutput) hasType(s, class string) bool {
	for _, t := range o.types[s] {
		if t == class {
			return true
		}
	}
	return false
}

// counts returns the number of mapped values per predicate of subject.
func (o *rowOutput) counts(s string) map[string]int {
	out := make(map[string]int)
	for _, t := range o.triples {
		if t.origin == originMapped && string(t.Subject) == s {
			out[string(t.Predicate)]++
		}
	}
	return out
}

// converter turns rows into triples. It only reads shared state.
type converter struct {
	m        *mapping.Resolved
	reasoner *ontology.Reasoner
	cfg      Config
	nestedNS uuid.UUID
}

func newConverter(m *mapping.Resolved, r *ontology.Reasoner, cfg Config) *converter {
	return &converter{
		m:        m,
		reasoner: r,
		cfg:      cfg,
		nestedNS: uuid.NewSHA1(uuid.NameSpaceURL, []byte(m.BaseIRI)),
	}
}

// convert produces the triples of one row. Any error fails the whole row.
func (c *converter) convert(index int, row dataset.Row) (*rowOutput, *RowError) {
	out := &rowOutput{
		row:    index,
		types:  make(map[string][]string),
		mapped: make(map[string]map[string]struct{}),
	}

	subjects := make([]string, len(c.m.Entities))
	for i, ent := range c.m.Entities {
		iri, err := ent.Template.Expand(row)
		if err != nil {
			return nil, &RowError{Row: index, Column: ent.Name, Err: err}
		}
		subjects[i] = iri
		c.addType(out, iri, ent.Class)
	}

	for _, col := range c.m.Columns {
		if err := c.emitColumn(out, subjects[col.Entity], col, row); err != nil {
			return nil, &RowError{Row: index, Column: col.Column, Err: err}
		}
	}

	for _, rel := range c.m.Relationships {
		subject := subjects[rel.Entity]
		linked, ok, err := c.linkedIRI(subject, rel, row)
		if err != nil {
			return nil, &RowError{Row: index, Column: rel.Name, Err: err}
		}
		out.mark(subject, rel.Predicate)
		if !ok {
			continue
		}
		out.add(subject, rel.Predicate, rdf.IRI(linked), originMapped)
		c.addType(out, linked, rel.Class)
		for _, col := range rel.Properties {
			if err := c.emitColumn(out, linked, col, row); err != nil {
				return nil, &RowError{Row: index, Column: col.Column, Err: err}
			}
		}
	}

	if c.cfg.Materialize {
		c.materialize(out)
	}
	return out, nil
}

func (c *converter) addType(out *rowOutput, subject, class string) {
	if out.hasType(subject, class) {
		return
	}
	out.add(subject, vocabulary.RdfType, rdf.IRI(class), originType)
	out.types[subject] = append(out.types[subject], class)
	ancestors := c.reasoner.Ancestors(class)
	if !c.cfg.InferTypes || len(ancestors) < 2 {
		return
	}
	for _, ancestor := range ancestors[1:] {
		if out.hasType(subject, ancestor) {
			continue
		}
		out.add(subject, vocabulary.RdfType, rdf.IRI(ancestor), originInferredType)
		out.types[subject] = append(out.types[subject], ancestor)
	}
}

func (c *converter) emitColumn(out *rowOutput, subject string, col mapping.ResolvedColumn, row dataset.Row) error {
	out.mark(subject, col.Predicate)
	raw := row[col.Column]
	if strings.TrimSpace(raw) == "" {
		if col.Required {
			return errors.WrapInvalid(errors.ErrRequiredValueMissing, "Engine", "emitColumn", "read "+col.Column)
		}
		if c.m.Options.SkipEmptyValues {
			return nil
		}
	}

	values := []string{raw}
	if col.MultiValued {
		values = splitValues(raw, col.Delimiter)
	}
	for _, v := range values {
		v, err := mapping.ApplyTransforms(v, col.Transforms)
		if err != nil {
			return errors.WrapInvalid(err, "Engine", "emitColumn", "transform "+col.Column)
		}
		obj, err := c.object(col, v)
		if err != nil {
			return err
		}
		out.add(subject, col.Predicate, obj, originMapped)
	}
	return nil
}

func splitValues(raw, delim string) []string {
	var out []string
	for _, part := range strings.Split(raw, delim) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// object builds the object term. Columns mapped to object properties with
// no datatype become IRIs when the value is one.
func (c *converter) object(col mapping.ResolvedColumn, v string) (quad.Value, error) {
	if col.Language != "" {
		return rdf.LangLiteral(v, col.Language), nil
	}
	if col.Datatype == "" {
		if p, ok := c.reasoner.Ontology().Property(col.Predicate); ok && p.IsObject() && vocabulary.IsAbsoluteIRI(v) {
			return rdf.IRI(v), nil
		}
		return rdf.Literal(v, ""), nil
	}
	if err := checkLexical(col.Datatype, v); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q is not a valid %s: %v", errors.ErrDatatypeCoercion, v, vocabulary.LocalName(col.Datatype), err),
			"Engine", "object", "coerce "+col.Column)
	}
	return rdf.Literal(v, col.Datatype), nil
}

func checkLexical(datatype, v string) error {
	var err error
	switch vocabulary.FamilyOf(datatype) {
	case vocabulary.FamilyInteger:
		_, err = strconv.ParseInt(v, 10, 64)
	case vocabulary.FamilyDecimal:
		_, err = strconv.ParseFloat(v, 64)
	case vocabulary.FamilyBoolean:
		switch v {
		case "true", "false", "1", "0":
		default:
			err = fmt.Errorf("want true, false, 1 or 0")
		}
	case vocabulary.FamilyDate:
		_, err = time.Parse("2006-01-02", v)
	case vocabulary.FamilyDateTime:
		if _, err = time.Parse(time.RFC3339, v); err != nil {
			_, err = time.Parse("2006-01-02T15:04:05", v)
		}
	}
	return err
}

// linkedIRI returns the IRI of the resource a relationship points at.
// ok is false when the row has no value for the link at all.
func (c *converter) linkedIRI(subject string, rel mapping.ResolvedRelationship, row dataset.Row) (string, bool, error) {
	if !rel.Nested() {
		iri, err := rel.Template.Expand(row)
		if err == nil {
			return iri, true, nil
		}
		for _, f := range rel.Template.Fields() {
			if strings.TrimSpace(row[f]) != "" {
				return "", false, err
			}
		}
		return "", false, nil
	}

	var key strings.Builder
	key.WriteString(subject)
	key.WriteByte(0)
	key.WriteString(rel.Name)
	present := false
	for _, col := range rel.Properties {
		v := strings.TrimSpace(row[col.Column])
		key.WriteByte(0)
		key.WriteString(v)
		present = present || v != ""
	}
	if !present {
		return "", false, nil
	}
	id := uuid.NewSHA1(c.nestedNS, []byte(key.String()))
	return c.m.BaseIRI + url.PathEscape(rel.Name) + "/" + id.String(), true, nil
}

// materialize adds single-hop derived links between resources of the row.
// Only mapped links are considered, so nothing is derived from derived
// triples.
func (c *converter) materialize(out *rowOutput) {
	type link struct{ s, p, o string }
	var links []link
	for _, t := range out.triples {
		if t.origin != originMapped {
			continue
		}
		if o, ok := rdf.IRIOf(t.Object); ok {
			links = append(links, link{string(t.Subject), string(t.Predicate), o})
		}
	}

	for _, l := range links {
		if inv, ok := c.reasoner.InverseOf(l.p); ok {
			out.add(l.o, inv, rdf.IRI(l.s), originInverse)
		}
		if c.reasoner.Characteristics(l.p).Has(ontology.Symmetric) && l.s != l.o {
			out.add(l.o, l.p, rdf.IRI(l.s), originSymmetric)
		}
	}

	for i, a := range links {
		if !c.reasoner.Characteristics(a.p).Has(ontology.Transitive) {
			continue
		}
		for j, b := range links {
			if i == j || b.p != a.p || b.s != a.o || b.o == a.s {
				continue
			}
			out.add(a.s, a.p, rdf.IRI(b.o), originTransitive)
		}
	}
}
