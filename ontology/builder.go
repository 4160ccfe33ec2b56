package ontology

import (
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// Builder accumulates declarations and produces an immutable Ontology.
// Declaring the same IRI twice merges the declarations.
type Builder struct {
	ont     *Ontology
	pending []pendingAnnotation
}

type pendingAnnotation struct {
	subject string
	labels  Labels
	comment string
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{ont: &Ontology{
		classes:    make(map[string]*Class),
		properties: make(map[string]*Property),
	}}
}

// AddClass declares a class.
func (b *Builder) AddClass(c Class) *Builder {
	existing := b.class(c.IRI)
	mergeLabels(&existing.Labels, c.Labels)
	if c.Comment != "" {
		existing.Comment = c.Comment
	}
	for _, sup := range c.SuperClasses {
		existing.SuperClasses = appendUnique(existing.SuperClasses, sup)
	}
	return b
}

// AddProperty declares a property. Kind is inferred from the range when unset.
func (b *Builder) AddProperty(p Property) *Builder {
	existing := b.property(p.IRI)
	mergeLabels(&existing.Labels, p.Labels)
	if p.Comment != "" {
		existing.Comment = p.Comment
	}
	if p.Domain != "" && existing.Domain == "" {
		existing.Domain = p.Domain
	}
	if p.Range != "" && existing.Range == "" {
		existing.Range = p.Range
	}
	if p.Kind != KindUnknown {
		existing.Kind = p.Kind
	}
	existing.Characteristics |= p.Characteristics
	for _, sup := range p.SuperProperties {
		existing.SuperProperties = appendUnique(existing.SuperProperties, sup)
	}
	if p.InverseOf != "" {
		existing.InverseOf = p.InverseOf
	}
	mergeCardinality(&existing.Cardinality, p.Cardinality)
	return b
}

// Build returns the ontology. The builder must not be used afterwards.
func (b *Builder) Build() *Ontology {
	for _, a := range b.pending {
		if _, ok := b.ont.properties[a.subject]; ok {
			b.AddProperty(Property{IRI: a.subject, Labels: a.labels, Comment: a.comment})
		} else if _, ok := b.ont.classes[a.subject]; ok {
			b.AddClass(Class{IRI: a.subject, Labels: a.labels, Comment: a.comment})
		}
	}
	b.pending = nil

	for _, p := range b.ont.properties {
		if p.Kind == KindUnknown && p.Range != "" {
			if vocabulary.IsDatatypeIRI(p.Range) {
				p.Kind = KindDatatype
			} else if _, isClass := b.ont.classes[p.Range]; isClass {
				p.Kind = KindObject
			}
		}
		if p.Kind == KindUnknown && (p.Characteristics.Has(Symmetric) || p.Characteristics.Has(Transitive) || p.InverseOf != "") {
			p.Kind = KindObject
		}
	}
	ont := b.ont
	b.ont = nil
	return ont
}

func (b *Builder) class(iri string) *Class {
	if c, ok := b.ont.classes[iri]; ok {
		return c
	}
	c := &Class{IRI: iri}
	b.ont.classes[iri] = c
	b.ont.classOrder = append(b.ont.classOrder, iri)
	return c
}

func (b *Builder) property(iri string) *Property {
	if p, ok := b.ont.properties[iri]; ok {
		return p
	}
	p := &Property{IRI: iri}
	b.ont.properties[iri] = p
	b.ont.propertyOrder = append(b.ont.propertyOrder, iri)
	return p
}

func mergeLabels(dst *Labels, src Labels) {
	for _, s := range src.Label {
		dst.Label = appendUnique(dst.Label, s)
	}
	for _, s := range src.Pref {
		dst.Pref = appendUnique(dst.Pref, s)
	}
	for _, s := range src.Alt {
		dst.Alt = appendUnique(dst.Alt, s)
	}
	for _, s := range src.Hidden {
		dst.Hidden = appendUnique(dst.Hidden, s)
	}
}

func mergeCardinality(dst *Cardinality, src Cardinality) {
	if src.Min != nil {
		dst.Min = src.Min
	}
	if src.Max != nil {
		dst.Max = src.Max
	}
	if src.Exact != nil {
		dst.Exact = src.Exact
	}
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
