package ontology

import (
	"sort"
	"strings"
)

// PropertyKind distinguishes object properties (range is a class) from
// datatype properties (range is a literal datatype).
type PropertyKind int

const (
	KindUnknown PropertyKind = iota
	KindDatatype
	KindObject
)

// String returns the kind name.
func (k PropertyKind) String() string {
	switch k {
	case KindDatatype:
		return "datatype"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Characteristic is an OWL property characteristic.
type Characteristic uint8

const (
	Functional Characteristic = 1 << iota
	InverseFunctional
	Symmetric
	Transitive
)

var characteristicNames = []struct {
	c    Characteristic
	name string
}{
	{Functional, "functional"},
	{InverseFunctional, "inverse_functional"},
	{Symmetric, "symmetric"},
	{Transitive, "transitive"},
}

// String returns the characteristic name.
func (c Characteristic) String() string {
	for _, n := range characteristicNames {
		if n.c == c {
			return n.name
		}
	}
	return "unknown"
}

// ParseCharacteristic parses a name such as "inverse_functional",
// "InverseFunctional" or "inverse-functional".
func ParseCharacteristic(s string) (Characteristic, bool) {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
	norm = strings.TrimSuffix(norm, "property")
	for _, n := range characteristicNames {
		if strings.ReplaceAll(n.name, "_", "") == norm {
			return n.c, true
		}
	}
	return 0, false
}

// Characteristics is a set of OWL characteristics.
type Characteristics uint8

// Has reports whether c is in the set.
func (cs Characteristics) Has(c Characteristic) bool {
	return uint8(cs)&uint8(c) != 0
}

// With returns the set with c added.
func (cs Characteristics) With(c Characteristic) Characteristics {
	return Characteristics(uint8(cs) | uint8(c))
}

// List returns the members in declaration order.
func (cs Characteristics) List() []Characteristic {
	var out []Characteristic
	for _, n := range characteristicNames {
		if cs.Has(n.c) {
			out = append(out, n.c)
		}
	}
	return out
}

// Strings returns member names in declaration order.
func (cs Characteristics) Strings() []string {
	var out []string
	for _, c := range cs.List() {
		out = append(out, c.String())
	}
	return out
}

// Labels holds the lexical labels of a class or property.
type Labels struct {
	Label  []string `json:"label,omitempty" yaml:"label,omitempty"`
	Pref   []string `json:"pref,omitempty" yaml:"pref,omitempty"`
	Alt    []string `json:"alt,omitempty" yaml:"alt,omitempty"`
	Hidden []string `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// All returns every label, preferred first, without duplicates.
func (l Labels) All() []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{l.Pref, l.Label, l.Alt, l.Hidden} {
		for _, s := range group {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Primary returns the display label: first skos:prefLabel, else first rdfs:label.
func (l Labels) Primary() string {
	if len(l.Pref) > 0 {
		return l.Pref[0]
	}
	if len(l.Label) > 0 {
		return l.Label[0]
	}
	return ""
}

// Cardinality holds declared cardinality constraints. Nil means unconstrained.
type Cardinality struct {
	Min   *int `json:"min,omitempty" yaml:"min,omitempty"`
	Max   *int `json:"max,omitempty" yaml:"max,omitempty"`
	Exact *int `json:"exact,omitempty" yaml:"exact,omitempty"`
}

// IsZero reports whether no constraint is declared.
func (c Cardinality) IsZero() bool {
	return c.Min == nil && c.Max == nil && c.Exact == nil
}

// Class is an ontology class. Immutable once the ontology is built.
type Class struct {
	IRI          string
	Labels       Labels
	Comment      string
	SuperClasses []string
}

// Property is an ontology property. Immutable once the ontology is built.
type Property struct {
	IRI             string
	Labels          Labels
	Comment         string
	Domain          string
	Range           string
	Kind            PropertyKind
	Characteristics Characteristics
	SuperProperties []string
	InverseOf       string
	Cardinality     Cardinality
}

// IsObject reports whether the property links resources.
func (p *Property) IsObject() bool {
	return p.Kind == KindObject
}

// Ontology is an immutable set of classes and properties. Iteration order
// follows declaration order.
type Ontology struct {
	classes       map[string]*Class
	properties    map[string]*Property
	classOrder    []string
	propertyOrder []string
}

// Class returns a class by IRI.
func (o *Ontology) Class(iri string) (*Class, bool) {
	c, ok := o.classes[iri]
	return c, ok
}

// Property returns a property by IRI.
func (o *Ontology) Property(iri string) (*Property, bool) {
	p, ok := o.properties[iri]
	return p, ok
}

// Classes returns all classes in declaration order.
func (o *Ontology) Classes() []*Class {
	out := make([]*Class, 0, len(o.classOrder))
	for _, iri := range o.classOrder {
		out = append(out, o.classes[iri])
	}
	return out
}

// Properties returns all properties in declaration order.
func (o *Ontology) Properties() []*Property {
	out := make([]*Property, 0, len(o.propertyOrder))
	for _, iri := range o.propertyOrder {
		out = append(out, o.properties[iri])
	}
	return out
}

// ClassCount returns the number of classes.
func (o *Ontology) ClassCount() int { return len(o.classes) }

// PropertyCount returns the number of properties.
func (o *Ontology) PropertyCount() int { return len(o.properties) }

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
