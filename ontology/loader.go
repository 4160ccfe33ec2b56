package ontology

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"gopkg.in/yaml.v3"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/rdf"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// Load reads an ontology from disk. The format follows the extension:
// .nt and .nq are parsed as N-Triples/N-Quads; .yaml, .yml and .json as an
// ontology document (see Document). Any failure is fatal and wraps
// errors.ErrOntologyLoad.
func Load(ctx context.Context, path string) (*Ontology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr(err, "Load", "open ontology file")
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".nt", ".nq":
		return LoadNQuads(ctx, f)
	case ".yaml", ".yml", ".json":
		return LoadDocument(f)
	default:
		return nil, loadErr(fmt.Errorf("unsupported ontology format %q", filepath.Ext(path)),
			"Load", "detect format")
	}
}

func loadErr(err error, method, action string) error {
	return errors.WrapFatal(fmt.Errorf("%w: %v", errors.ErrOntologyLoad, err), "Loader", method, action)
}

// restriction collects an owl:Restriction blank node.
type restriction struct {
	onProperty string
	card       Cardinality
}

// LoadNQuads reads RDF statements in N-Triples or N-Quads syntax and
// extracts class and property declarations. Graph labels are ignored.
func LoadNQuads(ctx context.Context, r io.Reader) (*Ontology, error) {
	reader := nquads.NewReader(r, false)
	defer reader.Close()

	b := NewBuilder()
	restrictions := make(map[string]*restriction)
	restrictionRefs := make(map[string]bool)
	statements := 0

	for {
		if statements%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, loadErr(err, "LoadNQuads", "read statements")
			}
		}
		q, err := reader.ReadQuad()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, loadErr(err, "LoadNQuads", "parse statement")
		}
		statements++

		if bnode, ok := q.Subject.(quad.BNode); ok {
			collectRestriction(restrictions, string(bnode), q)
			continue
		}
		subject, ok := rdf.IRIOf(q.Subject)
		if !ok {
			continue
		}
		predicate, _ := rdf.IRIOf(q.Predicate)
		object, objectIsIRI := rdf.IRIOf(q.Object)
		text := rdf.LexicalForm(q.Object)

		switch predicate {
		case vocabulary.RdfType:
			applyType(b, subject, object)
		case vocabulary.RdfsSubClassOf:
			if bnode, ok := q.Object.(quad.BNode); ok {
				restrictionRefs[string(bnode)] = true
				b.AddClass(Class{IRI: subject})
				continue
			}
			if objectIsIRI {
				b.AddClass(Class{IRI: subject, SuperClasses: []string{object}})
				b.AddClass(Class{IRI: object})
			}
		case vocabulary.RdfsSubPropertyOf:
			if objectIsIRI {
				b.AddProperty(Property{IRI: subject, SuperProperties: []string{object}})
			}
		case vocabulary.RdfsDomain:
			if objectIsIRI {
				b.AddProperty(Property{IRI: subject, Domain: object})
			}
		case vocabulary.RdfsRange:
			if objectIsIRI {
				b.AddProperty(Property{IRI: subject, Range: object})
			}
		case vocabulary.OwlInverseOf:
			if objectIsIRI {
				b.AddProperty(Property{IRI: subject, InverseOf: object, Kind: KindObject})
				b.AddProperty(Property{IRI: object, InverseOf: subject, Kind: KindObject})
			}
		case vocabulary.RdfsLabel, vocabulary.SkosPrefLabel, vocabulary.SkosAltLabel,
			vocabulary.SkosHiddenLabel, vocabulary.RdfsComment, vocabulary.SkosDefinition:
			applyAnnotation(b, subject, predicate, text)
		}
	}

	for _, bnode := range sortedKeys(restrictionRefs) {
		res, ok := restrictions[bnode]
		if !ok || res.onProperty == "" || res.card.IsZero() {
			continue
		}
		b.AddProperty(Property{IRI: res.onProperty, Cardinality: res.card})
	}

	if statements == 0 {
		return nil, loadErr(fmt.Errorf("no statements"), "LoadNQuads", "read statements")
	}
	return b.Build(), nil
}

func applyType(b *Builder, subject, typ string) {
	switch typ {
	case vocabulary.OwlClass, vocabulary.RdfsClass:
		b.AddClass(Class{IRI: subject})
	case vocabulary.OwlObjectProperty:
		b.AddProperty(Property{IRI: subject, Kind: KindObject})
	case vocabulary.OwlDatatypeProperty:
		b.AddProperty(Property{IRI: subject, Kind: KindDatatype})
	case vocabulary.RdfProperty:
		b.AddProperty(Property{IRI: subject})
	case vocabulary.OwlFunctionalProperty:
		b.AddProperty(Property{IRI: subject, Characteristics: Characteristics(Functional)})
	case vocabulary.OwlInverseFunctionalProperty:
		b.AddProperty(Property{IRI: subject, Characteristics: Characteristics(InverseFunctional)})
	case vocabulary.OwlSymmetricProperty:
		b.AddProperty(Property{IRI: subject, Characteristics: Characteristics(Symmetric), Kind: KindObject})
	case vocabulary.OwlTransitiveProperty:
		b.AddProperty(Property{IRI: subject, Characteristics: Characteristics(Transitive), Kind: KindObject})
	}
}

// applyAnnotation attaches a label or comment to whichever declaration
// owns subject. Annotations that arrive before the declaration are held
// until Build.
func applyAnnotation(b *Builder, subject, predicate, text string) {
	var labels Labels
	comment := ""
	switch predicate {
	case vocabulary.RdfsLabel:
		labels.Label = []string{text}
	case vocabulary.SkosPrefLabel:
		labels.Pref = []string{text}
	case vocabulary.SkosAltLabel:
		labels.Alt = []string{text}
	case vocabulary.SkosHiddenLabel:
		labels.Hidden = []string{text}
	default:
		comment = text
	}

	if _, isProp := b.ont.properties[subject]; isProp {
		b.AddProperty(Property{IRI: subject, Labels: labels, Comment: comment})
		return
	}
	if _, isClass := b.ont.classes[subject]; isClass {
		b.AddClass(Class{IRI: subject, Labels: labels, Comment: comment})
		return
	}
	b.pending = append(b.pending, pendingAnnotation{subject: subject, labels: labels, comment: comment})
}

func collectRestriction(restrictions map[string]*restriction, bnode string, q quad.Quad) {
	res, ok := restrictions[bnode]
	if !ok {
		res = &restriction{}
		restrictions[bnode] = res
	}
	predicate, _ := rdf.IRIOf(q.Predicate)
	value := func() *int {
		n, err := strconv.Atoi(strings.TrimSpace(rdf.LexicalForm(q.Object)))
		if err != nil {
			return nil
		}
		return &n
	}
	switch predicate {
	case vocabulary.OwlOnProperty:
		res.onProperty, _ = rdf.IRIOf(q.Object)
	case vocabulary.OwlCardinality, vocabulary.OWLNamespace + "qualifiedCardinality":
		res.card.Exact = value()
	case vocabulary.OwlMinCardinality, vocabulary.OWLNamespace + "minQualifiedCardinality":
		res.card.Min = value()
	case vocabulary.OwlMaxCardinality, vocabulary.OWLNamespace + "maxQualifiedCardinality":
		res.card.Max = value()
	}
}

// Document is the YAML/JSON ontology format. IRIs may be compact when the
// prefix is declared in Namespaces or is one of the standard prefixes.
type Document struct {
	Namespaces map[string]string  `yaml:"namespaces" json:"namespaces"`
	Classes    []ClassDocument    `yaml:"classes" json:"classes"`
	Properties []PropertyDocument `yaml:"properties" json:"properties"`
}

// ClassDocument declares a class in a Document.
type ClassDocument struct {
	IRI        string   `yaml:"iri" json:"iri"`
	Label      string   `yaml:"label" json:"label"`
	Comment    string   `yaml:"comment" json:"comment"`
	SubClassOf []string `yaml:"subclass_of" json:"subclass_of"`
}

// PropertyDocument declares a property in a Document.
type PropertyDocument struct {
	IRI             string      `yaml:"iri" json:"iri"`
	Type            string      `yaml:"type" json:"type"`
	Label           string      `yaml:"label" json:"label"`
	PrefLabel       string      `yaml:"pref_label" json:"pref_label"`
	AltLabels       []string    `yaml:"alt_labels" json:"alt_labels"`
	HiddenLabels    []string    `yaml:"hidden_labels" json:"hidden_labels"`
	Comment         string      `yaml:"comment" json:"comment"`
	Domain          string      `yaml:"domain" json:"domain"`
	Range           string      `yaml:"range" json:"range"`
	Characteristics []string    `yaml:"characteristics" json:"characteristics"`
	SubPropertyOf   []string    `yaml:"subproperty_of" json:"subproperty_of"`
	InverseOf       string      `yaml:"inverse_of" json:"inverse_of"`
	Cardinality     Cardinality `yaml:"cardinality" json:"cardinality"`
}

// LoadDocument reads a YAML or JSON ontology document.
func LoadDocument(r io.Reader) (*Ontology, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, loadErr(err, "LoadDocument", "decode document")
	}
	return doc.Build()
}

// Build converts the document into an Ontology.
func (d Document) Build() (*Ontology, error) {
	ns := vocabulary.DefaultNamespaces().Merge(d.Namespaces)
	expand := func(term, field string) (string, error) {
		if term == "" {
			return "", nil
		}
		iri, err := ns.Expand(term)
		if err != nil {
			return "", loadErr(err, "Document", "expand "+field)
		}
		return iri, nil
	}
	expandAll := func(terms []string, field string) ([]string, error) {
		out := make([]string, 0, len(terms))
		for _, t := range terms {
			iri, err := expand(t, field)
			if err != nil {
				return nil, err
			}
			out = append(out, iri)
		}
		return out, nil
	}

	b := NewBuilder()
	for _, c := range d.Classes {
		iri, err := expand(c.IRI, "class iri")
		if err != nil {
			return nil, err
		}
		if iri == "" {
			return nil, loadErr(fmt.Errorf("class without iri"), "Document", "validate class")
		}
		supers, err := expandAll(c.SubClassOf, "subclass_of")
		if err != nil {
			return nil, err
		}
		cls := Class{IRI: iri, Comment: c.Comment, SuperClasses: supers}
		if c.Label != "" {
			cls.Labels.Label = []string{c.Label}
		}
		b.AddClass(cls)
	}

	for _, p := range d.Properties {
		iri, err := expand(p.IRI, "property iri")
		if err != nil {
			return nil, err
		}
		if iri == "" {
			return nil, loadErr(fmt.Errorf("property without iri"), "Document", "validate property")
		}
		prop := Property{IRI: iri, Comment: p.Comment, Cardinality: p.Cardinality}
		if prop.Domain, err = expand(p.Domain, "domain"); err != nil {
			return nil, err
		}
		if prop.Range, err = expand(p.Range, "range"); err != nil {
			return nil, err
		}
		if prop.InverseOf, err = expand(p.InverseOf, "inverse_of"); err != nil {
			return nil, err
		}
		if prop.SuperProperties, err = expandAll(p.SubPropertyOf, "subproperty_of"); err != nil {
			return nil, err
		}
		switch strings.ToLower(p.Type) {
		case "object", "objectproperty":
			prop.Kind = KindObject
		case "datatype", "datatypeproperty":
			prop.Kind = KindDatatype
		case "":
		default:
			return nil, loadErr(fmt.Errorf("unknown property type %q", p.Type), "Document", "validate property")
		}
		for _, name := range p.Characteristics {
			c, ok := ParseCharacteristic(name)
			if !ok {
				return nil, loadErr(fmt.Errorf("unknown characteristic %q", name), "Document", "validate property")
			}
			prop.Characteristics = prop.Characteristics.With(c)
		}
		if p.Label != "" {
			prop.Labels.Label = []string{p.Label}
		}
		if p.PrefLabel != "" {
			prop.Labels.Pref = []string{p.PrefLabel}
		}
		prop.Labels.Alt = p.AltLabels
		prop.Labels.Hidden = p.HiddenLabels
		b.AddProperty(prop)
		if prop.InverseOf != "" {
			b.AddProperty(Property{IRI: prop.InverseOf, InverseOf: iri, Kind: KindObject})
		}
	}

	return b.Build(), nil
}
