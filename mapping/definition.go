package mapping

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// CurrentVersion is written into generated definitions.
const CurrentVersion = "1"

// ErrorPolicy selects how row-level conversion errors are handled.
type ErrorPolicy string

// Row error policies.
const (
	PolicyReport   ErrorPolicy = "report"
	PolicySkip     ErrorPolicy = "skip"
	PolicyFailFast ErrorPolicy = "fail-fast"
)

// Definition is a mapping from the columns of one dataset to ontology terms.
// It is the document form: terms may be compact IRIs and templates may be
// relative to BaseIRI. Call Resolve to obtain the expanded form.
type Definition struct {
	Version       string                     `json:"version,omitempty" yaml:"version,omitempty"`
	BaseIRI       string                     `json:"base_iri" yaml:"base_iri"`
	Namespaces    map[string]string          `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
	Entities      []Entity                   `json:"entities" yaml:"entities"`
	Columns       map[string]PropertyMapping `json:"columns" yaml:"columns"`
	Relationships []Relationship             `json:"relationships,omitempty" yaml:"relationships,omitempty"`
	Options       Options                    `json:"options" yaml:"options"`
}

// Entity is one subject produced per row.
type Entity struct {
	Name        string `json:"name" yaml:"name"`
	Class       string `json:"class" yaml:"class"`
	IRITemplate string `json:"iri_template" yaml:"iri_template"`
}

// PropertyMapping maps one column to a predicate. Transform is a
// "|"-separated chain applied left to right. Entity names the subject the
// triple hangs off; empty means the first entity.
type PropertyMapping struct {
	Predicate   string `json:"predicate" yaml:"predicate"`
	Datatype    string `json:"datatype,omitempty" yaml:"datatype,omitempty"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty"`
	Transform   string `json:"transform,omitempty" yaml:"transform,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	MultiValued bool   `json:"multi_valued,omitempty" yaml:"multi_valued,omitempty"`
	Delimiter   string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	Entity      string `json:"entity,omitempty" yaml:"entity,omitempty"`
}

// Relationship links an entity to another resource through Predicate.
// With an IRITemplate the linked IRI is built from the row's join columns;
// without one a nested record with a deterministic IRI is synthesized.
// Properties are emitted on the linked resource.
type Relationship struct {
	Name        string                     `json:"name" yaml:"name"`
	Predicate   string                     `json:"predicate" yaml:"predicate"`
	Entity      string                     `json:"entity,omitempty" yaml:"entity,omitempty"`
	Class       string                     `json:"class" yaml:"class"`
	IRITemplate string                     `json:"iri_template,omitempty" yaml:"iri_template,omitempty"`
	Properties  map[string]PropertyMapping `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Options tune construction.
type Options struct {
	SkipEmptyValues     bool        `json:"skip_empty_values" yaml:"skip_empty_values"`
	OnError             ErrorPolicy `json:"on_error,omitempty" yaml:"on_error,omitempty"`
	AggregateDuplicates bool        `json:"aggregate_duplicates" yaml:"aggregate_duplicates"`
	ChunkSize           int         `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`
}

// DefaultOptions returns the options used for fields a document omits.
func DefaultOptions() Options {
	return Options{
		SkipEmptyValues:     true,
		OnError:             PolicyReport,
		AggregateDuplicates: true,
		ChunkSize:           1000,
	}
}

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Schema returns the JSON Schema that definition documents must satisfy.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

// Load reads and validates a definition file (YAML or JSON).
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapFatal(fmt.Errorf("%w: %v", errors.ErrConfigValidation, err), "Definition", "Load", "open "+path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a definition document. Options the document
// leaves out keep their DefaultOptions values. All failures are fatal and
// wrap errors.ErrConfigValidation.
func Parse(r io.Reader) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, validationErr(err, "Parse", "read document")
	}
	def := &Definition{Options: DefaultOptions()}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(def); err != nil {
		if err == io.EOF {
			err = fmt.Errorf("empty document")
		}
		return nil, validationErr(err, "Parse", "decode document")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Validate checks the definition against the JSON Schema and then resolves
// it to catch unknown prefixes, bad templates, unknown transforms and
// dangling entity references.
func (d *Definition) Validate() error {
	if err := d.validateSchema(); err != nil {
		return err
	}
	_, err := d.Resolve()
	return err
}

func (d *Definition) validateSchema() error {
	schema, err := compiledSchema()
	if err != nil {
		return errors.WrapFatal(err, "Definition", "Validate", "compile schema")
	}
	doc, err := json.Marshal(d)
	if err != nil {
		return validationErr(err, "Validate", "encode definition")
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return validationErr(err, "Validate", "validate schema")
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return validationErr(fmt.Errorf("%s", strings.Join(msgs, "; ")), "Validate", "validate schema")
}

// Resolved is the expanded, immutable form of a Definition used during
// construction. Columns are ordered by column name.
type Resolved struct {
	BaseIRI       string
	Namespaces    vocabulary.Namespaces
	Entities      []ResolvedEntity
	Columns       []ResolvedColumn
	Relationships []ResolvedRelationship
	Options       Options
}

// ResolvedEntity is an Entity with expanded class IRI and parsed template.
type ResolvedEntity struct {
	Name     string
	Class    string
	Template Template
}

// ResolvedColumn is a PropertyMapping with expanded IRIs. Entity is an index
// into Resolved.Entities.
type ResolvedColumn struct {
	Column      string
	Predicate   string
	Datatype    string
	Language    string
	Transforms  []string
	Required    bool
	MultiValued bool
	Delimiter   string
	Entity      int
}

// ResolvedRelationship is a Relationship with expanded IRIs. A zero
// Template marks a nested record.
type ResolvedRelationship struct {
	Name       string
	Predicate  string
	Class      string
	Entity     int
	Template   Template
	Properties []ResolvedColumn
}

// Nested reports whether the linked resource is synthesized.
func (r ResolvedRelationship) Nested() bool { return r.Template.IsZero() }

// Resolve expands every compact IRI, parses templates and transform chains,
// and binds entity references. Templates that are neither absolute nor
// prefixed are taken relative to BaseIRI.
func (d *Definition) Resolve() (*Resolved, error) {
	ns := vocabulary.DefaultNamespaces().Merge(d.Namespaces)
	res := &Resolved{Namespaces: ns, Options: d.Options}

	base, err := expandBase(ns, d.BaseIRI)
	if err != nil {
		return nil, validationErr(err, "Resolve", "expand base_iri")
	}
	res.BaseIRI = base

	if len(d.Entities) == 0 {
		return nil, validationErr(fmt.Errorf("no entities"), "Resolve", "resolve entities")
	}
	index := make(map[string]int, len(d.Entities))
	for i, e := range d.Entities {
		if _, dup := index[e.Name]; dup {
			return nil, validationErr(fmt.Errorf("duplicate entity %q", e.Name), "Resolve", "resolve entities")
		}
		index[e.Name] = i
		class, err := ns.Expand(e.Class)
		if err != nil {
			return nil, validationErr(fmt.Errorf("entity %q class: %v", e.Name, err), "Resolve", "resolve entities")
		}
		tmpl, err := resolveTemplate(ns, base, e.IRITemplate)
		if err != nil {
			return nil, validationErr(fmt.Errorf("entity %q: %v", e.Name, err), "Resolve", "resolve entities")
		}
		res.Entities = append(res.Entities, ResolvedEntity{Name: e.Name, Class: class, Template: tmpl})
	}

	res.Columns, err = resolveColumns(ns, index, d.Columns)
	if err != nil {
		return nil, validationErr(err, "Resolve", "resolve columns")
	}

	for _, rel := range d.Relationships {
		rr := ResolvedRelationship{Name: rel.Name}
		if rr.Predicate, err = ns.Expand(rel.Predicate); err != nil {
			return nil, validationErr(fmt.Errorf("relationship %q predicate: %v", rel.Name, err), "Resolve", "resolve relationships")
		}
		if rr.Class, err = ns.Expand(rel.Class); err != nil {
			return nil, validationErr(fmt.Errorf("relationship %q class: %v", rel.Name, err), "Resolve", "resolve relationships")
		}
		if rr.Entity, err = entityIndex(index, rel.Entity); err != nil {
			return nil, validationErr(fmt.Errorf("relationship %q: %v", rel.Name, err), "Resolve", "resolve relationships")
		}
		if rel.IRITemplate != "" {
			if rr.Template, err = resolveTemplate(ns, base, rel.IRITemplate); err != nil {
				return nil, validationErr(fmt.Errorf("relationship %q: %v", rel.Name, err), "Resolve", "resolve relationships")
			}
		}
		if rr.Properties, err = resolveColumns(ns, index, rel.Properties); err != nil {
			return nil, validationErr(fmt.Errorf("relationship %q: %v", rel.Name, err), "Resolve", "resolve relationships")
		}
		if rr.Template.IsZero() && len(rr.Properties) == 0 {
			return nil, validationErr(fmt.Errorf("relationship %q needs an iri_template or properties", rel.Name), "Resolve", "resolve relationships")
		}
		res.Relationships = append(res.Relationships, rr)
	}

	switch res.Options.OnError {
	case "":
		res.Options.OnError = PolicyReport
	case PolicyReport, PolicySkip, PolicyFailFast:
	default:
		return nil, validationErr(fmt.Errorf("unknown on_error policy %q", res.Options.OnError), "Resolve", "resolve options")
	}
	if res.Options.ChunkSize <= 0 {
		res.Options.ChunkSize = DefaultOptions().ChunkSize
	}
	return res, nil
}

// ReferencedColumns returns every column the definition reads, sorted.
func (r *Resolved) ReferencedColumns() []string {
	seen := make(map[string]struct{})
	add := func(cols ...string) {
		for _, c := range cols {
			seen[c] = struct{}{}
		}
	}
	for _, e := range r.Entities {
		add(e.Template.Fields()...)
	}
	for _, c := range r.Columns {
		add(c.Column)
	}
	for _, rel := range r.Relationships {
		add(rel.Template.Fields()...)
		for _, c := range rel.Properties {
			add(c.Column)
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// CheckColumns reports the referenced columns missing from header.
func (r *Resolved) CheckColumns(header []string) error {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, c := range r.ReferencedColumns() {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return validationErr(fmt.Errorf("columns not in dataset: %s", strings.Join(missing, ", ")), "Resolve", "check columns")
	}
	return nil
}

func resolveColumns(ns vocabulary.Namespaces, entities map[string]int, cols map[string]PropertyMapping) ([]ResolvedColumn, error) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ResolvedColumn, 0, len(cols))
	for _, name := range names {
		pm := cols[name]
		rc := ResolvedColumn{
			Column:      name,
			Language:    pm.Language,
			Required:    pm.Required,
			MultiValued: pm.MultiValued,
			Delimiter:   pm.Delimiter,
		}
		var err error
		if rc.Predicate, err = ns.Expand(pm.Predicate); err != nil {
			return nil, fmt.Errorf("column %q predicate: %v", name, err)
		}
		if pm.Datatype != "" {
			if rc.Datatype, err = ns.Expand(pm.Datatype); err != nil {
				return nil, fmt.Errorf("column %q datatype: %v", name, err)
			}
		}
		if rc.Datatype != "" && rc.Language != "" {
			return nil, fmt.Errorf("column %q sets both datatype and language", name)
		}
		if rc.Transforms, err = ParseTransforms(pm.Transform); err != nil {
			return nil, fmt.Errorf("column %q: %v", name, err)
		}
		if rc.MultiValued && rc.Delimiter == "" {
			rc.Delimiter = ";"
		}
		if rc.Entity, err = entityIndex(entities, pm.Entity); err != nil {
			return nil, fmt.Errorf("column %q: %v", name, err)
		}
		out = append(out, rc)
	}
	return out, nil
}

func entityIndex(entities map[string]int, name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	i, ok := entities[name]
	if !ok {
		return 0, fmt.Errorf("unknown entity %q", name)
	}
	return i, nil
}

func expandBase(ns vocabulary.Namespaces, base string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("empty base_iri")
	}
	if vocabulary.IsAbsoluteIRI(base) {
		return base, nil
	}
	return ns.Expand(base)
}

// resolveTemplate turns a document template into an absolute one. The
// prefix check looks only at text before the first placeholder.
func resolveTemplate(ns vocabulary.Namespaces, base, raw string) (Template, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Template{}, fmt.Errorf("empty iri_template")
	}
	head := raw
	if i := strings.IndexByte(head, '{'); i >= 0 {
		head = head[:i]
	}
	switch {
	case vocabulary.IsAbsoluteIRI(head):
	default:
		if prefix, local, ok := strings.Cut(raw, ":"); ok && !strings.ContainsAny(prefix, "{/") {
			expanded, known := ns[prefix]
			if !known {
				return Template{}, fmt.Errorf("unknown prefix %q in template %q", prefix, raw)
			}
			raw = expanded + local
		} else {
			raw = base + raw
		}
	}
	tmpl, err := ParseTemplate(raw)
	if err != nil {
		return Template{}, err
	}
	if len(tmpl.Fields()) == 0 {
		return Template{}, fmt.Errorf("template %q has no placeholders", raw)
	}
	return tmpl, nil
}

func validationErr(err error, method, action string) error {
	return errors.WrapFatal(fmt.Errorf("%w: %v", errors.ErrConfigValidation, err), "Definition", method, action)
}
