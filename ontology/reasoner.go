package ontology

import (
	"fmt"
	"log/slog"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// ReasonerOption configures a Reasoner.
type ReasonerOption func(*Reasoner)

// WithConfig replaces the default calibration.
func WithConfig(cfg Config) ReasonerOption {
	return func(r *Reasoner) {
		r.cfg = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ReasonerOption {
	return func(r *Reasoner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// CandidateProperty is a property applicable to a class.
type CandidateProperty struct {
	Property *Property
	// Inherited is true when the domain is a strict ancestor of the class.
	Inherited bool
	// Distance is the number of subclass edges between the class and the
	// property's domain; 0 for direct and domainless properties.
	Distance int
	// Global marks properties with no declared domain.
	Global bool
}

// PropertyContext describes a property's neighbourhood in the ontology.
type PropertyContext struct {
	Parents         []string `json:"parents"`
	Children        []string `json:"children"`
	Siblings        []string `json:"siblings"`
	DomainAncestors []string `json:"domain_ancestors"`
}

// UniquenessCheck is the outcome of comparing a column against a property
// characteristic.
type UniquenessCheck struct {
	// Applicable is false for characteristics that say nothing about the
	// column's value distribution.
	Applicable bool
	// Adjustment is added to a matcher's confidence. Negative on violation.
	Adjustment float64
	Violation  bool
	Reason     string
}

// Reasoner answers hierarchy and characteristic queries over an Ontology.
// All closures are computed once in NewReasoner; the Reasoner is immutable
// and safe for concurrent use. Queries never fail: unknown IRIs and missing
// edges yield empty answers.
type Reasoner struct {
	ont    *Ontology
	cfg    Config
	logger *slog.Logger

	ancestors map[string][]string
	distances map[string]map[string]int
	byDomain  map[string][]*Property
	global    []*Property
	children  map[string][]string
	inverses  map[string]string
}

// NewReasoner precomputes the closures of ont.
func NewReasoner(ont *Ontology, opts ...ReasonerOption) *Reasoner {
	r := &Reasoner{
		ont:       ont,
		cfg:       DefaultConfig(),
		logger:    slog.Default(),
		ancestors: make(map[string][]string),
		distances: make(map[string]map[string]int),
		byDomain:  make(map[string][]*Property),
		children:  make(map[string][]string),
		inverses:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "reasoner")

	for _, c := range ont.Classes() {
		r.closeClass(c.IRI)
	}
	for _, p := range ont.Properties() {
		if p.Domain == "" {
			r.global = append(r.global, p)
		} else {
			r.byDomain[p.Domain] = append(r.byDomain[p.Domain], p)
		}
		for _, sup := range p.SuperProperties {
			r.children[sup] = appendUnique(r.children[sup], p.IRI)
		}
		if p.InverseOf != "" {
			r.inverses[p.IRI] = p.InverseOf
			if _, ok := r.inverses[p.InverseOf]; !ok {
				r.inverses[p.InverseOf] = p.IRI
			}
		}
	}

	r.logger.Debug("Reasoner initialized",
		"classes", ont.ClassCount(),
		"properties", ont.PropertyCount(),
		"global_properties", len(r.global))
	return r
}

// closeClass computes the ordered ancestor list of iri by breadth-first
// search. Cycles terminate because each class is visited once.
func (r *Reasoner) closeClass(iri string) {
	order := []string{iri}
	dist := map[string]int{iri: 0}
	for i := 0; i < len(order); i++ {
		current := order[i]
		c, ok := r.ont.Class(current)
		if !ok {
			continue
		}
		for _, sup := range c.SuperClasses {
			if _, seen := dist[sup]; seen {
				if sup == iri {
					r.logger.Warn("Subclass cycle detected", "class", iri)
				}
				continue
			}
			dist[sup] = dist[current] + 1
			order = append(order, sup)
		}
	}
	r.ancestors[iri] = order
	r.distances[iri] = dist
}

// Ontology returns the underlying ontology.
func (r *Reasoner) Ontology() *Ontology { return r.ont }

// Config returns the calibration in use.
func (r *Reasoner) Config() Config { return r.cfg }

// Ancestors returns class followed by its superclasses in breadth-first
// order. Undeclared classes have only themselves as ancestor.
func (r *Reasoner) Ancestors(class string) []string {
	if a, ok := r.ancestors[class]; ok {
		return append([]string(nil), a...)
	}
	if class == "" {
		return nil
	}
	return []string{class}
}

// IsSubClassOf reports whether sub equals super or descends from it.
func (r *Reasoner) IsSubClassOf(sub, super string) bool {
	if sub == super {
		return true
	}
	_, ok := r.distances[sub][super]
	return ok
}

// DirectProperties returns properties whose domain is exactly class.
func (r *Reasoner) DirectProperties(class string) []*Property {
	return append([]*Property(nil), r.byDomain[class]...)
}

// InheritedProperties returns every property whose domain is class or one
// of its ancestors, each IRI once, nearest domain first.
func (r *Reasoner) InheritedProperties(class string) []*Property {
	var out []*Property
	for _, c := range r.CandidateProperties(class) {
		if !c.Global {
			out = append(out, c.Property)
		}
	}
	return out
}

// CandidateProperties returns the properties applicable to class: direct,
// inherited and, when configured, domainless ones. Each IRI appears once.
func (r *Reasoner) CandidateProperties(class string) []CandidateProperty {
	seen := make(map[string]bool)
	var out []CandidateProperty
	dist := r.distances[class]
	for _, ancestor := range r.Ancestors(class) {
		for _, p := range r.byDomain[ancestor] {
			if seen[p.IRI] {
				continue
			}
			seen[p.IRI] = true
			d := dist[ancestor]
			out = append(out, CandidateProperty{Property: p, Inherited: d > 0, Distance: d})
		}
	}
	if r.cfg.IncludeGlobalProperties {
		for _, p := range r.global {
			if !seen[p.IRI] {
				seen[p.IRI] = true
				out = append(out, CandidateProperty{Property: p, Global: true})
			}
		}
	}
	return out
}

// SubProperties returns the direct sub-properties of prop.
func (r *Reasoner) SubProperties(prop string) []string {
	return append([]string(nil), r.children[prop]...)
}

// PropertyContext returns the parents, children and siblings of prop and
// the ancestors of its domain. Siblings share a parent; a property without
// parents has the properties of its domain as siblings.
func (r *Reasoner) PropertyContext(prop string) PropertyContext {
	p, ok := r.ont.Property(prop)
	if !ok {
		return PropertyContext{}
	}
	pc := PropertyContext{
		Parents:  append([]string(nil), p.SuperProperties...),
		Children: r.SubProperties(prop),
	}
	siblings := make(map[string]bool)
	if len(p.SuperProperties) > 0 {
		for _, parent := range p.SuperProperties {
			for _, child := range r.children[parent] {
				siblings[child] = true
			}
		}
	} else if p.Domain != "" {
		for _, other := range r.byDomain[p.Domain] {
			siblings[other.IRI] = true
		}
	}
	delete(siblings, prop)
	pc.Siblings = sortedKeys(siblings)
	if p.Domain != "" {
		pc.DomainAncestors = r.Ancestors(p.Domain)
	}
	return pc
}

// Characteristics returns the declared OWL characteristics of prop.
func (r *Reasoner) Characteristics(prop string) Characteristics {
	if p, ok := r.ont.Property(prop); ok {
		return p.Characteristics
	}
	return 0
}

// InverseOf returns the inverse of prop declared in either direction.
func (r *Reasoner) InverseOf(prop string) (string, bool) {
	inv, ok := r.inverses[prop]
	return inv, ok
}

// ValidateTypeCompatibility scores how well a column of the given inferred
// family fits the range of p. An invalid result is a hard rejection.
func (r *Reasoner) ValidateTypeCompatibility(p *Property, family vocabulary.DatatypeFamily) (bool, float64) {
	scores := r.cfg.Compatibility
	if p == nil {
		return false, 0
	}
	if p.IsObject() {
		switch family {
		case vocabulary.FamilyURI:
			return true, scores.ObjectURI
		case vocabulary.FamilyString, vocabulary.FamilyInteger:
			return true, scores.ObjectKey
		case vocabulary.FamilyUnknown:
			return true, scores.Unknown
		default:
			return false, 0
		}
	}
	if p.Range == "" || family == vocabulary.FamilyUnknown {
		return true, scores.Unknown
	}

	rangeFamily := vocabulary.FamilyOf(p.Range)
	switch {
	case rangeFamily == vocabulary.FamilyUnknown:
		return true, scores.Unknown
	case rangeFamily == family:
		return true, scores.Exact
	case rangeFamily == vocabulary.FamilyString:
		return true, scores.StringRange
	case family == vocabulary.FamilyInteger && rangeFamily == vocabulary.FamilyDecimal:
		return true, scores.IntegerToDecimal
	case family == vocabulary.FamilyDecimal && rangeFamily == vocabulary.FamilyInteger:
		return true, scores.DecimalToInteger
	case family.IsTemporal() && rangeFamily.IsTemporal():
		return true, scores.Temporal
	default:
		return false, 0
	}
}

// ValidateUniquenessForCharacteristic compares a column's value
// distribution with what characteristic c requires.
//
// Inverse-functional properties identify their subject, so the column must
// be nearly unique: at or above the threshold the bonus applies, below it
// the penalty is proportional to the shortfall. Functional properties hold a
// single value per subject, so a multi-valued column is a violation.
func (r *Reasoner) ValidateUniquenessForCharacteristic(c Characteristic, profile dataset.ColumnProfile) UniquenessCheck {
	switch c {
	case InverseFunctional:
		ratio := profile.UniquenessRatio
		threshold := r.cfg.UniquenessThreshold
		if ratio >= threshold {
			return UniquenessCheck{
				Applicable: true,
				Adjustment: r.cfg.UniquenessBonus,
				Reason:     fmt.Sprintf("uniqueness %.2f meets inverse-functional threshold %.2f", ratio, threshold),
			}
		}
		return UniquenessCheck{
			Applicable: true,
			Adjustment: -(threshold - ratio) * r.cfg.ViolationPenaltyScale,
			Violation:  true,
			Reason:     fmt.Sprintf("uniqueness %.2f below inverse-functional threshold %.2f", ratio, threshold),
		}
	case Functional:
		if profile.IsMultiValued {
			return UniquenessCheck{
				Applicable: true,
				Adjustment: -r.cfg.FunctionalViolationPenalty,
				Violation:  true,
				Reason:     "multi-valued column matched to functional property",
			}
		}
		return UniquenessCheck{Applicable: true, Reason: "single-valued column fits functional property"}
	default:
		return UniquenessCheck{}
	}
}
