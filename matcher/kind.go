package matcher

import "fmt"

// MatchKind tags how a match was found.
type MatchKind int

const (
	KindExactLabel MatchKind = iota
	KindSemantic
	KindDatatype
	KindGraphReasoning
	KindStructural
	KindHierarchy
	KindOWLCharacteristic
	KindFuzzy
	KindInherited
)

// AllKinds lists every MatchKind.
func AllKinds() []MatchKind {
	return []MatchKind{
		KindExactLabel, KindSemantic, KindDatatype, KindGraphReasoning, KindStructural,
		KindHierarchy, KindOWLCharacteristic, KindFuzzy, KindInherited,
	}
}

// String returns the serialized name of the kind.
func (k MatchKind) String() string {
	switch k {
	case KindExactLabel:
		return "exact_label"
	case KindSemantic:
		return "semantic_similarity"
	case KindDatatype:
		return "datatype_compatibility"
	case KindGraphReasoning:
		return "graph_reasoning"
	case KindStructural:
		return "structural"
	case KindHierarchy:
		return "hierarchy"
	case KindOWLCharacteristic:
		return "owl_characteristic"
	case KindFuzzy:
		return "fuzzy"
	case KindInherited:
		return "inherited"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Bounds is a closed confidence interval.
type Bounds struct {
	Min float64
	Max float64
}

// Contains reports whether c lies within the bounds.
func (b Bounds) Contains(c float64) bool {
	return c >= b.Min && c <= b.Max
}

// Clamp forces c into the bounds.
func (b Bounds) Clamp(c float64) float64 {
	if c < b.Min {
		return b.Min
	}
	if c > b.Max {
		return b.Max
	}
	return c
}

// Bounds returns the confidence interval results of this kind must fall in.
// The pipeline rejects results outside it.
func (k MatchKind) Bounds() Bounds {
	switch k {
	case KindExactLabel:
		return Bounds{Min: 0.90, Max: 1.00}
	case KindSemantic:
		return Bounds{Min: 0.40, Max: 0.95}
	case KindDatatype, KindGraphReasoning, KindStructural, KindHierarchy, KindInherited:
		return Bounds{Min: 0, Max: 0.95}
	case KindFuzzy:
		return Bounds{Min: 0, Max: 0.85}
	case KindOWLCharacteristic:
		return Bounds{Min: 0, Max: 1.00}
	default:
		return Bounds{Min: 0, Max: 0}
	}
}

// EvidenceCategory groups evidence for explanation.
type EvidenceCategory int

const (
	CategorySemantic EvidenceCategory = iota
	CategoryOntological
	CategoryStructural
)

// AllCategories lists the categories in report order.
func AllCategories() []EvidenceCategory {
	return []EvidenceCategory{CategorySemantic, CategoryOntological, CategoryStructural}
}

// String returns the serialized category name.
func (c EvidenceCategory) String() string {
	switch c {
	case CategorySemantic:
		return "semantic"
	case CategoryOntological:
		return "ontological_validation"
	case CategoryStructural:
		return "structural"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c EvidenceCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Category maps every kind to exactly one evidence category. A kind added
// without a case here panics on first use; TestKindCategoryIsTotal covers
// every declared kind.
func (k MatchKind) Category() EvidenceCategory {
	switch k {
	case KindExactLabel, KindSemantic, KindFuzzy:
		return CategorySemantic
	case KindDatatype, KindGraphReasoning, KindHierarchy, KindOWLCharacteristic, KindInherited:
		return CategoryOntological
	case KindStructural:
		return CategoryStructural
	}
	panic(fmt.Sprintf("matcher: no evidence category for %s", k))
}
