package vocabulary

// DatatypeFamily groups XSD datatypes whose lexical values are interchangeable
// for compatibility checks.
type DatatypeFamily int

const (
	FamilyUnknown DatatypeFamily = iota
	FamilyString
	FamilyInteger
	FamilyDecimal
	FamilyBoolean
	FamilyDate
	FamilyDateTime
	FamilyURI
)

// String returns the family name.
func (f DatatypeFamily) String() string {
	switch f {
	case FamilyString:
		return "string"
	case FamilyInteger:
		return "integer"
	case FamilyDecimal:
		return "decimal"
	case FamilyBoolean:
		return "boolean"
	case FamilyDate:
		return "date"
	case FamilyDateTime:
		return "datetime"
	case FamilyURI:
		return "uri"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether the family is integer or decimal.
func (f DatatypeFamily) IsNumeric() bool {
	return f == FamilyInteger || f == FamilyDecimal
}

// IsTemporal reports whether the family is date or datetime.
func (f DatatypeFamily) IsTemporal() bool {
	return f == FamilyDate || f == FamilyDateTime
}

var datatypeFamilies = map[string]DatatypeFamily{
	XsdString:             FamilyString,
	XsdNormalizedString:   FamilyString,
	XsdToken:              FamilyString,
	RdfLangStr:            FamilyString,
	RdfsLiteral:           FamilyString,
	XsdInteger:            FamilyInteger,
	XsdInt:                FamilyInteger,
	XsdLong:               FamilyInteger,
	XsdShort:              FamilyInteger,
	XsdNonNegativeInteger: FamilyInteger,
	XsdPositiveInteger:    FamilyInteger,
	XsdGYear:              FamilyInteger,
	XsdDecimal:            FamilyDecimal,
	XsdFloat:              FamilyDecimal,
	XsdDouble:             FamilyDecimal,
	XsdBoolean:            FamilyBoolean,
	XsdDate:               FamilyDate,
	XsdDateTime:           FamilyDateTime,
	XsdAnyURI:             FamilyURI,
}

// FamilyOf returns the family of a datatype IRI, FamilyUnknown for
// anything that is not a recognised literal datatype.
func FamilyOf(datatype string) DatatypeFamily {
	return datatypeFamilies[datatype]
}

// IsDatatypeIRI reports whether iri is a recognised literal datatype.
func IsDatatypeIRI(iri string) bool {
	_, ok := datatypeFamilies[iri]
	return ok
}

// CanonicalDatatype returns the representative XSD datatype for a family.
func CanonicalDatatype(f DatatypeFamily) string {
	switch f {
	case FamilyInteger:
		return XsdInteger
	case FamilyDecimal:
		return XsdDecimal
	case FamilyBoolean:
		return XsdBoolean
	case FamilyDate:
		return XsdDate
	case FamilyDateTime:
		return XsdDateTime
	case FamilyURI:
		return XsdAnyURI
	default:
		return XsdString
	}
}
