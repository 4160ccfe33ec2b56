package vocabulary

// Namespace IRIs of the W3C and community vocabularies the engine reads and writes.
//
// References:
// - RDF 1.1 Concepts: https://www.w3.org/TR/rdf11-concepts/
// - RDF Schema: https://www.w3.org/TR/rdf-schema/
// - OWL: https://www.w3.org/TR/owl2-overview/
// - SKOS: https://www.w3.org/TR/skos-reference/
// - XML Schema datatypes: https://www.w3.org/TR/xmlschema11-2/
const (
	RDFNamespace    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace   = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace    = "http://www.w3.org/2002/07/owl#"
	SKOSNamespace   = "http://www.w3.org/2004/02/skos/core#"
	XSDNamespace    = "http://www.w3.org/2001/XMLSchema#"
	DCTNamespace    = "http://purl.org/dc/terms/"
	SchemaNamespace = "https://schema.org/"
)

// RDF
const (
	RdfType     = RDFNamespace + "type"
	RdfProperty = RDFNamespace + "Property"
	RdfLangStr  = RDFNamespace + "langString"
)

// RDF Schema
const (
	RdfsClass         = RDFSNamespace + "Class"
	RdfsSubClassOf    = RDFSNamespace + "subClassOf"
	RdfsSubPropertyOf = RDFSNamespace + "subPropertyOf"
	RdfsDomain        = RDFSNamespace + "domain"
	RdfsRange         = RDFSNamespace + "range"
	RdfsLabel         = RDFSNamespace + "label"
	RdfsComment       = RDFSNamespace + "comment"
	RdfsLiteral       = RDFSNamespace + "Literal"
)

// OWL classes, property types and characteristics
const (
	OwlClass                     = OWLNamespace + "Class"
	OwlThing                     = OWLNamespace + "Thing"
	OwlObjectProperty            = OWLNamespace + "ObjectProperty"
	OwlDatatypeProperty          = OWLNamespace + "DatatypeProperty"
	OwlFunctionalProperty        = OWLNamespace + "FunctionalProperty"
	OwlInverseFunctionalProperty = OWLNamespace + "InverseFunctionalProperty"
	OwlSymmetricProperty         = OWLNamespace + "SymmetricProperty"
	OwlTransitiveProperty        = OWLNamespace + "TransitiveProperty"
	OwlInverseOf                 = OWLNamespace + "inverseOf"
	OwlEquivalentClass           = OWLNamespace + "equivalentClass"
	OwlEquivalentProperty        = OWLNamespace + "equivalentProperty"
	OwlCardinality               = OWLNamespace + "cardinality"
	OwlMinCardinality            = OWLNamespace + "minCardinality"
	OwlMaxCardinality            = OWLNamespace + "maxCardinality"
	OwlSameAs                    = OWLNamespace + "sameAs"
	OwlOnProperty                = OWLNamespace + "onProperty"
	OwlRestriction               = OWLNamespace + "Restriction"
)

// SKOS lexical labels
const (
	// SkosPrefLabel is the preferred lexical label for a resource.
	SkosPrefLabel = SKOSNamespace + "prefLabel"

	// SkosAltLabel is an alternative lexical label, e.g. an abbreviation.
	SkosAltLabel = SKOSNamespace + "altLabel"

	// SkosHiddenLabel is a label not meant for display: misspellings,
	// legacy column names.
	SkosHiddenLabel = SKOSNamespace + "hiddenLabel"

	SkosDefinition = SKOSNamespace + "definition"
)

// XML Schema datatypes
const (
	XsdString             = XSDNamespace + "string"
	XsdNormalizedString   = XSDNamespace + "normalizedString"
	XsdToken              = XSDNamespace + "token"
	XsdBoolean            = XSDNamespace + "boolean"
	XsdDecimal            = XSDNamespace + "decimal"
	XsdFloat              = XSDNamespace + "float"
	XsdDouble             = XSDNamespace + "double"
	XsdInteger            = XSDNamespace + "integer"
	XsdInt                = XSDNamespace + "int"
	XsdLong               = XSDNamespace + "long"
	XsdShort              = XSDNamespace + "short"
	XsdNonNegativeInteger = XSDNamespace + "nonNegativeInteger"
	XsdPositiveInteger    = XSDNamespace + "positiveInteger"
	XsdDate               = XSDNamespace + "date"
	XsdDateTime           = XSDNamespace + "dateTime"
	XsdGYear              = XSDNamespace + "gYear"
	XsdAnyURI             = XSDNamespace + "anyURI"
)

// Dublin Core Metadata Terms
const (
	DcTitle      = DCTNamespace + "title"
	DcIdentifier = DCTNamespace + "identifier"
)
