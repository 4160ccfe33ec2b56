package vocabulary

import (
	"fmt"
	"sort"
	"strings"
)

// Namespaces maps prefixes to namespace IRIs and converts between compact
// (prefix:local) and full IRIs.
type Namespaces map[string]string

// DefaultNamespaces returns the standard prefix table.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		"rdf":     RDFNamespace,
		"rdfs":    RDFSNamespace,
		"owl":     OWLNamespace,
		"skos":    SKOSNamespace,
		"xsd":     XSDNamespace,
		"dcterms": DCTNamespace,
		"schema":  SchemaNamespace,
	}
}

// Merge returns a new table with other layered over ns.
func (ns Namespaces) Merge(other Namespaces) Namespaces {
	out := make(Namespaces, len(ns)+len(other))
	for k, v := range ns {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Expand turns a compact IRI into a full IRI. Values that are already
// absolute IRIs are returned unchanged. The "a" shorthand expands to rdf:type.
func (ns Namespaces) Expand(term string) (string, error) {
	term = strings.TrimSpace(term)
	switch {
	case term == "":
		return "", fmt.Errorf("empty term")
	case term == "a":
		return RdfType, nil
	case strings.HasPrefix(term, "<") && strings.HasSuffix(term, ">"):
		return term[1 : len(term)-1], nil
	case IsAbsoluteIRI(term):
		return term, nil
	}

	prefix, local, ok := strings.Cut(term, ":")
	if !ok {
		return "", fmt.Errorf("term %q is neither an IRI nor a compact IRI", term)
	}
	base, known := ns[prefix]
	if !known {
		return "", fmt.Errorf("unknown prefix %q in %q", prefix, term)
	}
	return base + local, nil
}

// Compact returns the shortest prefix:local form of iri, or iri itself when
// no namespace matches.
func (ns Namespaces) Compact(iri string) string {
	prefixes := make([]string, 0, len(ns))
	for p := range ns {
		prefixes = append(prefixes, p)
	}
	// Longest namespace wins; prefix name breaks ties for stable output.
	sort.Slice(prefixes, func(i, j int) bool {
		li, lj := len(ns[prefixes[i]]), len(ns[prefixes[j]])
		if li != lj {
			return li > lj
		}
		return prefixes[i] < prefixes[j]
	})
	for _, p := range prefixes {
		base := ns[p]
		if base != "" && strings.HasPrefix(iri, base) && len(iri) > len(base) {
			return p + ":" + iri[len(base):]
		}
	}
	return iri
}

// IsAbsoluteIRI reports whether s looks like an absolute IRI (scheme "://" or urn:).
func IsAbsoluteIRI(s string) bool {
	if strings.HasPrefix(s, "urn:") {
		return true
	}
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok || scheme == "" || rest == "" {
		return false
	}
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

// LocalName returns the part of an IRI after the last '#', '/' or ':'.
func LocalName(iri string) string {
	if i := strings.LastIndexAny(iri, "#/"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	if i := strings.LastIndex(iri, ":"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	return iri
}
