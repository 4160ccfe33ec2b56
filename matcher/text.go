package matcher

import (
	"strings"
	"unicode"

	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// words splits camelCase, snake_case, kebab-case and spaced text into
// lowercase words.
func words(s string) []string {
	var out []string
	var current strings.Builder
	var prev rune
	flush := func() {
		if current.Len() > 0 {
			out = append(out, current.String())
		}
		current.Reset()
	}
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				flush()
			}
			current.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		default:
			flush()
		}
		prev = r
	}
	flush()
	return out
}

// normalize returns the words of s joined by single spaces.
func normalize(s string) string {
	return strings.Join(words(s), " ")
}

// labelText is one label of a property and where it came from.
type labelText struct {
	text   string
	source string
}

// propertyLabels returns all labels of p in preference order, ending with
// its local name.
func propertyLabels(p *ontology.Property) []labelText {
	var out []labelText
	add := func(source string, texts []string) {
		for _, t := range texts {
			out = append(out, labelText{text: t, source: source})
		}
	}
	add("skos:prefLabel", p.Labels.Pref)
	add("rdfs:label", p.Labels.Label)
	add("skos:altLabel", p.Labels.Alt)
	add("skos:hiddenLabel", p.Labels.Hidden)
	out = append(out, labelText{text: vocabulary.LocalName(p.IRI), source: "local name"})
	return out
}

// tokenSimilarity is the Dice coefficient of the word sets of a and b.
func tokenSimilarity(a, b string) float64 {
	wa, wb := wordSet(a), wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	shared := 0
	for w := range wa {
		if wb[w] {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(wa)+len(wb))
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range words(s) {
		set[w] = true
	}
	return set
}

// containsWords reports whether every word of sub appears in s.
func containsWords(s, sub string) bool {
	set := wordSet(s)
	subWords := words(sub)
	if len(subWords) == 0 {
		return false
	}
	for _, w := range subWords {
		if !set[w] {
			return false
		}
	}
	return true
}

// editRatio is 1 - levenshtein(a, b)/max(len(a), len(b)) over runes.
func editRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return 1 - float64(prev[len(rb)])/float64(max(len(ra), len(rb)))
}

// bestLabelSimilarity returns the highest token similarity between column
// and any label of p.
func bestLabelSimilarity(column string, p *ontology.Property) (float64, labelText) {
	var best float64
	var bestLabel labelText
	for _, l := range propertyLabels(p) {
		if s := tokenSimilarity(column, l.text); s > best {
			best, bestLabel = s, l
		}
	}
	return best, bestLabel
}

// singular strips common English plural endings.
func singular(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 4:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "sses"), strings.HasSuffix(s, "xes"), strings.HasSuffix(s, "ches"), strings.HasSuffix(s, "shes"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "ss"):
		return s
	case strings.HasSuffix(s, "s") && len(s) > 3:
		return s[:len(s)-1]
	default:
		return s
	}
}

var keySuffixes = []string{"id", "key", "code", "number", "no", "ref", "fk"}

// ReferencedEntity derives the entity a foreign-key-shaped column points
// at: "customer_id" and "customerId" give "customer", "order_items_ref"
// gives "order item". ok is false when the name has no key suffix.
func ReferencedEntity(column string) (string, bool) {
	w := words(column)
	if len(w) < 2 {
		return "", false
	}
	last := w[len(w)-1]
	for _, suffix := range keySuffixes {
		if last == suffix {
			stem := w[:len(w)-1]
			out := make([]string, len(stem))
			for i, s := range stem {
				out[i] = singular(s)
			}
			return strings.Join(out, " "), true
		}
	}
	return "", false
}

// SameEntityName compares entity names after normalization and
// singularization: "Customers", "customer" and "CUSTOMER" are equal.
func SameEntityName(a, b string) bool {
	wa, wb := words(a), words(b)
	if len(wa) == 0 || len(wa) != len(wb) {
		return false
	}
	for i := range wa {
		if singular(wa[i]) != singular(wb[i]) {
			return false
		}
	}
	return true
}
