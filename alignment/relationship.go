package alignment

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/matcher"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// ValueOverlap compares the distinct values of a candidate foreign key with
// those of a candidate primary key.
type ValueOverlap struct {
	SourceDistinct int     `json:"source_distinct"`
	TargetDistinct int     `json:"target_distinct"`
	MatchedCount   int     `json:"matched_count"`
	MatchRate      float64 `json:"match_rate"`
}

// ComputeOverlap returns how many distinct non-empty source values occur in
// target. MatchRate is matched/source distinct, 0 when source is empty.
func ComputeOverlap(source, target []string) ValueOverlap {
	src := distinct(source)
	tgt := distinct(target)
	o := ValueOverlap{SourceDistinct: len(src), TargetDistinct: len(tgt)}
	for v := range src {
		if _, ok := tgt[v]; ok {
			o.MatchedCount++
		}
	}
	if o.SourceDistinct > 0 {
		o.MatchRate = math.Round(float64(o.MatchedCount)/float64(o.SourceDistinct)*10000) / 10000
	}
	return o
}

func distinct(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}

// link is an accepted relationship ready to become a mapping.Relationship.
type link struct {
	predicate string
	class     string
	template  string
}

// resolver validates foreign-key-shaped columns against related record sets.
type resolver struct {
	ont        *ontology.Ontology
	candidates []ontology.CandidateProperty
	related    []dataset.RecordSet
	threshold  float64
}

// shouldResolve reports whether column deserves a relationship attempt.
func shouldResolve(column dataset.ColumnProfile, winner *matcher.MatchResult) bool {
	if winner != nil && winner.Property.IsObject() {
		return true
	}
	if column.IsForeignKey {
		return true
	}
	_, ok := matcher.ReferencedEntity(column.Name)
	return ok && !column.IsIdentifier
}

// resolve returns the decision for column and, when accepted, the link.
func (r *resolver) resolve(source dataset.RecordSet, column dataset.ColumnProfile, winner *matcher.MatchResult) (RelationshipDecision, *link) {
	d := RelationshipDecision{Column: column.Name}

	entity, ok := matcher.ReferencedEntity(column.Name)
	if !ok && winner != nil && winner.Property.IsObject() && winner.Property.Range != "" {
		entity, ok = vocabulary.LocalName(winner.Property.Range), true
	}
	if !ok {
		d.Reason = "column name does not reference an entity"
		return d, nil
	}
	d.ReferencedEntity = entity

	target, found := r.recordSet(entity)
	if !found {
		d.Reason = fmt.Sprintf("no related record set named %q", entity)
		return d, nil
	}
	d.TargetDataset = target.Name

	pk, ok := target.PrimaryKeyCandidate()
	if !ok {
		d.Reason = fmt.Sprintf("record set %q has no primary key candidate", target.Name)
		return d, nil
	}
	d.TargetColumn = pk.Name

	d.Overlap = ComputeOverlap(source.Values[column.Name], target.Values[pk.Name])
	if d.Overlap.MatchRate < r.threshold {
		d.Reason = fmt.Sprintf("value overlap %.0f%% below %.0f%%", d.Overlap.MatchRate*100, r.threshold*100)
		return d, nil
	}

	prop := r.linkingProperty(entity, winner)
	if prop == nil {
		d.Reason = fmt.Sprintf("no object property links to %q", entity)
		return d, nil
	}
	d.Predicate = prop.IRI

	class := prop.Range
	if class == "" {
		class = r.classNamed(entity)
	}
	if class == "" {
		d.Reason = fmt.Sprintf("no class named %q", entity)
		return d, nil
	}
	d.TargetClass = class
	d.Accepted = true
	d.Reason = fmt.Sprintf("value overlap %.0f%% with %s.%s", d.Overlap.MatchRate*100, target.Name, pk.Name)

	return d, &link{
		predicate: prop.IRI,
		class:     class,
		template:  entitySlug(class) + "/{" + column.Name + "}",
	}
}

func (r *resolver) recordSet(entity string) (dataset.RecordSet, bool) {
	for _, rs := range r.related {
		if matcher.SameEntityName(rs.Name, entity) {
			return rs, true
		}
	}
	return dataset.RecordSet{}, false
}

// linkingProperty prefers the winning object property, then any candidate
// object property whose range class is named like entity.
func (r *resolver) linkingProperty(entity string, winner *matcher.MatchResult) *ontology.Property {
	if winner != nil && winner.Property.IsObject() {
		return winner.Property
	}
	for _, c := range r.candidates {
		p := c.Property
		if p.IsObject() && p.Range != "" && r.classMatches(p.Range, entity) {
			return p
		}
	}
	return nil
}

func (r *resolver) classNamed(entity string) string {
	for _, c := range r.ont.Classes() {
		if r.classMatches(c.IRI, entity) {
			return c.IRI
		}
	}
	return ""
}

func (r *resolver) classMatches(iri, entity string) bool {
	if matcher.SameEntityName(vocabulary.LocalName(iri), entity) {
		return true
	}
	if c, ok := r.ont.Class(iri); ok {
		for _, l := range c.Labels.All() {
			if matcher.SameEntityName(l, entity) {
				return true
			}
		}
	}
	return false
}

// entitySlug turns a class IRI into the path segment used by generated
// subject templates: "MortgageLoan" becomes "mortgage_loan".
func entitySlug(class string) string {
	name := vocabulary.LocalName(class)
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 && !strings.HasSuffix(b.String(), "_") {
				prev := rune(name[i-1])
				if prev >= 'a' && prev <= 'z' || prev >= '0' && prev <= '9' {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		}
	}
	s := strings.TrimSuffix(b.String(), "_")
	if s == "" {
		return "resource"
	}
	return s
}
