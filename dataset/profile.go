package dataset

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// ColumnProfile describes one column. Profiles are built once per dataset
// and treated as read-only afterwards.
type ColumnProfile struct {
	Name            string                    `json:"name" yaml:"name"`
	InferredType    vocabulary.DatatypeFamily `json:"inferred_type" yaml:"inferred_type"`
	SampleValues    []string                  `json:"sample_values,omitempty" yaml:"sample_values,omitempty"`
	UniquenessRatio float64                   `json:"uniqueness_ratio" yaml:"uniqueness_ratio"`
	NullRatio       float64                   `json:"null_ratio" yaml:"null_ratio"`
	IsIdentifier    bool                      `json:"is_identifier" yaml:"is_identifier"`
	IsForeignKey    bool                      `json:"is_foreign_key" yaml:"is_foreign_key"`
	IsMultiValued   bool                      `json:"is_multi_valued" yaml:"is_multi_valued"`
	Delimiter       string                    `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
}

// ProfileOptions tunes ProfileColumn.
type ProfileOptions struct {
	// SampleSize bounds SampleValues (default 20).
	SampleSize int
	// IdentifierUniqueness is the uniqueness ratio at or above which a column
	// named like an identifier is flagged IsIdentifier (default 0.95).
	IdentifierUniqueness float64
	// MultiValueDelimiters are checked in order for multi-valued cells
	// (default ";" and "|").
	MultiValueDelimiters []string
}

// DefaultProfileOptions returns the defaults used by ProfileColumn.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{
		SampleSize:           20,
		IdentifierUniqueness: 0.95,
		MultiValueDelimiters: []string{";", "|"},
	}
}

var (
	integerPattern  = regexp.MustCompile(`^[+-]?\d+$`)
	decimalPattern  = regexp.MustCompile(`^[+-]?(\d+\.\d*|\.\d+|\d+)([eE][+-]?\d+)?$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	idSuffixPattern = regexp.MustCompile(`^(?:id|ID|Id)$|_(?:id|ID|key|code|number|no)$|[a-z0-9]Id$`)
)

// ProfileColumn computes a ColumnProfile from raw string values. Empty and
// whitespace-only cells count as nulls.
func ProfileColumn(name string, values []string, opts ProfileOptions) ColumnProfile {
	if opts.SampleSize <= 0 {
		opts.SampleSize = 20
	}
	if opts.IdentifierUniqueness == 0 {
		opts.IdentifierUniqueness = 0.95
	}

	p := ColumnProfile{Name: name}
	if len(values) == 0 {
		return p
	}

	distinct := make(map[string]struct{}, len(values))
	var nonNull []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonNull = append(nonNull, v)
		if _, seen := distinct[v]; !seen && len(p.SampleValues) < opts.SampleSize {
			p.SampleValues = append(p.SampleValues, v)
		}
		distinct[v] = struct{}{}
	}

	p.NullRatio = 1 - float64(len(nonNull))/float64(len(values))
	if len(nonNull) == 0 {
		return p
	}
	p.UniquenessRatio = round4(float64(len(distinct)) / float64(len(nonNull)))
	p.InferredType = InferType(nonNull)

	for _, d := range opts.MultiValueDelimiters {
		if multiValued(nonNull, d) {
			p.IsMultiValued = true
			p.Delimiter = d
			break
		}
	}

	idShaped := idSuffixPattern.MatchString(name)
	p.IsIdentifier = idShaped && p.UniquenessRatio >= opts.IdentifierUniqueness
	p.IsForeignKey = idShaped && !p.IsIdentifier && !strings.EqualFold(name, "id")

	return p
}

// ComputeUniqueness returns distinct/non-empty for values, 0 when all are empty.
func ComputeUniqueness(values []string) float64 {
	distinct := make(map[string]struct{}, len(values))
	n := 0
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		n++
		distinct[v] = struct{}{}
	}
	if n == 0 {
		return 0
	}
	return round4(float64(len(distinct)) / float64(n))
}

// InferType returns the narrowest datatype family every value fits.
func InferType(values []string) vocabulary.DatatypeFamily {
	if len(values) == 0 {
		return vocabulary.FamilyUnknown
	}

	candidates := []struct {
		family vocabulary.DatatypeFamily
		fits   func(string) bool
	}{
		{vocabulary.FamilyBoolean, isBoolean},
		{vocabulary.FamilyInteger, integerPattern.MatchString},
		{vocabulary.FamilyDecimal, decimalPattern.MatchString},
		{vocabulary.FamilyDate, isDate},
		{vocabulary.FamilyDateTime, isDateTime},
		{vocabulary.FamilyURI, isURI},
	}

	for _, c := range candidates {
		all := true
		for _, v := range values {
			if !c.fits(v) {
				all = false
				break
			}
		}
		if all {
			return c.family
		}
	}
	return vocabulary.FamilyString
}

func isBoolean(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false", "yes", "no":
		return true
	}
	return false
}

func isDate(v string) bool {
	if !datePattern.MatchString(v) {
		return false
	}
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}

func isDateTime(v string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func isURI(v string) bool {
	u, err := url.Parse(v)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

func multiValued(values []string, delim string) bool {
	hits := 0
	for _, v := range values {
		if strings.Contains(v, delim) {
			hits++
		}
	}
	// A stray delimiter in one free-text cell does not make a list column.
	return hits > 0 && float64(hits)/float64(len(values)) >= 0.2
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

// ParseNumber parses an integer or decimal lexical value.
func ParseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f, err == nil
}
