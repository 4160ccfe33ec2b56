package mapping

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
)

// TransformFunc rewrites one cell value.
type TransformFunc func(string) (string, error)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
}

// zonedLayouts carry a UTC offset that must survive formatting.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
}

var transforms = map[string]TransformFunc{
	"trim":      func(s string) (string, error) { return strings.TrimSpace(s), nil },
	"lowercase": func(s string) (string, error) { return strings.ToLower(s), nil },
	"uppercase": func(s string) (string, error) { return strings.ToUpper(s), nil },
	"titlecase": titleCase,
	"collapse_whitespace": func(s string) (string, error) {
		return strings.Join(strings.Fields(s), " "), nil
	},
	"strip_currency": stripCurrency,
	"to_integer":     toInteger,
	"to_decimal":     toDecimal,
	"to_boolean":     toBoolean,
	"to_date":        toDate,
	"to_datetime":    toDateTime,
}

// TransformNames returns the names accepted in a transform chain.
func TransformNames() []string {
	names := make([]string, 0, len(transforms))
	for name := range transforms {
		names = append(names, name)
	}
	return names
}

// ParseTransforms parses a chain such as "trim|to_decimal". An empty
// chain yields no transforms.
func ParseTransforms(chain string) ([]string, error) {
	if strings.TrimSpace(chain) == "" {
		return nil, nil
	}
	var names []string
	for _, name := range strings.Split(chain, "|") {
		name = strings.TrimSpace(name)
		if _, ok := transforms[name]; !ok {
			return nil, fmt.Errorf("%w: %q", errors.ErrUnknownTransform, name)
		}
		names = append(names, name)
	}
	return names, nil
}

// ApplyTransforms runs the named transforms in order. Failures wrap
// errors.ErrDatatypeCoercion.
func ApplyTransforms(value string, names []string) (string, error) {
	for _, name := range names {
		fn, ok := transforms[name]
		if !ok {
			return "", fmt.Errorf("%w: %q", errors.ErrUnknownTransform, name)
		}
		out, err := fn(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s(%q): %v", errors.ErrDatatypeCoercion, name, value, err)
		}
		value = out
	}
	return value, nil
}

func titleCase(s string) (string, error) {
	var b strings.Builder
	upperNext := true
	for _, r := range strings.ToLower(s) {
		if upperNext && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		if unicode.IsSpace(r) || r == '-' {
			upperNext = true
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

func stripCurrency(s string) (string, error) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r), r == '.', r == '-':
			b.WriteRune(r)
		case r == ',', unicode.IsSpace(r), unicode.Is(unicode.Sc, r), r == '(', r == ')':
		default:
			if !unicode.IsLetter(r) {
				return "", fmt.Errorf("unexpected %q", r)
			}
		}
	}
	out := b.String()
	if negative && !strings.HasPrefix(out, "-") {
		out = "-" + out
	}
	return out, nil
}

func toInteger(s string) (string, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", err
	}
	// 2^63 is exactly representable; anything at or beyond it overflows.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return "", fmt.Errorf("%s overflows a 64-bit integer", s)
	}
	if f != math.Trunc(f) {
		return "", fmt.Errorf("%s has a fractional part", s)
	}
	return strconv.FormatInt(int64(f), 10), nil
}

func toDecimal(s string) (string, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", err
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out, nil
}

func toBoolean(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return "true", nil
	case "false", "f", "no", "n", "0":
		return "false", nil
	default:
		return "", fmt.Errorf("not a boolean")
	}
}

func toDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	for _, layout := range append(zonedLayouts, dateTimeLayouts...) {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognised date")
}

func toDateTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.RFC3339Nano), nil
		}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02T15:04:05"), nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02T15:04:05"), nil
		}
	}
	return "", fmt.Errorf("unrecognised datetime")
}
