package mapping

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
)

// Template is an IRI template with {column} placeholders.
type Template struct {
	raw    string
	parts  []string
	fields []string
}

// ParseTemplate parses s. Placeholders are column names in braces; "{{"
// and "}}" are not supported.
func ParseTemplate(s string) (Template, error) {
	t := Template{raw: s}
	rest := s
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if strings.IndexByte(rest, '}') >= 0 {
				return Template{}, fmt.Errorf("template %q: unmatched '}'", s)
			}
			t.parts = append(t.parts, rest)
			break
		}
		if strings.IndexByte(rest[:open], '}') >= 0 {
			return Template{}, fmt.Errorf("template %q: unmatched '}'", s)
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return Template{}, fmt.Errorf("template %q: unterminated placeholder", s)
		}
		field := strings.TrimSpace(rest[open+1 : open+end])
		if field == "" || strings.ContainsAny(field, "{") {
			return Template{}, fmt.Errorf("template %q: empty or nested placeholder", s)
		}
		t.parts = append(t.parts, rest[:open])
		t.fields = append(t.fields, field)
		rest = rest[open+end+1:]
	}
	return t, nil
}

// MustParseTemplate is ParseTemplate that panics on error.
func MustParseTemplate(s string) Template {
	t, err := ParseTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template source.
func (t Template) String() string { return t.raw }

// Fields returns the placeholder names in order of appearance.
func (t Template) Fields() []string {
	return append([]string(nil), t.fields...)
}

// IsZero reports whether the template is empty.
func (t Template) IsZero() bool { return t.raw == "" }

// Expand substitutes row values. Values are trimmed and path-escaped. A
// missing or blank value is an invalid-input error wrapping
// errors.ErrMissingTemplateField.
func (t Template) Expand(row map[string]string) (string, error) {
	var b strings.Builder
	for i, part := range t.parts {
		b.WriteString(part)
		if i >= len(t.fields) {
			continue
		}
		field := t.fields[i]
		value := strings.TrimSpace(row[field])
		if value == "" {
			return "", errors.WrapInvalid(
				fmt.Errorf("%w: %q", errors.ErrMissingTemplateField, field),
				"Template", "Expand", "expand "+t.raw)
		}
		b.WriteString(url.PathEscape(value))
	}
	return b.String(), nil
}
