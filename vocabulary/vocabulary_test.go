package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaces_Expand(t *testing.T) {
	ns := DefaultNamespaces().Merge(Namespaces{"ex": "http://example.org/loans#"})

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"ex:loanNumber", "http://example.org/loans#loanNumber", false},
		{"xsd:decimal", XsdDecimal, false},
		{"a", RdfType, false},
		{"<http://example.org/x>", "http://example.org/x", false},
		{"http://example.org/y", "http://example.org/y", false},
		{"urn:isbn:123", "urn:isbn:123", false},
		{"nope:thing", "", true},
		{"plain", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ns.Expand(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNamespaces_Compact(t *testing.T) {
	ns := DefaultNamespaces().Merge(Namespaces{
		"ex":     "http://example.org/",
		"exloan": "http://example.org/loan/",
	})

	assert.Equal(t, "xsd:string", ns.Compact(XsdString))
	assert.Equal(t, "exloan:amount", ns.Compact("http://example.org/loan/amount"))
	assert.Equal(t, "ex:other", ns.Compact("http://example.org/other"))
	assert.Equal(t, "http://unknown.org/x", ns.Compact("http://unknown.org/x"))
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "loanNumber", LocalName("http://example.org/loans#loanNumber"))
	assert.Equal(t, "Loan", LocalName("http://example.org/Loan"))
	assert.Equal(t, "thing", LocalName("ex:thing"))
	assert.Equal(t, "plain", LocalName("plain"))
}

func TestDatatypeFamilies(t *testing.T) {
	assert.Equal(t, FamilyInteger, FamilyOf(XsdInt))
	assert.Equal(t, FamilyDecimal, FamilyOf(XsdDouble))
	assert.Equal(t, FamilyUnknown, FamilyOf("http://example.org/Loan"))
	assert.True(t, FamilyOf(XsdLong).IsNumeric())
	assert.True(t, FamilyOf(XsdDate).IsTemporal())
	assert.False(t, FamilyOf(XsdString).IsNumeric())
	assert.True(t, IsDatatypeIRI(XsdBoolean))
	assert.Equal(t, XsdDecimal, CanonicalDatatype(FamilyDecimal))
	assert.Equal(t, "datetime", FamilyDateTime.String())
}
