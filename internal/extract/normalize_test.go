package extract_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/invoice-ingest/internal/analyze"
	"github.com/facturio/invoice-ingest/internal/extract"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestNormalizeField_Scalars(t *testing.T) {
	tests := []struct {
		name string
		node analyze.FieldNode
		want any
	}{
		{
			name: "string",
			node: analyze.FieldNode{Type: analyze.FieldTypeString, ValueString: "INV-42"},
			want: "INV-42",
		},
		{
			name: "country region uses string value",
			node: analyze.FieldNode{Type: analyze.FieldTypeCountryRegion, ValueString: "FR"},
			want: "FR",
		},
		{
			name: "phone number uses string value",
			node: analyze.FieldNode{Type: analyze.FieldTypePhoneNumber, ValueString: "+33 1 23 45 67 89"},
			want: "+33 1 23 45 67 89",
		},
		{
			name: "date renders canonical string",
			node: analyze.FieldNode{Type: analyze.FieldTypeDate, ValueDate: "2024-03-15", Content: "15 mars 2024"},
			want: "2024-03-15",
		},
		{
			name: "time renders canonical string",
			node: analyze.FieldNode{Type: analyze.FieldTypeTime, ValueTime: "14:30:00"},
			want: "14:30:00",
		},
		{
			name: "integer unchanged",
			node: analyze.FieldNode{Type: analyze.FieldTypeInteger, ValueInteger: i64(7)},
			want: int64(7),
		},
		{
			name: "number unchanged",
			node: analyze.FieldNode{Type: analyze.FieldTypeNumber, ValueNumber: f64(12.5)},
			want: 12.5,
		},
		{
			name: "float tag uses number value",
			node: analyze.FieldNode{Type: analyze.FieldTypeFloat, ValueNumber: f64(0.25)},
			want: 0.25,
		},
		{
			name: "secondary type tag is honored",
			node: analyze.FieldNode{ValueType: analyze.FieldTypeString, ValueString: "fallback tag"},
			want: "fallback tag",
		},
		{
			name: "unrecognized tag falls back to raw content",
			node: analyze.FieldNode{Type: "signature", Content: "scrawl"},
			want: "scrawl",
		},
		{
			name: "no tag at all falls back to raw content",
			node: analyze.FieldNode{Content: "raw text"},
			want: "raw text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract.NormalizeField(tt.node))
		})
	}
}

func TestNormalizeField_Currency(t *testing.T) {
	t.Run("amount and code", func(t *testing.T) {
		got := extract.NormalizeField(analyze.FieldNode{
			Type:          analyze.FieldTypeCurrency,
			ValueCurrency: &analyze.CurrencyValue{Amount: f64(12.50), CurrencyCode: "EUR"},
		})
		assert.Equal(t, map[string]any{"amount": 12.50, "currency": "EUR"}, got)
	})

	t.Run("symbol when code is absent", func(t *testing.T) {
		got := extract.NormalizeField(analyze.FieldNode{
			Type:          analyze.FieldTypeCurrency,
			ValueCurrency: &analyze.CurrencyValue{Amount: f64(99), CurrencySymbol: "€"},
		})
		assert.Equal(t, map[string]any{"amount": float64(99), "currency": "€"}, got)
	})

	t.Run("absent payload yields null", func(t *testing.T) {
		got := extract.NormalizeField(analyze.FieldNode{Type: analyze.FieldTypeCurrency})
		assert.Nil(t, got)
	})

	t.Run("malformed payload yields null members", func(t *testing.T) {
		got := extract.NormalizeField(analyze.FieldNode{
			Type:          analyze.FieldTypeCurrency,
			ValueCurrency: &analyze.CurrencyValue{},
		})
		assert.Equal(t, map[string]any{"amount": nil, "currency": nil}, got)
	})
}

func TestNormalizeField_Containers(t *testing.T) {
	t.Run("array recurses in order", func(t *testing.T) {
		got := extract.NormalizeField(analyze.FieldNode{
			Type: analyze.FieldTypeArray,
			ValueArray: []analyze.FieldNode{
				{Type: analyze.FieldTypeString, ValueString: "a"},
				{Type: analyze.FieldTypeNumber, ValueNumber: f64(2)},
			},
		})
		assert.Equal(t, []any{"a", float64(2)}, got)
	})

	t.Run("empty array yields empty sequence", func(t *testing.T) {
		got := extract.NormalizeField(analyze.FieldNode{Type: analyze.FieldTypeArray})
		assert.Equal(t, []any{}, got)
	})

	t.Run("object recurses by name", func(t *testing.T) {
		got := extract.NormalizeField(analyze.FieldNode{
			Type: analyze.FieldTypeObject,
			ValueObject: map[string]analyze.FieldNode{
				"Description": {Type: analyze.FieldTypeString, ValueString: "widget"},
				"Quantity":    {Type: analyze.FieldTypeInteger, ValueInteger: i64(3)},
			},
		})
		assert.Equal(t, map[string]any{"Description": "widget", "Quantity": int64(3)}, got)
	})

	t.Run("dictionary and map tags behave like object", func(t *testing.T) {
		for _, tag := range []analyze.FieldType{analyze.FieldTypeDictionary, analyze.FieldTypeMap} {
			got := extract.NormalizeField(analyze.FieldNode{Type: tag})
			assert.Equal(t, map[string]any{}, got)
		}
	})

	t.Run("deep nesting never fails", func(t *testing.T) {
		node := analyze.FieldNode{Type: analyze.FieldTypeString, ValueString: "leaf"}
		for i := 0; i < 50; i++ {
			node = analyze.FieldNode{Type: analyze.FieldTypeArray, ValueArray: []analyze.FieldNode{node}}
		}
		got := extract.NormalizeField(node)
		require.NotNil(t, got)
	})
}

func TestExtractFields(t *testing.T) {
	doc := analyze.Document{
		Fields: map[string]analyze.FieldNode{
			"NumeroFacture": {Type: analyze.FieldTypeString, ValueString: "INV-42", Confidence: 0.98},
			"MontantTotal":  {Type: analyze.FieldTypeString, ValueString: "1.500,00", Confidence: 0.91},
		},
	}

	fields := extract.ExtractFields(doc)
	require.Len(t, fields, 2)
	assert.Equal(t, "INV-42", fields["NumeroFacture"].Value)
	assert.Equal(t, 0.98, fields["NumeroFacture"].Confidence)
	assert.Equal(t, "1.500,00", fields["MontantTotal"].Value)

	// The archived shape is {value, confidence} per field.
	b, err := json.Marshal(fields["NumeroFacture"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"INV-42","confidence":0.98}`, string(b))
}
