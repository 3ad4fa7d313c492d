package extract

import (
	"github.com/facturio/invoice-ingest/internal/analyze"
)

// FieldEntry is the archived unit for one declared field: its normalized
// value and the analyzer's confidence score.
type FieldEntry struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// NormalizeField projects a typed field node onto a plain value: string,
// number, nested slice, or map. Unrecognized type tags fall back to the
// node's raw content; this is the documented fallback, not a failure path.
func NormalizeField(f analyze.FieldNode) any {
	switch f.TypeTag() {
	case analyze.FieldTypeString, analyze.FieldTypeCountryRegion, analyze.FieldTypePhoneNumber:
		return f.ValueString
	case analyze.FieldTypeDate:
		return f.ValueDate
	case analyze.FieldTypeTime:
		return f.ValueTime
	case analyze.FieldTypeInteger:
		if f.ValueInteger != nil {
			return *f.ValueInteger
		}
		return nil
	case analyze.FieldTypeNumber, analyze.FieldTypeFloat:
		if f.ValueNumber != nil {
			return *f.ValueNumber
		}
		return nil
	case analyze.FieldTypeCurrency:
		return normalizeCurrency(f.ValueCurrency)
	case analyze.FieldTypeArray:
		out := make([]any, 0, len(f.ValueArray))
		for _, el := range f.ValueArray {
			out = append(out, NormalizeField(el))
		}
		return out
	case analyze.FieldTypeObject, analyze.FieldTypeDictionary, analyze.FieldTypeMap:
		out := make(map[string]any, len(f.ValueObject))
		for name, el := range f.ValueObject {
			out[name] = NormalizeField(el)
		}
		return out
	}
	return f.Content
}

func normalizeCurrency(cur *analyze.CurrencyValue) any {
	if cur == nil {
		return nil
	}
	var amount any
	if cur.Amount != nil {
		amount = *cur.Amount
	}
	var code any
	if cur.CurrencyCode != "" {
		code = cur.CurrencyCode
	} else if cur.CurrencySymbol != "" {
		code = cur.CurrencySymbol
	}
	return map[string]any{"amount": amount, "currency": code}
}

// ExtractFields normalizes every declared field of a document into the map
// that is archived and read by the coercer.
func ExtractFields(doc analyze.Document) map[string]FieldEntry {
	out := make(map[string]FieldEntry, len(doc.Fields))
	for name, field := range doc.Fields {
		out[name] = FieldEntry{
			Value:      NormalizeField(field),
			Confidence: field.Confidence,
		}
	}
	return out
}
