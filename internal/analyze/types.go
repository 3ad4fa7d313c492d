package analyze

import (
	"context"
	"errors"
)

// ErrNoDocument is returned by callers that require at least one recognized
// document in the analysis result.
var ErrNoDocument = errors.New("no document detected")

// FieldType is the declared type tag of an extracted field.
type FieldType string

const (
	FieldTypeString        FieldType = "string"
	FieldTypeCountryRegion FieldType = "countryRegion"
	FieldTypePhoneNumber   FieldType = "phoneNumber"
	FieldTypeDate          FieldType = "date"
	FieldTypeTime          FieldType = "time"
	FieldTypeInteger       FieldType = "integer"
	FieldTypeNumber        FieldType = "number"
	FieldTypeFloat         FieldType = "float"
	FieldTypeCurrency      FieldType = "currency"
	FieldTypeArray         FieldType = "array"
	FieldTypeObject        FieldType = "object"
	FieldTypeDictionary    FieldType = "dictionary"
	FieldTypeMap           FieldType = "map"
)

// CurrencyValue is the payload of a currency-typed field.
type CurrencyValue struct {
	Amount         *float64 `json:"amount,omitempty"`
	CurrencyCode   string   `json:"currencyCode,omitempty"`
	CurrencySymbol string   `json:"currencySymbol,omitempty"`
}

// FieldNode is one typed field extracted by the analysis service, possibly
// nested. Exactly one value* member is populated for a given type tag;
// Content always carries the raw text the value was read from.
type FieldNode struct {
	Type          FieldType            `json:"type,omitempty"`
	ValueType     FieldType            `json:"valueType,omitempty"`
	Content       string               `json:"content,omitempty"`
	Confidence    float64              `json:"confidence"`
	ValueString   string               `json:"valueString,omitempty"`
	ValueDate     string               `json:"valueDate,omitempty"`
	ValueTime     string               `json:"valueTime,omitempty"`
	ValueInteger  *int64               `json:"valueInteger,omitempty"`
	ValueNumber   *float64             `json:"valueNumber,omitempty"`
	ValueCurrency *CurrencyValue       `json:"valueCurrency,omitempty"`
	ValueArray    []FieldNode          `json:"valueArray,omitempty"`
	ValueObject   map[string]FieldNode `json:"valueObject,omitempty"`
}

// TypeTag returns the node's declared type, preferring the primary tag and
// falling back to the secondary one.
func (f FieldNode) TypeTag() FieldType {
	if f.Type != "" {
		return f.Type
	}
	return f.ValueType
}

// Document is one recognized document within an analysis result.
type Document struct {
	DocType    string               `json:"docType,omitempty"`
	Fields     map[string]FieldNode `json:"fields,omitempty"`
	Confidence float64              `json:"confidence"`
}

// Result is the outcome of an analysis call: zero or more recognized documents.
type Result struct {
	ModelID   string     `json:"modelId,omitempty"`
	Documents []Document `json:"documents,omitempty"`
}

// Analyzer runs a document through the external document-understanding service.
type Analyzer interface {
	Analyze(ctx context.Context, content []byte) (*Result, error)
}
