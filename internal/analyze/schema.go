package analyze

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildResultJSONSchema returns a JSON-Schema (draft 2020-12 subset) describing
// the shape of an analysis result. Field values are intentionally left open:
// the normalizer is total over any well-formed field node, so the schema only
// pins down the envelope we rely on.
func BuildResultJSONSchema() map[string]any {
	fieldProps := map[string]any{
		"type":       map[string]any{"type": "string"},
		"valueType":  map[string]any{"type": "string"},
		"content":    map[string]any{"type": "string"},
		"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"modelId": map[string]any{"type": "string"},
			"documents": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"docType":    map[string]any{"type": "string"},
						"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
						"fields": map[string]any{
							"type": "object",
							"additionalProperties": map[string]any{
								"type":       "object",
								"properties": fieldProps,
							},
						},
					},
				},
			},
		},
	}
}

// ValidateResult validates a raw analysis result against the envelope schema.
func ValidateResult(data []byte) error {
	return ValidateJSONAgainstSchema(BuildResultJSONSchema(), data)
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
