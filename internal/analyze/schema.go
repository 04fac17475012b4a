package analyze

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildReportJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// extraction report, as a generic map. Downstream consumers validate stored
// artifacts against it; tests use it to pin the output contract.
func BuildReportJSONSchema() map[string]any {
	unitInterval := map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
	rect := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"left":   map[string]any{"type": "number"},
			"top":    map[string]any{"type": "number"},
			"width":  map[string]any{"type": "number"},
			"height": map[string]any{"type": "number"},
		},
		"required": []string{"left", "top", "width", "height"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"document": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"source":       map[string]any{"type": "string"},
					"pages":        map[string]any{"type": "integer", "minimum": 0},
					"processed_at": map[string]any{"type": "string"},
				},
				"required": []string{"source", "pages", "processed_at"},
			},
			"key_values": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"key":        map[string]any{"type": "string", "minLength": 1},
						"value":      map[string]any{"type": "string"},
						"confidence": unitInterval,
					},
					"required": []string{"key", "value", "confidence"},
				},
			},
			"tables": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"page": map[string]any{"type": "integer", "minimum": 1},
						"rows": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						},
					},
					"required": []string{"page", "rows"},
				},
			},
			"signatures": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":         map[string]any{"type": "string"},
						"page":       map[string]any{"type": "integer", "minimum": 1},
						"confidence": unitInterval,
						"location":   rect,
						"status":     map[string]any{"type": "string", "enum": []string{"valid", "needs_review", "invalid"}},
					},
					"required": []string{"id", "page", "confidence", "location", "status"},
				},
			},
			"summary": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"key_value_count":  map[string]any{"type": "integer", "minimum": 0},
					"table_count":      map[string]any{"type": "integer", "minimum": 0},
					"signature_count":  map[string]any{"type": "integer", "minimum": 0},
					"valid_signatures": map[string]any{"type": "integer", "minimum": 0},
				},
				"required": []string{"key_value_count", "table_count", "signature_count", "valid_signatures"},
			},
			"human_review": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"required": map[string]any{"type": "boolean"},
					"items":    map[string]any{"type": "array"},
				},
				"required": []string{"required", "items"},
			},
		},
		"required": []string{"document", "key_values", "tables", "signatures", "summary", "human_review"},
	}
}

// ValidateReportJSON validates a serialized report against the schema.
func ValidateReportJSON(data []byte) error {
	b, err := json.Marshal(BuildReportJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("report.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("report.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	return nil
}
