package triggerfile

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaBytes []byte

// ValidateAgainstSchema validates a trigger population document's YAML bytes
// against the package's embedded JSON schema, the way the teacher validates
// workflow YAML against workflow-schema-v1.json. Unlike the teacher, the
// schema travels with the binary via go:embed rather than a path relative to
// a checked-out repo, since a trigger file can be validated from anywhere.
func ValidateAgainstSchema(data []byte) error {
	return ValidateAgainstCustomSchema(data, schemaBytes)
}

// ValidateAgainstCustomSchema validates data the same way ValidateAgainstSchema
// does, but against a caller-supplied schema instead of the embedded one —
// for hosts whose trigger files carry fields the stock schema doesn't know
// about.
func ValidateAgainstCustomSchema(data, schema []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("triggerfile: empty document")
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("triggerfile: failed to parse YAML for validation: %w", err)
	}

	jsonBytes, err := json.Marshal(convertYAMLMaps(raw))
	if err != nil {
		return fmt.Errorf("triggerfile: failed to convert document to JSON: %w", err)
	}

	var doc any
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return fmt.Errorf("triggerfile: failed to unmarshal document JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("triggerfile: schema validation error: %w", err)
	}

	if !result.Valid() {
		msg := ""
		for i, desc := range result.Errors() {
			if i > 0 {
				msg += "; "
			}
			msg += fmt.Sprintf("%s: %s", desc.Field(), desc.Description())
		}
		return fmt.Errorf("triggerfile: schema validation failed: %s", msg)
	}

	return nil
}

// convertYAMLMaps recursively rewrites the mappings gopkg.in/yaml.v3
// produces (map[string]interface{}, or map[interface{}]interface{} when a
// mapping has a non-string key) into map[string]interface{}, so json.Marshal
// can round-trip values yaml.v3 sometimes represents in a form encoding/json
// rejects. Non-string keys are rendered with fmt.Sprint.
func convertYAMLMaps(v any) any {
	switch val := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, vv := range val {
			m[fmt.Sprint(k)] = convertYAMLMaps(vv)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, vv := range val {
			m[k] = convertYAMLMaps(vv)
		}
		return m
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = convertYAMLMaps(vv)
		}
		return out
	default:
		return val
	}
}
