// Package triggerfile loads a population of triggers from a YAML document,
// the way the teacher's pkg/workflow package loads a workflow from YAML:
// parse into an intermediate representation, validate it against a JSON
// schema, then lower it into the engine's own types. Because pkg/condition
// and pkg/trigger are generic over a host's event/identifier/action types,
// this package works over an untyped map[string]any representation of event
// payloads and leaves the final decode into concrete host types to
// caller-supplied functions (the Event/Action/Identifier/Project fields of
// the Decoder passed to Build).
package triggerfile

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dshills/goeta/pkg/validation"
)

// Document is the top-level trigger population file.
type Document struct {
	Version  string       `yaml:"version"`
	Triggers []RawTrigger `yaml:"triggers"`
}

// RawTrigger is one trigger definition before its condition tree and actions
// are lowered into concrete host types.
type RawTrigger struct {
	ID        string        `yaml:"id,omitempty"`
	Condition RawCondition  `yaml:"condition"`
	Actions   []RawPayload  `yaml:"actions,omitempty"`
}

// RawPayload is an arbitrary host-defined payload (an action, or the fields
// of a sample event) kept untyped until Decoder.Event/Decoder.Action lowers it.
type RawPayload map[string]any

// RawCondition is the YAML form of a condition.Condition[E] tree. Kind
// selects which fields apply; the comments on the field groups below give
// the mapping.
type RawCondition struct {
	Kind string `yaml:"kind"`

	// event_count
	Event    RawPayload `yaml:"event,omitempty"`
	Required int        `yaml:"required,omitempty"`

	// greater / greater_or_equal / equal / less_or_equal / less
	Reference RawPayload `yaml:"reference,omitempty"`

	// sequence / and / or / any_n
	Children []RawCondition `yaml:"children,omitempty"`
	N        int            `yaml:"n,omitempty"`

	// expr
	Identifier RawPayload `yaml:"identifier,omitempty"`
	Expression string     `yaml:"expression,omitempty"`
}

// Parse parses a trigger population document from YAML bytes, assigning a
// generated ID to any trigger whose id field is empty.
func Parse(data []byte) (Document, error) {
	if len(data) == 0 {
		return Document{}, fmt.Errorf("triggerfile: empty document")
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("triggerfile: failed to parse YAML: %w", err)
	}

	if doc.Version == "" {
		return Document{}, fmt.Errorf("triggerfile: missing required field: version")
	}

	for i := range doc.Triggers {
		if doc.Triggers[i].ID == "" {
			doc.Triggers[i].ID = uuid.NewString()
			continue
		}
		if err := validation.ValidateIdentifier(doc.Triggers[i].ID); err != nil {
			return Document{}, fmt.Errorf("triggerfile: trigger %d: %w", i, err)
		}
	}

	return doc, nil
}

// ParseFile reads path and parses it as a trigger population document. path
// must already be validated by the caller (validation.ResolveTriggerPath) if
// it comes from untrusted input; this function does no containment checks
// of its own.
func ParseFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("triggerfile: failed to read file: %w", err)
	}
	return Parse(data)
}

// ToYAML serializes doc back to YAML, e.g. for `etactl init` to scaffold a
// starting file.
func ToYAML(doc Document) ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("triggerfile: failed to marshal YAML: %w", err)
	}
	return out, nil
}
