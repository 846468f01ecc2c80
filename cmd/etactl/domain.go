package main

import (
	"encoding/json"

	"github.com/dshills/goeta/pkg/event"
	"github.com/dshills/goeta/pkg/triggerfile"
)

// record is the runtime event/action type cmd/etactl drives the engine with.
// A CLI has to settle on one concrete type to instantiate the generic engine
// against; record is deliberately schema-free (a string kind plus a bag of
// fields) so it can represent whatever a trigger file and an event log
// happen to carry, the way the teacher's workflow engine passes
// map[string]interface{} variables between nodes.
type record struct {
	kind   string
	fields map[string]any
}

func (r record) Identifier() string { return r.kind }

// MarshalJSON exposes kind and fields under those names; record's fields are
// unexported so encoding/json would otherwise round-trip it as "{}" — the
// snapshot store needs a real encoding to make a saved action worth loading
// back.
func (r record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   string         `json:"kind"`
		Fields map[string]any `json:"fields,omitempty"`
	}{Kind: r.kind, Fields: r.fields})
}

func (r *record) UnmarshalJSON(data []byte) error {
	var wire struct {
		Kind   string         `json:"kind"`
		Fields map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.kind = wire.Kind
	r.fields = wire.Fields
	return nil
}

// PartialCompare orders two records sharing a kind by their "value" field, if
// both carry one. Records with no numeric value, or differing kinds, are
// incomparable.
func (r record) PartialCompare(other record) (event.Ordering, bool) {
	if r.kind != other.kind {
		return 0, false
	}
	a, aok := numericField(r.fields, "value")
	b, bok := numericField(other.fields, "value")
	if !aok || !bok {
		return 0, false
	}
	switch {
	case a < b:
		return event.Less, true
	case a > b:
		return event.Greater, true
	default:
		return event.Equal, true
	}
}

// PartialCompareProgress estimates how close r is to satisfying target
// against other, as the ratio of r's value to other's, clamped to [0, 1].
func (r record) PartialCompareProgress(other record, target event.Ordering) (float64, bool) {
	if r.kind != other.kind {
		return 0, false
	}
	a, aok := numericField(r.fields, "value")
	b, bok := numericField(other.fields, "value")
	if !aok || !bok {
		return 0, false
	}
	if b == 0 {
		if a == 0 && target == event.Equal {
			return 1, true
		}
		return 0, true
	}
	ratio := a / b
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio, true
}

func numericField(fields map[string]any, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func decodeRecordEvent(p triggerfile.RawPayload) record {
	return payloadToRecord(p)
}

func decodeRecordAction(p triggerfile.RawPayload) record {
	return payloadToRecord(p)
}

func payloadToRecord(p triggerfile.RawPayload) record {
	kind, _ := p["kind"].(string)
	fields := make(map[string]any, len(p))
	for k, v := range p {
		if k == "kind" {
			continue
		}
		fields[k] = v
	}
	return record{kind: kind, fields: fields}
}

// actionToEvent lets a fired trigger's action re-enter the dispatcher as a
// synthetic event, namespaced under "action:" so it cannot collide with an
// identically-named event kind from the log.
func actionToEvent(a record) record {
	return record{kind: "action:" + a.kind, fields: a.fields}
}

// projectRecord supplies expr-lang variable bindings for an Expr condition:
// the record's kind plus its field bag, flattened into one map.
func projectRecord(v any) map[string]any {
	r, ok := v.(record)
	if !ok {
		return nil
	}
	bindings := make(map[string]any, len(r.fields)+1)
	bindings["kind"] = r.kind
	for k, val := range r.fields {
		bindings[k] = val
	}
	return bindings
}

func identifyRecord(p triggerfile.RawPayload) string {
	kind, _ := p["kind"].(string)
	return kind
}

func recordDecoder() triggerfile.Decoder[record, string, record] {
	return triggerfile.Decoder[record, string, record]{
		Event:      decodeRecordEvent,
		Action:     decodeRecordAction,
		Identifier: identifyRecord,
		Project:    projectRecord,
	}
}
