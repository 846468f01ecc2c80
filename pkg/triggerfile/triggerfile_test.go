package triggerfile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goeta/pkg/event"
	"github.com/dshills/goeta/pkg/trigger"
	"github.com/dshills/goeta/pkg/triggerfile"
)

type sensorEvent struct {
	kind  string
	zone  string
	value float64
}

type sensorID struct {
	kind string
	zone string
}

func (e sensorEvent) Identifier() sensorID { return sensorID{kind: e.kind, zone: e.zone} }

func (e sensorEvent) PartialCompare(other sensorEvent) (event.Ordering, bool) {
	if e.kind != other.kind || e.zone != other.zone {
		return 0, false
	}
	switch {
	case e.value < other.value:
		return event.Less, true
	case e.value > other.value:
		return event.Greater, true
	default:
		return event.Equal, true
	}
}

func (e sensorEvent) PartialCompareProgress(other sensorEvent, target event.Ordering) (float64, bool) {
	if e.kind != other.kind || e.zone != other.zone {
		return 0, false
	}
	if other.value == 0 {
		return 0, true
	}
	ratio := e.value / other.value
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio, true
}

type sensorAction struct {
	kind string
	zone string
}

func decodeSensorEvent(p triggerfile.RawPayload) sensorEvent {
	e := sensorEvent{}
	if v, ok := p["kind"].(string); ok {
		e.kind = v
	}
	if v, ok := p["zone"].(string); ok {
		e.zone = v
	}
	switch v := p["value"].(type) {
	case float64:
		e.value = v
	case int:
		e.value = float64(v)
	}
	return e
}

func decodeSensorAction(p triggerfile.RawPayload) sensorAction {
	a := sensorAction{}
	if v, ok := p["kind"].(string); ok {
		a.kind = v
	}
	if v, ok := p["zone"].(string); ok {
		a.zone = v
	}
	return a
}

const doc = `
version: "1"
triggers:
  - id: overheat
    condition:
      kind: greater_or_equal
      reference:
        kind: temperature
        zone: server-room
        value: 80
    actions:
      - kind: alarm
        zone: server-room
  - id: double-spike
    condition:
      kind: event_count
      event:
        kind: spike
        zone: east
      required: 2
    actions:
      - kind: page
        zone: east
`

func TestParseKeepsAuthorSuppliedIDs(t *testing.T) {
	parsed, err := triggerfile.Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, parsed.Triggers, 2)
	assert.Equal(t, "overheat", parsed.Triggers[0].ID)
	assert.Equal(t, "double-spike", parsed.Triggers[1].ID)
}

func TestParseRejectsEmptyDocument(t *testing.T) {
	_, err := triggerfile.Parse(nil)
	assert.Error(t, err)
}

func TestParseRejectsMissingVersion(t *testing.T) {
	_, err := triggerfile.Parse([]byte("triggers: []"))
	assert.Error(t, err)
}

func TestValidateAgainstSchemaAccepts(t *testing.T) {
	assert.NoError(t, triggerfile.ValidateAgainstSchema([]byte(doc)))
}

func TestValidateAgainstSchemaRejectsUnknownKind(t *testing.T) {
	bad := `
version: "1"
triggers:
  - condition:
      kind: not_a_real_kind
`
	assert.Error(t, triggerfile.ValidateAgainstSchema([]byte(bad)))
}

func TestBuildAndRunTriggerPopulation(t *testing.T) {
	parsed, err := triggerfile.Parse([]byte(doc))
	require.NoError(t, err)

	dec := triggerfile.Decoder[sensorEvent, sensorID, sensorAction]{
		Event:  decodeSensorEvent,
		Action: decodeSensorAction,
	}
	uncompiled, err := triggerfile.Build(parsed, dec)
	require.NoError(t, err)
	require.Len(t, uncompiled, 2)

	identity := func(e sensorEvent) sensorEvent { return e }
	actionToEvent := func(a sensorAction) sensorEvent {
		return sensorEvent{kind: "action:" + a.kind, zone: a.zone}
	}

	d := trigger.Compile[sensorEvent, sensorID, sensorEvent, sensorAction, sensorAction](
		uncompiled, identity, func(a sensorAction) sensorAction { return a }, actionToEvent)

	d.ExecuteEvent(sensorEvent{kind: "temperature", zone: "server-room", value: 85})
	a, ok := d.ConsumeAction()
	require.True(t, ok)
	assert.Equal(t, sensorAction{kind: "alarm", zone: "server-room"}, a)

	d.ExecuteEvent(sensorEvent{kind: "spike", zone: "east"})
	assert.Equal(t, 0, d.PendingActionCount())
	d.ExecuteEvent(sensorEvent{kind: "spike", zone: "east"})
	a, ok = d.ConsumeAction()
	require.True(t, ok)
	assert.Equal(t, sensorAction{kind: "page", zone: "east"}, a)
}

func TestBuildRejectsUnknownConditionKind(t *testing.T) {
	parsed, err := triggerfile.Parse([]byte(`
version: "1"
triggers:
  - condition:
      kind: bogus
`))
	require.NoError(t, err)

	dec := triggerfile.Decoder[sensorEvent, sensorID, sensorAction]{
		Event:  decodeSensorEvent,
		Action: decodeSensorAction,
	}
	_, err = triggerfile.Build(parsed, dec)
	assert.Error(t, err)
}

func TestToYAMLRoundTrips(t *testing.T) {
	parsed, err := triggerfile.Parse([]byte(doc))
	require.NoError(t, err)

	out, err := triggerfile.ToYAML(parsed)
	require.NoError(t, err)

	reparsed, err := triggerfile.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, parsed.Version, reparsed.Version)
	require.Len(t, reparsed.Triggers, 2)
}
