package trigger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goeta/pkg/condition"
	"github.com/dshills/goeta/pkg/event"
	"github.com/dshills/goeta/pkg/trigger"
)

// gameEvent/gameAction mirror the kind of small reactive-game host the
// condition algebra targets: quests and monsters identified by a kind+index
// pair, with a numeric health payload the comparison primitives use.
type gameEvent struct {
	kind   string
	n      int
	health int
}

type gameID struct {
	kind string
	n    int
}

func (e gameEvent) Identifier() gameID { return gameID{kind: e.kind, n: e.n} }

func (e gameEvent) PartialCompare(other gameEvent) (event.Ordering, bool) {
	if e.kind != other.kind || e.n != other.n {
		return 0, false
	}
	switch {
	case e.health < other.health:
		return event.Less, true
	case e.health > other.health:
		return event.Greater, true
	default:
		return event.Equal, true
	}
}

func (e gameEvent) PartialCompareProgress(other gameEvent, target event.Ordering) (float64, bool) {
	if e.kind != other.kind || e.n != other.n {
		return 0, false
	}
	if target == event.Equal {
		a := float64(e.health) / float64(other.health)
		b := float64(other.health) / float64(e.health)
		if a < b {
			return a, true
		}
		return b, true
	}
	return 0, true
}

type gameAction struct {
	kind string
	n    int
}

func identity(e gameEvent) gameEvent { return e }

func actionToEvent(a gameAction) gameEvent {
	return gameEvent{kind: "action:" + a.kind, n: a.n}
}

func killed(n int) gameEvent       { return gameEvent{kind: "killed", n: n} }
func failed(n int) gameEvent       { return gameEvent{kind: "failed", n: n} }
func health(n, h int) gameEvent    { return gameEvent{kind: "health", n: n, health: h} }
func activate(n int) gameAction    { return gameAction{kind: "activate", n: n} }
func complete(n int) gameAction    { return gameAction{kind: "complete", n: n} }
func actionEvent(a gameAction) gameEvent { return actionToEvent(a) }

func buildTrigger(id string, c condition.Condition[gameEvent], actions ...gameAction) *trigger.Trigger[gameID, gameEvent, gameAction] {
	return trigger.CompileTrigger[gameEvent, gameID, gameEvent, gameAction, gameAction](
		trigger.UncompiledTrigger[gameEvent, gameAction]{ID: id, Condition: c, Actions: actions},
		identity, func(a gameAction) gameAction { return a })
}

// S1 — Immediate fire.
func TestImmediateFire(t *testing.T) {
	t0 := buildTrigger("t0", condition.None[gameEvent](), activate(0))
	d := trigger.New([]*trigger.Trigger[gameID, gameEvent, gameAction]{t0}, actionToEvent)

	a, ok := d.ConsumeAction()
	require.True(t, ok)
	assert.Equal(t, activate(0), a)

	_, ok = d.ConsumeAction()
	assert.False(t, ok)
}

// S2 — Count-based.
func TestCountBased(t *testing.T) {
	t0 := buildTrigger("t0", condition.EventCount(killed(0), 2), complete(0))
	d := trigger.New([]*trigger.Trigger[gameID, gameEvent, gameAction]{t0}, actionToEvent)

	d.ExecuteEvent(failed(0))
	assert.Equal(t, 0, d.PendingActionCount())
	cur, req, _ := d.Progress(0)
	assert.Equal(t, 0.0, cur)
	assert.Equal(t, 2.0, req)

	d.ExecuteEvent(killed(1))
	assert.Equal(t, 0, d.PendingActionCount())

	d.ExecuteEvent(killed(0))
	assert.Equal(t, 0, d.PendingActionCount())
	cur, _, _ = d.Progress(0)
	assert.Equal(t, 1.0, cur)

	d.ExecuteEvent(killed(0))
	a, ok := d.ConsumeAction()
	require.True(t, ok)
	assert.Equal(t, complete(0), a)
	cur, _, _ = d.Progress(0)
	assert.Equal(t, 2.0, cur)
}

// S3 — Cascade.
func TestCascade(t *testing.T) {
	t0 := buildTrigger("t0", condition.None[gameEvent](), activate(0))
	t1 := buildTrigger("t1", condition.EventCount(actionEvent(activate(0)), 1), complete(0))

	d := trigger.New([]*trigger.Trigger[gameID, gameEvent, gameAction]{t0, t1}, actionToEvent)

	actions := d.ConsumeAllActions()
	require.Len(t, actions, 2)
	assert.Equal(t, activate(0), actions[0])
	assert.Equal(t, complete(0), actions[1])
}

// S4 — Sequence.
func TestSequenceTrigger(t *testing.T) {
	t0 := buildTrigger("t0",
		condition.Sequence(
			condition.EventCount(failed(3), 1),
			condition.EventCount(killed(3), 1),
		), gameAction{kind: "deactivate", n: 3})
	d := trigger.New([]*trigger.Trigger[gameID, gameEvent, gameAction]{t0}, actionToEvent)

	d.ExecuteEvent(killed(3))
	assert.Equal(t, 0, d.PendingActionCount())

	d.ExecuteEvent(failed(3))
	assert.Equal(t, 0, d.PendingActionCount())

	d.ExecuteEvent(killed(3))
	a, ok := d.ConsumeAction()
	require.True(t, ok)
	assert.Equal(t, gameAction{kind: "deactivate", n: 3}, a)
}

// S5 — Comparison.
func TestComparisonTrigger(t *testing.T) {
	t0 := buildTrigger("t0", condition.GreaterOrEqual(health(0, 10)), activate(0))
	d := trigger.New([]*trigger.Trigger[gameID, gameEvent, gameAction]{t0}, actionToEvent)

	d.ExecuteEvent(health(0, 5))
	cur, _, _ := d.Progress(0)
	assert.InDelta(t, 0.5, cur, 1e-9)
	assert.Equal(t, 0, d.PendingActionCount())

	d.ExecuteEvent(health(0, 10))
	a, ok := d.ConsumeAction()
	require.True(t, ok)
	assert.Equal(t, activate(0), a)
}

// S6 — Composed None fires once.
func TestComposedNoneFiresOnce(t *testing.T) {
	inner := func() condition.Condition[gameEvent] {
		return condition.And[gameEvent](condition.None[gameEvent](), condition.None[gameEvent]())
	}
	tree := condition.Or2[gameEvent](condition.Or2[gameEvent](inner(), inner()), inner())
	t0 := buildTrigger("t0", tree, gameAction{kind: "a", n: 0})
	d := trigger.New([]*trigger.Trigger[gameID, gameEvent, gameAction]{t0}, actionToEvent)

	a, ok := d.ConsumeAction()
	require.True(t, ok)
	assert.Equal(t, gameAction{kind: "a", n: 0}, a)

	// the trigger owns no subscriptions anymore; feeding any event must not
	// produce further actions or panic.
	d.ExecuteEvent(killed(0))
	assert.Equal(t, 0, d.PendingActionCount())
}

func TestProgressOutOfRangeHandle(t *testing.T) {
	d := trigger.New([]*trigger.Trigger[gameID, gameEvent, gameAction]{}, actionToEvent)
	_, _, ok := d.Progress(trigger.TriggerHandle(5))
	assert.False(t, ok)
}

func TestByIDResolvesHandle(t *testing.T) {
	t0 := buildTrigger("quest-0", condition.EventCount(killed(0), 1), complete(0))
	d := trigger.New([]*trigger.Trigger[gameID, gameEvent, gameAction]{t0}, actionToEvent)

	handle, ok := d.ByID("quest-0")
	require.True(t, ok)
	assert.Equal(t, trigger.TriggerHandle(0), handle)

	_, ok = d.ByID("missing")
	assert.False(t, ok)
}
