package condition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goeta/pkg/condition"
	"github.com/dshills/goeta/pkg/engineerr"
	"github.com/dshills/goeta/pkg/event"
)

// gameEvent is a small harness event type mirroring the kind of host event a
// real trigger population would supply: a kind+instance identifier for
// dispatch, and a numeric payload for the comparison primitives.
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
	switch target {
	case event.Less:
		return clamp01(float64(other.health-1) / float64(e.health)), true
	case event.Greater:
		return clamp01(float64(e.health) / float64(other.health+1)), true
	default:
		a := float64(e.health) / float64(other.health)
		b := float64(other.health) / float64(e.health)
		if a < b {
			return clamp01(a), true
		}
		return clamp01(b), true
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func identity(e gameEvent) gameEvent { return e }

func killed(n int) gameEvent { return gameEvent{kind: "killed", n: n} }
func failed(n int) gameEvent { return gameEvent{kind: "failed", n: n} }
func health(h int) gameEvent { return gameEvent{kind: "health", health: h} }

func TestNoneAlwaysCompleted(t *testing.T) {
	c := condition.Compile[gameEvent, gameID, gameEvent](condition.None[gameEvent](), identity)
	assert.True(t, c.Completed())
	assert.Empty(t, c.Subscriptions())
	assert.Equal(t, 0.0, c.RequiredProgress())
	assert.Equal(t, 0.0, c.CurrentProgress())
}

func TestNoneExecuteEventPanics(t *testing.T) {
	c := condition.Compile[gameEvent, gameID, gameEvent](condition.None[gameEvent](), identity)
	assert.Panics(t, func() { c.ExecuteEvent(killed(0)) })
}

func TestNeverNeverCompletes(t *testing.T) {
	c := condition.Compile[gameEvent, gameID, gameEvent](condition.Never[gameEvent](), identity)
	assert.False(t, c.Completed())
	assert.Empty(t, c.Subscriptions())
	deltas, completed := c.ExecuteEvent(killed(0))
	assert.False(t, completed)
	assert.Empty(t, deltas)
}

func TestEventCountRepeated(t *testing.T) {
	c := condition.Compile[gameEvent, gameID, gameEvent](
		condition.EventCount(killed(0), 2), identity)

	assertProgress(t, c, 0, 2)

	_, completed := c.ExecuteEvent(failed(0))
	assert.False(t, completed)
	assertProgress(t, c, 0, 2)

	_, completed = c.ExecuteEvent(killed(1))
	assert.False(t, completed)
	assertProgress(t, c, 0, 2)

	_, completed = c.ExecuteEvent(killed(0))
	assert.False(t, completed)
	assertProgress(t, c, 1, 2)

	deltas, completed := c.ExecuteEvent(killed(0))
	assert.True(t, completed)
	assertProgress(t, c, 2, 2)
	require.Len(t, deltas, 1)
	assert.False(t, deltas[0].Subscribe)
	assert.Equal(t, killed(0).Identifier(), deltas[0].Identifier)
}

func assertProgress(t *testing.T, c *condition.Compiled[gameID, gameEvent], wantCurrent, wantRequired float64) {
	t.Helper()
	assert.Equal(t, wantRequired, c.RequiredProgress())
	assert.InDelta(t, wantCurrent, c.CurrentProgress(), 1e-9)
}

func TestGreaterOrEqualFires(t *testing.T) {
	c := condition.Compile[gameEvent, gameID, gameEvent](
		condition.GreaterOrEqual(health(10)), identity)

	_, completed := c.ExecuteEvent(health(5))
	assert.False(t, completed)
	assert.InDelta(t, 0.5, c.CurrentProgress(), 1e-9)

	deltas, completed := c.ExecuteEvent(health(10))
	assert.True(t, completed)
	assert.Equal(t, 1.0, c.CurrentProgress())
	require.Len(t, deltas, 1)
	assert.False(t, deltas[0].Subscribe)
}

func TestAndCompletesWhenAllChildrenComplete(t *testing.T) {
	c := condition.Compile[gameEvent, gameID, gameEvent](
		condition.And(
			condition.EventCount(killed(0), 1),
			condition.EventCount(killed(1), 1),
		), identity)

	assert.Equal(t, 2.0, c.RequiredProgress())
	_, completed := c.ExecuteEvent(killed(0))
	assert.False(t, completed)
	assert.Equal(t, 1.0, c.CurrentProgress())

	_, completed = c.ExecuteEvent(killed(1))
	assert.True(t, completed)
	assert.Equal(t, 2.0, c.CurrentProgress())
}

func TestAndOfNonesIsImmediatelyCompleted(t *testing.T) {
	c := condition.Compile[gameEvent, gameID, gameEvent](
		condition.And[gameEvent](condition.None[gameEvent](), condition.None[gameEvent]()), identity)
	assert.True(t, c.Completed())
	assert.Equal(t, 0.0, c.RequiredProgress())
	assert.Equal(t, 0.0, c.CurrentProgress())
}

func TestOrCompletesOnFirstChildAndDropsSiblings(t *testing.T) {
	c := condition.Compile[gameEvent, gameID, gameEvent](
		condition.Or(
			condition.EventCount(killed(0), 2),
			condition.EventCount(killed(1), 1),
		), identity)
	assert.Equal(t, 1.0, c.RequiredProgress()) // min over children

	deltas, completed := c.ExecuteEvent(killed(1))
	assert.True(t, completed)
	assert.Equal(t, 1.0, c.CurrentProgress())
	// the fulfilling child's own unsubscribe plus the still-active killed(0)
	// branch's forced unsubscribe once Or fires
	require.Len(t, deltas, 2)
	for _, d := range deltas {
		assert.False(t, d.Subscribe)
	}
	assert.Empty(t, c.Subscriptions())
}

func TestComposedNoneOrFiresOnce(t *testing.T) {
	inner := func() condition.Condition[gameEvent] {
		return condition.And[gameEvent](condition.None[gameEvent](), condition.None[gameEvent]())
	}
	tree := condition.Or2[gameEvent](condition.Or2[gameEvent](inner(), inner()), inner())
	c := condition.Compile[gameEvent, gameID, gameEvent](tree, identity)
	assert.True(t, c.Completed())
	assert.Equal(t, 0.0, c.RequiredProgress())
	assert.Equal(t, 0.0, c.CurrentProgress())
	assert.Empty(t, c.Subscriptions())
	assert.Panics(t, func() { c.ExecuteEvent(killed(0)) })
}

func TestAnyNCompletesAfterNChildren(t *testing.T) {
	c := condition.Compile[gameEvent, gameID, gameEvent](
		condition.AnyN([]condition.Condition[gameEvent]{
			condition.EventCount(killed(0), 1),
			condition.EventCount(killed(1), 1),
			condition.EventCount(killed(2), 1),
		}, 2), identity)
	assert.Equal(t, 2.0, c.RequiredProgress()) // sum of the 2 smallest requireds (all 1 here)

	_, completed := c.ExecuteEvent(killed(0))
	assert.False(t, completed)

	deltas, completed := c.ExecuteEvent(killed(1))
	assert.True(t, completed)
	assert.Equal(t, 2.0, c.CurrentProgress())
	// the fulfilling child's own unsubscribe plus killed(2)'s forced
	// unsubscribe now that n=2 is satisfied
	require.Len(t, deltas, 2)
}

func TestAnyNZeroCollapsesToNone(t *testing.T) {
	c := condition.Compile[gameEvent, gameID, gameEvent](
		condition.AnyN([]condition.Condition[gameEvent]{condition.EventCount(killed(0), 1)}, 0), identity)
	assert.True(t, c.Completed())
}

func TestSequenceAdvancesInOrder(t *testing.T) {
	c := condition.Compile[gameEvent, gameID, gameEvent](
		condition.Sequence(
			condition.EventCount(failed(3), 1),
			condition.EventCount(killed(3), 1),
		), identity)

	// killed(3) first is ignored: sequence is still gated on failed(3)
	_, completed := c.ExecuteEvent(killed(3))
	assert.False(t, completed)
	assert.Equal(t, 0.0, c.CurrentProgress())

	deltas, completed := c.ExecuteEvent(failed(3))
	assert.False(t, completed)
	require.Len(t, deltas, 2)
	assert.False(t, deltas[0].Subscribe) // failed(3) leaf's own unsubscribe
	assert.True(t, deltas[1].Subscribe)  // advancing subscribes killed(3)
	assert.Equal(t, killed(3).Identifier(), deltas[1].Identifier)
	assert.Equal(t, 1.0, c.CurrentProgress())

	_, completed = c.ExecuteEvent(killed(3))
	assert.True(t, completed)
	assert.Equal(t, 2.0, c.CurrentProgress())
}

func TestSequenceRejectsAlreadyCompletedChild(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		violation, ok := r.(*engineerr.ContractViolation)
		require.True(t, ok)
		assert.NotEmpty(t, violation.Error())
	}()
	condition.Compile[gameEvent, gameID, gameEvent](
		condition.Sequence[gameEvent](condition.None[gameEvent](), condition.EventCount(killed(0), 1)),
		identity)
}

func TestAndCollapsesNestedRuns(t *testing.T) {
	a := condition.EventCount(killed(0), 1)
	b := condition.EventCount(killed(1), 1)
	cLeaf := condition.EventCount(killed(2), 1)

	left := condition.And2[gameEvent](a, b)
	collapsed := condition.And2[gameEvent](left, cLeaf)

	flat, ok := collapsed.(condition.AndType[gameEvent])
	require.True(t, ok)
	assert.Len(t, flat.Children, 3)
}

func TestOrCollapsesNestedRuns(t *testing.T) {
	a := condition.EventCount(killed(0), 1)
	b := condition.EventCount(killed(1), 1)
	cLeaf := condition.EventCount(killed(2), 1)

	right := condition.Or2[gameEvent](b, cLeaf)
	collapsed := condition.Or2[gameEvent](a, right)

	flat, ok := collapsed.(condition.OrType[gameEvent])
	require.True(t, ok)
	assert.Len(t, flat.Children, 3)
}

func TestExprFiresOnProjectedPredicate(t *testing.T) {
	tree := condition.Expr[gameID, gameEvent](gameID{kind: "health"}, `h >= 10`, func(raw any) map[string]any {
		e := raw.(gameEvent)
		return map[string]any{"h": e.health}
	})
	c := condition.Compile[gameEvent, gameID, gameEvent](tree, identity)

	_, completed := c.ExecuteEvent(health(5))
	assert.False(t, completed)

	_, completed = c.ExecuteEvent(health(10))
	assert.True(t, completed)
}
