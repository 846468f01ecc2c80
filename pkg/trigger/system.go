package trigger

import (
	"sort"

	"github.com/dshills/goeta/pkg/condition"
	"github.com/dshills/goeta/pkg/event"
)

// system owns the trigger vector and the subscription multimap: identifier
// to trigger-index to multiplicity. The multiplicity matters because a
// single trigger can reach the same identifier through more than one leaf in
// its condition tree (e.g. two And children both counting the same event);
// removing one leaf's subscription must not remove the other's.
type system[I comparable, E event.Event[I, E], A any] struct {
	triggers      []*Trigger[I, E, A]
	subscriptions map[I]map[int]int
}

func newSystem[I comparable, E event.Event[I, E], A any](
	triggers []*Trigger[I, E, A],
	actionToEvent func(A) E,
) (*system[I, E, A], []A) {
	s := &system[I, E, A]{
		triggers:      triggers,
		subscriptions: make(map[I]map[int]int),
	}

	var initial []A
	for idx, t := range triggers {
		if t.condition.Completed() {
			initial = append(initial, t.takeActions()...)
			continue
		}
		for _, id := range t.condition.Subscriptions() {
			s.subscribeDirect(id, idx)
		}
	}

	for i := 0; i < len(initial); i++ {
		synthetic := actionToEvent(initial[i])
		initial = append(initial, s.dispatchOnce(synthetic)...)
	}
	return s, initial
}

func (s *system[I, E, A]) subscribeDirect(id I, idx int) {
	m, ok := s.subscriptions[id]
	if !ok {
		m = make(map[int]int)
		s.subscriptions[id] = m
	}
	m[idx]++
}

func (s *system[I, E, A]) applyDeltas(idx int, deltas []condition.Update[I]) {
	for _, d := range deltas {
		if d.Subscribe {
			s.subscribeDirect(d.Identifier, idx)
			continue
		}
		m, ok := s.subscriptions[d.Identifier]
		if !ok {
			continue
		}
		if m[idx] > 0 {
			m[idx]--
			if m[idx] == 0 {
				delete(m, idx)
			}
		}
		if len(m) == 0 {
			delete(s.subscriptions, d.Identifier)
		}
	}
}

// snapshotSubscribers returns the distinct trigger indices subscribed to id,
// in ascending order, as a stable snapshot unaffected by subscription
// mutations the dispatch loop makes while iterating it.
func (s *system[I, E, A]) snapshotSubscribers(id I) []int {
	m, ok := s.subscriptions[id]
	if !ok {
		return nil
	}
	indices := make([]int, 0, len(m))
	for idx := range m {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// dispatchOnce executes e against the triggers currently subscribed to its
// identifier, applying each trigger's subscription deltas immediately as
// they're returned (before the next trigger is dispatched, per the
// ordering guarantee in the dispatch design), and returns the actions
// produced. It does not cascade.
func (s *system[I, E, A]) dispatchOnce(e E) []A {
	indices := s.snapshotSubscribers(e.Identifier())
	var produced []A
	for _, idx := range indices {
		t := s.triggers[idx]
		actions, deltas := t.executeEvent(e)
		s.applyDeltas(idx, deltas)
		produced = append(produced, actions...)
	}
	return produced
}

// executeEvent dispatches e and then cascades: every action produced — by e
// itself, or by any action already re-injected as a synthetic event — is
// re-dispatched in turn, breadth-first, until no new actions appear. This is
// a growable slice walked by a moving cursor, not recursion, so an arbitrarily
// long cascade chain cannot overflow the call stack.
func (s *system[I, E, A]) executeEvent(e E, actionToEvent func(A) E) []A {
	actions := s.dispatchOnce(e)
	for i := 0; i < len(actions); i++ {
		synthetic := actionToEvent(actions[i])
		actions = append(actions, s.dispatchOnce(synthetic)...)
	}
	return actions
}
