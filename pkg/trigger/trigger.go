// Package trigger implements the trigger record and the trigger system
// (dispatcher): the vector of compiled triggers, the subscription multimap
// routing events to the triggers that want them, and the cascading action
// fixpoint that lets a fired trigger's actions re-enter as synthetic events.
package trigger

import (
	"github.com/dshills/goeta/pkg/condition"
	"github.com/dshills/goeta/pkg/event"
)

// Trigger pairs a compiled condition with a stable id and a one-shot action
// list. Actions are taken (removed) exactly once, the instant the condition
// completes; reading them afterward yields nothing, which is what prevents a
// host from accidentally re-firing a trigger.
type Trigger[I comparable, E event.Event[I, E], A any] struct {
	id        string
	condition *condition.Compiled[I, E]
	actions   []A
}

// NewTrigger wraps an already-compiled condition tree into a trigger. Most
// callers build a population from uncompiled conditions via CompileTrigger
// instead; NewTrigger is for hosts that compile condition trees themselves
// (e.g. to share a compiled subtree across triggers).
func NewTrigger[I comparable, E event.Event[I, E], A any](id string, c *condition.Compiled[I, E], actions []A) *Trigger[I, E, A] {
	return &Trigger[I, E, A]{id: id, condition: c, actions: actions}
}

// ID returns the trigger's stable identifier.
func (t *Trigger[I, E, A]) ID() string { return t.id }

// Completed reports whether the trigger's root condition has fired.
func (t *Trigger[I, E, A]) Completed() bool { return t.condition.Completed() }

// Progress returns the trigger's root condition's (current, required) progress.
func (t *Trigger[I, E, A]) Progress() (current, required float64) {
	return t.condition.CurrentProgress(), t.condition.RequiredProgress()
}

// executeEvent runs e through the trigger's condition tree. If the condition
// just completed, the trigger's one-shot actions are taken and returned
// alongside the subscription deltas; otherwise no actions are produced.
func (t *Trigger[I, E, A]) executeEvent(e E) ([]A, []condition.Update[I]) {
	deltas, justCompleted := t.condition.ExecuteEvent(e)
	if !justCompleted {
		return nil, deltas
	}
	return t.takeActions(), deltas
}

func (t *Trigger[I, E, A]) takeActions() []A {
	a := t.actions
	t.actions = nil
	return a
}

// UncompiledTrigger is the author-facing form of a trigger: a condition tree
// over authoring event type E, a stable id, and a list of authoring-level
// actions of type UA. CompileTrigger lowers it into a runnable Trigger.
type UncompiledTrigger[E any, UA any] struct {
	ID        string
	Condition condition.Condition[E]
	Actions   []UA
}

// CompileTrigger lowers an UncompiledTrigger into a runnable Trigger,
// applying eventCompiler to every authoring event the condition tree
// references and actionCompiler to every authoring action.
func CompileTrigger[E any, I comparable, C event.Event[I, C], A any, UA any](
	ut UncompiledTrigger[E, UA],
	eventCompiler func(E) C,
	actionCompiler func(UA) A,
) *Trigger[I, C, A] {
	compiled := condition.Compile[E, I, C](ut.Condition, eventCompiler)
	actions := make([]A, len(ut.Actions))
	for i, a := range ut.Actions {
		actions[i] = actionCompiler(a)
	}
	return NewTrigger[I, C, A](ut.ID, compiled, actions)
}
