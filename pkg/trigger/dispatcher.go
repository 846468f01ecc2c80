package trigger

import "github.com/dshills/goeta/pkg/event"

// TriggerHandle is an opaque, stable reference to a trigger's position in a
// Dispatcher's trigger vector, valid for the lifetime of that Dispatcher.
type TriggerHandle int

// Dispatcher owns a population of compiled triggers, their subscription
// index, and a FIFO action queue. It is the sole entry point a host drives:
// feed it events, drain the actions it produces.
type Dispatcher[I comparable, E event.Event[I, E], A any] struct {
	system        *system[I, E, A]
	actionToEvent func(A) E
	queue         []A
}

// New constructs a Dispatcher from an already-compiled trigger population.
// Triggers whose root condition is already completed (e.g. a bare None, or a
// composite built entirely from already-satisfied children) have their
// actions drained immediately, and the resulting synthetic events are run
// through the same cascade that execute_event uses, so S1/S3-style
// immediate-fire populations resolve fully before New returns.
//
// actionToEvent coerces a fired trigger's action into an event so it can
// re-enter the engine and drive other triggers — the "every action must be
// coercible into an event" half of the action contract.
func New[I comparable, E event.Event[I, E], A any](
	triggers []*Trigger[I, E, A],
	actionToEvent func(A) E,
) *Dispatcher[I, E, A] {
	s, initial := newSystem(triggers, actionToEvent)
	return &Dispatcher[I, E, A]{system: s, actionToEvent: actionToEvent, queue: initial}
}

// Compile lowers a population of uncompiled triggers and constructs a
// Dispatcher in one step: event_compiler projects authoring events to
// runtime events for every condition leaf that stores one, action_compiler
// lowers authoring actions to runtime actions, and actionToEvent coerces a
// runtime action back into a runtime event for cascading.
func Compile[E any, I comparable, C event.Event[I, C], A any, UA any](
	uncompiled []UncompiledTrigger[E, UA],
	eventCompiler func(E) C,
	actionCompiler func(UA) A,
	actionToEvent func(A) C,
) *Dispatcher[I, C, A] {
	triggers := make([]*Trigger[I, C, A], len(uncompiled))
	for i, ut := range uncompiled {
		triggers[i] = CompileTrigger[E, I, C, A](ut, eventCompiler, actionCompiler)
	}
	return New(triggers, actionToEvent)
}

// ExecuteEvent runs e through the trigger population, cascading any actions
// it produces, and appends the net result onto the action queue.
func (d *Dispatcher[I, E, A]) ExecuteEvent(e E) {
	produced := d.system.executeEvent(e, d.actionToEvent)
	d.queue = append(d.queue, produced...)
}

// ExecuteEvents runs each event in order through ExecuteEvent.
func (d *Dispatcher[I, E, A]) ExecuteEvents(events []E) {
	for _, e := range events {
		d.ExecuteEvent(e)
	}
}

// ConsumeAction pops the oldest pending action, if any.
func (d *Dispatcher[I, E, A]) ConsumeAction() (A, bool) {
	if len(d.queue) == 0 {
		var zero A
		return zero, false
	}
	a := d.queue[0]
	d.queue = d.queue[1:]
	return a, true
}

// ConsumeAllActions drains and returns every pending action, oldest first.
func (d *Dispatcher[I, E, A]) ConsumeAllActions() []A {
	out := d.queue
	d.queue = nil
	return out
}

// PendingActions returns a copy of the pending action queue without
// consuming it, for callers (e.g. snapshotting) that need to observe it
// without disturbing what a host later consumes.
func (d *Dispatcher[I, E, A]) PendingActions() []A {
	out := make([]A, len(d.queue))
	copy(out, d.queue)
	return out
}

// PendingActionCount reports how many actions are queued without consuming them.
func (d *Dispatcher[I, E, A]) PendingActionCount() int {
	return len(d.queue)
}

// Handles returns a handle for every trigger in the population, in
// insertion order.
func (d *Dispatcher[I, E, A]) Handles() []TriggerHandle {
	handles := make([]TriggerHandle, len(d.system.triggers))
	for i := range d.system.triggers {
		handles[i] = TriggerHandle(i)
	}
	return handles
}

// Progress returns the (current, required) progress of the trigger named by
// handle. ok is false if handle is out of range.
func (d *Dispatcher[I, E, A]) Progress(handle TriggerHandle) (current, required float64, ok bool) {
	idx := int(handle)
	if idx < 0 || idx >= len(d.system.triggers) {
		return 0, 0, false
	}
	c, r := d.system.triggers[idx].Progress()
	return c, r, true
}

// Trigger returns the trigger named by handle. ok is false if handle is out
// of range.
func (d *Dispatcher[I, E, A]) Trigger(handle TriggerHandle) (*Trigger[I, E, A], bool) {
	idx := int(handle)
	if idx < 0 || idx >= len(d.system.triggers) {
		return nil, false
	}
	return d.system.triggers[idx], true
}

// ByID resolves a trigger's stable id to its handle, for hosts that want to
// refer to triggers by name (logs, CLI flags) rather than by index. Not part
// of spec.md's interface, but falls out naturally from every trigger
// carrying an id and is exercised by cmd/etactl's replay tracing.
func (d *Dispatcher[I, E, A]) ByID(id string) (TriggerHandle, bool) {
	for idx, t := range d.system.triggers {
		if t.ID() == id {
			return TriggerHandle(idx), true
		}
	}
	return 0, false
}
