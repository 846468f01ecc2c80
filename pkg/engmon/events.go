// Package engmon is an opt-in observability layer sitting on top of a
// trigger.Dispatcher, not inside it: the synchronous core never calls into
// this package on its own. A host that wants live progress reporting or an
// event feed wraps its own calls to the dispatcher with the Monitor calls
// below.
package engmon

import (
	"sync"
	"time"
)

// EventType classifies a monitor notification.
type EventType string

const (
	EventTriggerFired     EventType = "trigger_fired"
	EventTriggerProgress  EventType = "trigger_progress"
	EventActionEmitted    EventType = "action_emitted"
	EventActionConsumed   EventType = "action_consumed"
	EventDispatchStarted  EventType = "dispatch_started"
	EventDispatchFinished EventType = "dispatch_finished"
)

// Event is a single notification broadcast to subscribers.
type Event struct {
	Type      EventType
	TriggerID string
	Timestamp time.Time
	Progress  *ProgressSnapshot
	Detail    string
}

// ProgressSnapshot is a point-in-time (current, required) progress reading.
type ProgressSnapshot struct {
	Current  float64
	Required float64
}

// PercentComplete returns progress as a percentage in [0, 100], or 0 if
// Required is 0.
func (p ProgressSnapshot) PercentComplete() float64 {
	if p.Required == 0 {
		return 0
	}
	return (p.Current / p.Required) * 100
}

// Filter narrows which events a subscription receives. A zero-value Filter
// matches every event.
type Filter struct {
	Types      []EventType
	TriggerIDs []string
}

// Matches reports whether e passes f.
func (f Filter) Matches(e Event) bool {
	if len(f.Types) > 0 && !containsType(f.Types, e.Type) {
		return false
	}
	if len(f.TriggerIDs) > 0 && !containsString(f.TriggerIDs, e.TriggerID) {
		return false
	}
	return true
}

func containsType(types []EventType, t EventType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// SubscriptionID names a live subscription so it can be cancelled later.
type SubscriptionID int

// Monitor broadcasts dispatcher activity to subscribers without blocking the
// caller driving the dispatcher: a slow or absent subscriber never stalls
// event dispatch.
type Monitor interface {
	Subscribe(ch chan<- Event) SubscriptionID
	SubscribeFiltered(ch chan<- Event, filter Filter) SubscriptionID
	Unsubscribe(id SubscriptionID)
	Emit(e Event)
	Close()
}

type subscription struct {
	id     SubscriptionID
	ch     chan<- Event
	filter Filter
}

type monitor struct {
	mu            sync.RWMutex
	subscriptions []subscription
	nextID        SubscriptionID
	closed        bool
}

// NewMonitor returns a ready-to-use Monitor.
func NewMonitor() Monitor {
	return &monitor{}
}

func (m *monitor) Subscribe(ch chan<- Event) SubscriptionID {
	return m.SubscribeFiltered(ch, Filter{})
}

func (m *monitor) SubscribeFiltered(ch chan<- Event, filter Filter) SubscriptionID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.subscriptions = append(m.subscriptions, subscription{id: id, ch: ch, filter: filter})
	return id
}

func (m *monitor) Unsubscribe(id SubscriptionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.subscriptions {
		if s.id == id {
			m.subscriptions = append(m.subscriptions[:i], m.subscriptions[i+1:]...)
			return
		}
	}
}

// Emit broadcasts e to every matching subscriber. Delivery is non-blocking:
// a subscriber whose channel is full simply misses the event rather than
// stalling the caller (the calling thread is, per the engine's concurrency
// model, the only thread driving dispatch — it must never block here).
func (m *monitor) Emit(e Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	for _, s := range m.subscriptions {
		if !s.filter.Matches(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
		}
	}
}

func (m *monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.subscriptions = nil
}
