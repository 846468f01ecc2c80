// Package types defines the small identifier vocabulary shared across the engine.
package types

import "github.com/google/uuid"

// TriggerID names a single trigger within a population, stable across reload and
// persistence. Callers that don't care to name their own triggers get one from
// NewTriggerID.
type TriggerID string

// TriggerIndex is the position of a trigger inside a dispatcher's trigger slice.
// It is only stable for the lifetime of a single dispatcher and must not be
// persisted. The trigger package itself keys its subscriptions on plain int
// indices and exposes positions as trigger.TriggerHandle, not as this type.
type TriggerIndex int

// NewTriggerID generates a random, unique trigger identifier.
func NewTriggerID() TriggerID {
	return TriggerID(uuid.NewString())
}

// String returns the string representation of a TriggerID.
func (id TriggerID) String() string {
	return string(id)
}

// IsZero reports whether the TriggerID is the unset zero value.
func (id TriggerID) IsZero() bool {
	return id == ""
}
