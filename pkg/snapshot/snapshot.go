// Package snapshot captures a dispatcher's flattened state — per-trigger
// progress and completion, plus the pending action queue — so a host can
// persist it for audits or crash diagnostics. spec.md leaves the wire format
// unspecified ("the engine does not prescribe a wire format"); this package
// picks one opaque JSON shape and a SQLite-backed store for it, the way the
// teacher persists execution history.
package snapshot

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/goeta/pkg/engineerr"
	"github.com/dshills/goeta/pkg/event"
	"github.com/dshills/goeta/pkg/trigger"
)

// TriggerState is one trigger's progress at capture time.
type TriggerState struct {
	Handle    int     `json:"handle"`
	ID        string  `json:"id"`
	Completed bool    `json:"completed"`
	Current   float64 `json:"current"`
	Required  float64 `json:"required"`
}

// Snapshot is a point-in-time capture of a dispatcher: every trigger's
// progress, plus the pending action queue serialized by the caller (actions
// are of a host-defined type A, so this package cannot encode them itself).
type Snapshot struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Triggers  []TriggerState  `json:"triggers"`
	Actions   json.RawMessage `json:"actions,omitempty"`
}

// Capture reads every trigger's current progress off d and packages it with
// the pending action queue, encoded via marshalActions (typically
// json.Marshal, supplied by the caller since A is a host type this package
// cannot know how to encode). Restoring condition-tree internals (counters,
// cursors, fulfilled-child lists) verbatim is intentionally out of scope:
// Compiled deliberately does not expose them, so a byte-for-byte structural
// resume would require breaking that encapsulation. Hosts that need exact
// resume should instead replay their event log against a fresh Dispatcher —
// a snapshot here is for observability, not for skipping replay.
func Capture[I comparable, E event.Event[I, E], A any](
	d *trigger.Dispatcher[I, E, A],
	marshalActions func([]A) ([]byte, error),
) (Snapshot, error) {
	handles := d.Handles()
	states := make([]TriggerState, 0, len(handles))
	for _, h := range handles {
		t, ok := d.Trigger(h)
		if !ok {
			continue
		}
		current, required, _ := d.Progress(h)
		states = append(states, TriggerState{
			Handle:    int(h),
			ID:        t.ID(),
			Completed: t.Completed(),
			Current:   current,
			Required:  required,
		})
	}

	actions := d.PendingActions()
	raw, err := marshalActions(actions)
	if err != nil {
		return Snapshot{}, engineerr.NewOperationalError("snapshot.Capture", "", err)
	}

	return Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Triggers:  states,
		Actions:   raw,
	}, nil
}
