package engmon

import (
	"sync"
	"sync/atomic"
)

// PopulationProgress summarizes a whole trigger population's advancement:
// how many triggers have fired versus how many exist, and the summed current
// and required progress across every trigger with a recorded reading, fired
// ones included.
type PopulationProgress struct {
	TotalTriggers    int
	FiredTriggers    int
	AggregateCurrent float64
	AggregateRequired float64
}

// PercentComplete returns fired/total as a percentage, or 0 if there are no
// triggers.
func (p PopulationProgress) PercentComplete() float64 {
	if p.TotalTriggers == 0 {
		return 0
	}
	return (float64(p.FiredTriggers) / float64(p.TotalTriggers)) * 100
}

// Tracker accumulates per-trigger progress snapshots fed to it by a host
// loop and exposes a population-level summary. The fired counter is a plain
// atomic that Update increments and Reset zeroes; the snapshot map needs the
// mutex because readers and writers touch the same keys.
type Tracker struct {
	mu        sync.RWMutex
	snapshots map[string]ProgressSnapshot
	fired     int32
	total     int32
}

// NewTracker returns a Tracker sized for total triggers.
func NewTracker(total int) *Tracker {
	return &Tracker{snapshots: make(map[string]ProgressSnapshot), total: int32(total)}
}

// Update records triggerID's latest progress reading. Calling Update with
// current == required marks the trigger fired exactly once; a second call
// with the same reading is a no-op on the fired counter.
func (t *Tracker) Update(triggerID string, current, required float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prior, existed := t.snapshots[triggerID]
	wasFired := existed && prior.Current >= prior.Required && prior.Required > 0
	t.snapshots[triggerID] = ProgressSnapshot{Current: current, Required: required}
	nowFired := current >= required && required > 0
	if nowFired && !wasFired {
		atomic.AddInt32(&t.fired, 1)
	}
}

// Snapshot returns the population-level summary as of the last Update call.
func (t *Tracker) Snapshot() PopulationProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p := PopulationProgress{
		TotalTriggers: int(atomic.LoadInt32(&t.total)),
		FiredTriggers: int(atomic.LoadInt32(&t.fired)),
	}
	for _, s := range t.snapshots {
		p.AggregateCurrent += s.Current
		p.AggregateRequired += s.Required
	}
	return p
}

// TriggerProgress returns triggerID's last recorded snapshot.
func (t *Tracker) TriggerProgress(triggerID string) (ProgressSnapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.snapshots[triggerID]
	return s, ok
}

// Reset clears every recorded snapshot and the fired counter, keeping the
// configured total.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshots = make(map[string]ProgressSnapshot)
	atomic.StoreInt32(&t.fired, 0)
}
