package condition

import (
	"math"

	"github.com/dshills/goeta/pkg/engineerr"
	"github.com/dshills/goeta/pkg/event"
)

// progressTolerance absorbs rounding error from the divisions in Or/AnyN's
// relative-progress arithmetic when checking monotonicity.
const progressTolerance = 1e-6

// Update is a subscription-mutation delta a compiled node returns from
// ExecuteEvent: either a request to start or stop receiving events for an
// identifier. The trigger system applies these immediately, before the next
// subscribed trigger is dispatched.
type Update[I comparable] struct {
	Subscribe  bool
	Identifier I
}

// SubscribeUpdate requests that id be added to the subscription index.
func SubscribeUpdate[I comparable](id I) Update[I] { return Update[I]{Subscribe: true, Identifier: id} }

// UnsubscribeUpdate requests that one occurrence of id be removed from the
// subscription index.
func UnsubscribeUpdate[I comparable](id I) Update[I] { return Update[I]{Subscribe: false, Identifier: id} }

// compiledKind is the per-variant behavior a Compiled node delegates to. It
// never sees or mutates the shared completed/progress bookkeeping; that's
// owned uniformly by Compiled itself so every variant gets the same
// precondition and monotonicity checks for free.
type compiledKind[I comparable, C event.Event[I, C]] interface {
	completed() bool
	subscriptions() []I
	// executeEvent runs e through this node and returns subscription deltas,
	// whether the node just transitioned to completed, and its new absolute
	// current_progress. required is the node's precomputed required_progress,
	// supplied so variants whose progress formula scales by it (Or, AnyN)
	// don't need to store a copy.
	executeEvent(e C, required float64) (deltas []Update[I], justCompleted bool, progress float64)
}

// Compiled is a runnable condition node: an uncompiled Condition lowered by
// Compile, carrying the mutable state — completion, progress, and
// variant-specific bookkeeping — that accumulates as events are executed
// against it. It is the "beating heart" of the engine: RequiredProgress,
// CurrentProgress, Completed, ExecuteEvent, and Subscriptions are the five
// operations every caller (trigger, dispatcher, snapshot) drives it through.
type Compiled[I comparable, C event.Event[I, C]] struct {
	kind             compiledKind[I, C]
	completed        bool
	requiredProgress float64
	currentProgress  float64
}

// RequiredProgress returns the fixed progress ceiling computed for this node
// at compile time; it never changes afterward.
func (c *Compiled[I, C]) RequiredProgress() float64 {
	return c.requiredProgress
}

// CurrentProgress returns this node's current progress toward
// RequiredProgress. Panics if the tracked value is non-finite, which can
// only happen if a host's event implementation returned a non-finite
// progress estimate.
func (c *Compiled[I, C]) CurrentProgress() float64 {
	if !isFinite(c.currentProgress) {
		engineerr.Violate("condition: non-finite current_progress observed (%v)", c.currentProgress)
	}
	return c.currentProgress
}

// Completed reports whether this node has fully fired.
func (c *Compiled[I, C]) Completed() bool {
	return c.completed
}

// Subscriptions returns the identifiers this node currently needs to
// receive, empty once the node is completed.
func (c *Compiled[I, C]) Subscriptions() []I {
	if c.completed {
		return nil
	}
	return c.kind.subscriptions()
}

// ExecuteEvent runs e through this node's variant-specific logic. Panics if
// the node is already completed (a programmer-contract violation: the caller
// dispatched to a node that owns no subscriptions) or if progress would
// regress beyond tolerance.
func (c *Compiled[I, C]) ExecuteEvent(e C) ([]Update[I], bool) {
	if c.completed {
		engineerr.Violate("condition: execute_event called on an already-completed condition node")
	}
	deltas, justCompleted, progress := c.kind.executeEvent(e, c.requiredProgress)
	if !isFinite(progress) {
		engineerr.Violate("condition: non-finite current_progress produced by execute_event")
	}
	if progress < c.currentProgress-progressTolerance {
		engineerr.Violate("condition: current_progress regressed from %v to %v", c.currentProgress, progress)
	}
	c.currentProgress = progress
	c.completed = justCompleted
	return deltas, justCompleted
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// --- None ---

type noneKind[I comparable, C event.Event[I, C]] struct{}

func (noneKind[I, C]) completed() bool        { return true }
func (noneKind[I, C]) subscriptions() []I     { return nil }
func (noneKind[I, C]) executeEvent(C, float64) ([]Update[I], bool, float64) {
	engineerr.Violate("condition: execute_event called on a None node (always already completed)")
	return nil, true, 0
}

// --- Never ---

type neverKind[I comparable, C event.Event[I, C]] struct{}

func (neverKind[I, C]) completed() bool    { return false }
func (neverKind[I, C]) subscriptions() []I { return nil }
func (neverKind[I, C]) executeEvent(C, float64) ([]Update[I], bool, float64) {
	return nil, false, 0
}

// --- EventCount ---

type eventCountKind[I comparable, C event.Event[I, C]] struct {
	identifier I
	count      int
	required   int
}

func (k *eventCountKind[I, C]) completed() bool    { return k.count >= k.required }
func (k *eventCountKind[I, C]) subscriptions() []I { return []I{k.identifier} }

func (k *eventCountKind[I, C]) executeEvent(e C, _ float64) ([]Update[I], bool, float64) {
	if e.Identifier() != k.identifier {
		return nil, false, float64(k.count)
	}
	k.count++
	if k.count >= k.required {
		return []Update[I]{UnsubscribeUpdate(k.identifier)}, true, float64(k.count)
	}
	return nil, false, float64(k.count)
}

// --- Cmp (Greater/GreaterOrEqual/Equal/LessOrEqual/Less) ---

type cmpKind[I comparable, C event.Event[I, C]] struct {
	op        CmpOp
	reference C
	fulfilled bool
	progress  float64
}

func (k *cmpKind[I, C]) completed() bool    { return k.fulfilled }
func (k *cmpKind[I, C]) subscriptions() []I { return []I{k.reference.Identifier()} }

func (k *cmpKind[I, C]) executeEvent(e C, _ float64) ([]Update[I], bool, float64) {
	if e.Identifier() != k.reference.Identifier() {
		return nil, false, k.progress
	}
	ordering, ok := e.PartialCompare(k.reference)
	if !ok {
		engineerr.Violate("condition: comparison leaf received an event matching its reference's identifier but incomparable to it")
	}
	if matchesOp(k.op, ordering) {
		k.fulfilled = true
		k.progress = 1.0
		return []Update[I]{UnsubscribeUpdate(k.reference.Identifier())}, true, 1.0
	}
	progress, ok := e.PartialCompareProgress(k.reference, closestTargetOrdering(k.op))
	if !ok {
		engineerr.Violate("condition: comparison leaf received an event matching its reference's identifier but could not estimate progress against it")
	}
	k.progress = progress
	return nil, false, progress
}

func matchesOp(op CmpOp, ordering event.Ordering) bool {
	switch op {
	case OpGreater:
		return ordering == event.Greater
	case OpGreaterOrEqual:
		return ordering == event.Greater || ordering == event.Equal
	case OpEqual:
		return ordering == event.Equal
	case OpLessOrEqual:
		return ordering == event.Less || ordering == event.Equal
	case OpLess:
		return ordering == event.Less
	default:
		return false
	}
}

// closestTargetOrdering is the ordering execute_event checks a non-fulfilling
// comparison's progress against: the strict side for > and <, Equal for the
// three operators that accept equality.
func closestTargetOrdering(op CmpOp) event.Ordering {
	switch op {
	case OpGreater:
		return event.Greater
	case OpLess:
		return event.Less
	default:
		return event.Equal
	}
}

// --- Sequence ---

type sequenceKind[I comparable, C event.Event[I, C]] struct {
	children []*Compiled[I, C]
	cursor   int
}

func (k *sequenceKind[I, C]) completed() bool { return k.cursor >= len(k.children) }

func (k *sequenceKind[I, C]) subscriptions() []I {
	if k.completed() {
		return nil
	}
	return k.children[k.cursor].Subscriptions()
}

func (k *sequenceKind[I, C]) executeEvent(e C, _ float64) ([]Update[I], bool, float64) {
	pBase := 0.0
	for i := 0; i < k.cursor; i++ {
		pBase += k.children[i].RequiredProgress()
	}

	child := k.children[k.cursor]
	deltas, childCompleted := child.ExecuteEvent(e)
	if !childCompleted {
		return deltas, false, pBase + child.CurrentProgress()
	}

	k.cursor++
	if k.cursor < len(k.children) {
		next := k.children[k.cursor]
		for _, id := range next.Subscriptions() {
			deltas = append(deltas, SubscribeUpdate(id))
		}
		return deltas, false, pBase + child.RequiredProgress() + next.CurrentProgress()
	}
	return deltas, true, pBase + child.RequiredProgress()
}

// --- And ---

type andKind[I comparable, C event.Event[I, C]] struct {
	children []*Compiled[I, C]
	done     []bool
}

func (k *andKind[I, C]) completed() bool {
	for _, d := range k.done {
		if !d {
			return false
		}
	}
	return true
}

func (k *andKind[I, C]) subscriptions() []I {
	var out []I
	for i, child := range k.children {
		if !k.done[i] {
			out = append(out, child.Subscriptions()...)
		}
	}
	return out
}

func (k *andKind[I, C]) currentProgress() float64 {
	total := 0.0
	for i, child := range k.children {
		if k.done[i] {
			total += child.RequiredProgress()
		} else {
			total += child.CurrentProgress()
		}
	}
	return total
}

func (k *andKind[I, C]) executeEvent(e C, _ float64) ([]Update[I], bool, float64) {
	var deltas []Update[I]
	for i, child := range k.children {
		if k.done[i] {
			continue
		}
		d, childCompleted := child.ExecuteEvent(e)
		deltas = append(deltas, d...)
		if childCompleted {
			k.done[i] = true
		}
	}
	return deltas, k.completed(), k.currentProgress()
}

// --- Or ---

type orKind[I comparable, C event.Event[I, C]] struct {
	children    []*Compiled[I, C]
	done        []bool
	maxRelative float64
}

func (k *orKind[I, C]) completed() bool {
	if len(k.children) == 0 {
		return false
	}
	for _, d := range k.done {
		if !d {
			return false
		}
	}
	return true
}

func (k *orKind[I, C]) subscriptions() []I {
	var out []I
	for i, child := range k.children {
		if !k.done[i] {
			out = append(out, child.Subscriptions()...)
		}
	}
	return out
}

func (k *orKind[I, C]) executeEvent(e C, required float64) ([]Update[I], bool, float64) {
	var deltas []Update[I]
	fired := false
	for i, child := range k.children {
		if k.done[i] {
			continue
		}
		d, childCompleted := child.ExecuteEvent(e)
		deltas = append(deltas, d...)
		var rel float64
		if childCompleted {
			rel = 1.0
			k.done[i] = true
			fired = true
		} else {
			rel = child.CurrentProgress() / child.RequiredProgress()
		}
		if rel > k.maxRelative {
			k.maxRelative = rel
		}
	}
	if fired {
		for i, child := range k.children {
			if k.done[i] {
				continue
			}
			for _, id := range child.Subscriptions() {
				deltas = append(deltas, UnsubscribeUpdate(id))
			}
			k.done[i] = true
		}
	}
	return deltas, k.completed(), k.maxRelative * required
}

// --- AnyN ---

type anyNKind[I comparable, C event.Event[I, C]] struct {
	children []*Compiled[I, C]
	done     []bool
	relative []float64
	n        int
}

func (k *anyNKind[I, C]) completed() bool {
	count := 0
	for _, d := range k.done {
		if d {
			count++
		}
	}
	return count >= k.n
}

func (k *anyNKind[I, C]) subscriptions() []I {
	var out []I
	for i, child := range k.children {
		if !k.done[i] {
			out = append(out, child.Subscriptions()...)
		}
	}
	return out
}

func (k *anyNKind[I, C]) currentProgress(required float64) float64 {
	sorted := append([]float64{}, k.relative...)
	sortDescending(sorted)
	take := k.n
	if take > len(sorted) {
		take = len(sorted)
	}
	sum := 0.0
	for i := 0; i < take; i++ {
		sum += sorted[i]
	}
	if take == 0 {
		return 0
	}
	return (sum / float64(take)) * required
}

func (k *anyNKind[I, C]) executeEvent(e C, required float64) ([]Update[I], bool, float64) {
	var deltas []Update[I]
	for i, child := range k.children {
		if k.done[i] {
			continue
		}
		d, childCompleted := child.ExecuteEvent(e)
		deltas = append(deltas, d...)
		if childCompleted {
			k.done[i] = true
			k.relative[i] = 1.0
		} else {
			k.relative[i] = child.CurrentProgress() / child.RequiredProgress()
		}
	}
	justCompleted := k.completed()
	if justCompleted {
		for i, child := range k.children {
			if k.done[i] {
				continue
			}
			for _, id := range child.Subscriptions() {
				deltas = append(deltas, UnsubscribeUpdate(id))
			}
			k.done[i] = true
			k.relative[i] = 1.0
		}
	}
	return deltas, justCompleted, k.currentProgress(required)
}

func sortDescending(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] > xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// --- Expr ---

type exprKind[I comparable, C event.Event[I, C]] struct {
	identifier I
	evaluator  exprEvaluatorFunc[C]
	fulfilled  bool
}

// exprEvaluatorFunc evaluates a compiled Expr condition against an incoming
// event, returning whether it's satisfied.
type exprEvaluatorFunc[C any] func(e C) bool

func (k *exprKind[I, C]) completed() bool    { return k.fulfilled }
func (k *exprKind[I, C]) subscriptions() []I { return []I{k.identifier} }

func (k *exprKind[I, C]) executeEvent(e C, _ float64) ([]Update[I], bool, float64) {
	if e.Identifier() != k.identifier {
		return nil, false, 0
	}
	if k.evaluator(e) {
		k.fulfilled = true
		return []Update[I]{UnsubscribeUpdate(k.identifier)}, true, 1.0
	}
	return nil, false, 0
}
