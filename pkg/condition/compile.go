package condition

import (
	"context"

	"github.com/dshills/goeta/pkg/engineerr"
	"github.com/dshills/goeta/pkg/event"
	"github.com/dshills/goeta/pkg/expreval"
)

// Compile lowers an uncompiled condition tree over authoring event type E
// into a runnable Compiled node over runtime event type C, using
// eventCompiler to project each authoring-time event referenced by the tree
// (EventCount's target, Cmp's reference) into its runtime form. Expr leaves
// carry an identifier rather than an event and do not use eventCompiler. Passing the identity function for eventCompiler is
// the common case where authoring and runtime event types coincide.
func Compile[E any, I comparable, C event.Event[I, C]](c Condition[E], eventCompiler func(E) C) *Compiled[I, C] {
	switch t := c.(type) {
	case NoneType[E]:
		return &Compiled[I, C]{kind: noneKind[I, C]{}, completed: true, requiredProgress: 0, currentProgress: 0}

	case NeverType[E]:
		return &Compiled[I, C]{kind: neverKind[I, C]{}, completed: false, requiredProgress: 1, currentProgress: 0}

	case EventCountType[E]:
		ce := eventCompiler(t.Event)
		completed := t.Required <= 0
		return &Compiled[I, C]{
			kind:             &eventCountKind[I, C]{identifier: ce.Identifier(), required: t.Required},
			completed:        completed,
			requiredProgress: float64(t.Required),
			currentProgress:  0,
		}

	case CmpType[E]:
		ref := eventCompiler(t.Reference)
		return &Compiled[I, C]{
			kind:             &cmpKind[I, C]{op: t.Op, reference: ref},
			completed:        false,
			requiredProgress: 1,
			currentProgress:  0,
		}

	case SequenceType[E]:
		return compileSequence[E, I, C](t, eventCompiler)

	case AndType[E]:
		return compileAnd[E, I, C](t, eventCompiler)

	case OrType[E]:
		return compileOr[E, I, C](t, eventCompiler)

	case AnyNType[E]:
		return compileAnyN[E, I, C](t, eventCompiler)

	case ExprType[I, E]:
		return compileExpr[E, I, C](t, eventCompiler)

	default:
		engineerr.Violate("condition: compile called on an unrecognized condition kind %T", c)
		return nil
	}
}

func compileSequence[E any, I comparable, C event.Event[I, C]](t SequenceType[E], eventCompiler func(E) C) *Compiled[I, C] {
	children := make([]*Compiled[I, C], len(t.Children))
	required := 0.0
	for i, uc := range t.Children {
		cc := Compile[E, I, C](uc, eventCompiler)
		if cc.completed {
			engineerr.Violate("condition: sequence compiled with an already-completed child at position %d", i)
		}
		children[i] = cc
		required += cc.requiredProgress
	}
	initial := 0.0
	if len(children) > 0 {
		initial = children[0].currentProgress
	}
	return &Compiled[I, C]{
		kind:             &sequenceKind[I, C]{children: children},
		completed:        len(children) == 0,
		requiredProgress: required,
		currentProgress:  initial,
	}
}

func compileAnd[E any, I comparable, C event.Event[I, C]](t AndType[E], eventCompiler func(E) C) *Compiled[I, C] {
	children := make([]*Compiled[I, C], len(t.Children))
	done := make([]bool, len(t.Children))
	required := 0.0
	for i, uc := range t.Children {
		cc := Compile[E, I, C](uc, eventCompiler)
		children[i] = cc
		done[i] = cc.completed
		required += cc.requiredProgress
	}
	k := &andKind[I, C]{children: children, done: done}
	return &Compiled[I, C]{
		kind:             k,
		completed:        k.completed(),
		requiredProgress: required,
		currentProgress:  k.currentProgress(),
	}
}

func compileOr[E any, I comparable, C event.Event[I, C]](t OrType[E], eventCompiler func(E) C) *Compiled[I, C] {
	children := make([]*Compiled[I, C], len(t.Children))
	done := make([]bool, len(t.Children))
	required := 0.0
	maxRelative := 0.0
	for i, uc := range t.Children {
		cc := Compile[E, I, C](uc, eventCompiler)
		children[i] = cc
		done[i] = cc.completed
		if i == 0 || cc.requiredProgress < required {
			required = cc.requiredProgress
		}
		if cc.completed && 1.0 > maxRelative {
			maxRelative = 1.0
		}
	}
	if len(children) == 0 {
		required = 0
	}
	k := &orKind[I, C]{children: children, done: done, maxRelative: maxRelative}
	return &Compiled[I, C]{
		kind:             k,
		completed:        k.completed(),
		requiredProgress: required,
		currentProgress:  maxRelative * required,
	}
}

func compileAnyN[E any, I comparable, C event.Event[I, C]](t AnyNType[E], eventCompiler func(E) C) *Compiled[I, C] {
	children := make([]*Compiled[I, C], len(t.Children))
	done := make([]bool, len(t.Children))
	relative := make([]float64, len(t.Children))
	requireds := make([]float64, len(t.Children))
	for i, uc := range t.Children {
		cc := Compile[E, I, C](uc, eventCompiler)
		children[i] = cc
		done[i] = cc.completed
		requireds[i] = cc.requiredProgress
		if cc.completed {
			relative[i] = 1.0
		}
	}
	if t.N > len(t.Children) {
		engineerr.Violate("condition: any_n requires %d of %d children, which can never be satisfied", t.N, len(t.Children))
	}
	sortedRequireds := append([]float64{}, requireds...)
	sortAscending(sortedRequireds)
	required := 0.0
	take := t.N
	if take > len(sortedRequireds) {
		take = len(sortedRequireds)
	}
	for i := 0; i < take; i++ {
		required += sortedRequireds[i]
	}
	k := &anyNKind[I, C]{children: children, done: done, relative: relative, n: t.N}
	return &Compiled[I, C]{
		kind:             k,
		completed:        k.completed(),
		requiredProgress: required,
		currentProgress:  k.currentProgress(required),
	}
}

func sortAscending(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

func compileExpr[E any, I comparable, C event.Event[I, C]](t ExprType[I, E], _ func(E) C) *Compiled[I, C] {
	evaluator := expreval.NewEvaluator()
	project := t.Project
	check := func(e C) bool {
		var bindings map[string]any
		if project != nil {
			bindings = project(e)
		}
		ok, err := evaluator.EvaluateBool(context.Background(), t.Expression, bindings)
		if err != nil {
			engineerr.Violate("condition: expr leaf %q failed to evaluate: %v", t.Expression, err)
		}
		return ok
	}
	return &Compiled[I, C]{
		kind:             &exprKind[I, C]{identifier: t.Identifier, evaluator: check},
		completed:        false,
		requiredProgress: 1,
		currentProgress:  0,
	}
}
