package triggerfile

import (
	"fmt"

	"github.com/dshills/goeta/pkg/condition"
	"github.com/dshills/goeta/pkg/trigger"
)

// Decoder collects the host-supplied functions needed to lower a Document's
// untyped payloads into concrete event/action/identifier types. Identifier
// and Project are only used by "expr" conditions: leave them nil if the
// document never uses one.
type Decoder[E any, I comparable, A any] struct {
	Event      func(RawPayload) E
	Action     func(RawPayload) A
	Identifier func(RawPayload) I
	Project    func(any) map[string]any
}

// Build lowers every trigger in doc into an UncompiledTrigger, ready for
// trigger.CompileTrigger (or trigger.Compile, for the whole population at
// once).
func Build[E any, I comparable, A any](doc Document, dec Decoder[E, I, A]) ([]trigger.UncompiledTrigger[E, A], error) {
	out := make([]trigger.UncompiledTrigger[E, A], len(doc.Triggers))
	for i, rt := range doc.Triggers {
		c, err := buildCondition(rt.Condition, dec)
		if err != nil {
			return nil, fmt.Errorf("triggerfile: trigger %q: %w", rt.ID, err)
		}
		actions := make([]A, len(rt.Actions))
		for j, ra := range rt.Actions {
			actions[j] = dec.Action(ra)
		}
		out[i] = trigger.UncompiledTrigger[E, A]{ID: rt.ID, Condition: c, Actions: actions}
	}
	return out, nil
}

func buildCondition[E any, I comparable, A any](rc RawCondition, dec Decoder[E, I, A]) (condition.Condition[E], error) {
	switch rc.Kind {
	case "none":
		return condition.None[E](), nil

	case "never":
		return condition.Never[E](), nil

	case "event_count":
		return condition.EventCount(dec.Event(rc.Event), rc.Required), nil

	case "greater":
		return condition.GreaterThan(dec.Event(rc.Reference)), nil

	case "greater_or_equal":
		return condition.GreaterOrEqual(dec.Event(rc.Reference)), nil

	case "equal":
		return condition.EqualTo(dec.Event(rc.Reference)), nil

	case "less_or_equal":
		return condition.LessOrEqual(dec.Event(rc.Reference)), nil

	case "less":
		return condition.LessThan(dec.Event(rc.Reference)), nil

	case "sequence":
		children, err := buildChildren(rc.Children, dec)
		if err != nil {
			return nil, err
		}
		return condition.Sequence(children...), nil

	case "and":
		children, err := buildChildren(rc.Children, dec)
		if err != nil {
			return nil, err
		}
		return condition.And(children...), nil

	case "or":
		children, err := buildChildren(rc.Children, dec)
		if err != nil {
			return nil, err
		}
		return condition.Or(children...), nil

	case "any_n":
		children, err := buildChildren(rc.Children, dec)
		if err != nil {
			return nil, err
		}
		return condition.AnyN(children, rc.N), nil

	case "expr":
		if dec.Identifier == nil || dec.Project == nil {
			return nil, fmt.Errorf("expr condition requires a Decoder with Identifier and Project set")
		}
		id := dec.Identifier(rc.Identifier)
		return condition.Expr[I, E](id, rc.Expression, dec.Project), nil

	default:
		return nil, fmt.Errorf("unknown condition kind %q", rc.Kind)
	}
}

func buildChildren[E any, I comparable, A any](children []RawCondition, dec Decoder[E, I, A]) ([]condition.Condition[E], error) {
	out := make([]condition.Condition[E], len(children))
	for i, rc := range children {
		c, err := buildCondition(rc, dec)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
