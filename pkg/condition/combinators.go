package condition

// And2 composes lhs and rhs conjunctively. Go has no operator overloading, so
// this stands in for the original's `&` operator: chaining And2 across a run
// of conditions collapses into a single flat And node rather than nesting one
// two-child And inside another, so And2(And2(a, b), c) and And2(a, And2(b, c))
// both produce And{a, b, c}.
func And2[E any](lhs, rhs Condition[E]) Condition[E] {
	la, lok := lhs.(AndType[E])
	ra, rok := rhs.(AndType[E])
	switch {
	case lok && rok:
		return AndType[E]{Children: concat(la.Children, ra.Children)}
	case lok:
		return AndType[E]{Children: append(append([]Condition[E]{}, la.Children...), rhs)}
	case rok:
		return AndType[E]{Children: append([]Condition[E]{lhs}, ra.Children...)}
	default:
		return AndType[E]{Children: []Condition[E]{lhs, rhs}}
	}
}

// Or2 composes lhs and rhs disjunctively, with the same run-flattening
// behavior as And2 but for Or nodes.
func Or2[E any](lhs, rhs Condition[E]) Condition[E] {
	lo, lok := lhs.(OrType[E])
	ro, rok := rhs.(OrType[E])
	switch {
	case lok && rok:
		return OrType[E]{Children: concat(lo.Children, ro.Children)}
	case lok:
		return OrType[E]{Children: append(append([]Condition[E]{}, lo.Children...), rhs)}
	case rok:
		return OrType[E]{Children: append([]Condition[E]{lhs}, ro.Children...)}
	default:
		return OrType[E]{Children: []Condition[E]{lhs, rhs}}
	}
}

func concat[E any](a, b []Condition[E]) []Condition[E] {
	out := make([]Condition[E], 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
