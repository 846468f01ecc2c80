package expreval

import "errors"

var (
	// ErrUnsafeOperation is returned when an expression calls one of the names
	// the sandbox forbids (exec, os, env, syscall, import).
	ErrUnsafeOperation = errors.New("expreval: unsafe operation in expression")
	// ErrInvalidExpression is returned when an expression fails to compile.
	ErrInvalidExpression = errors.New("expreval: invalid expression")
	// ErrEvaluationTimeout is returned when the supplied context is already done
	// when Evaluate is called.
	ErrEvaluationTimeout = errors.New("expreval: evaluation timed out")
	// ErrNilContext is returned when Evaluate is called with a nil bindings map.
	ErrNilContext = errors.New("expreval: nil evaluation context")
)
