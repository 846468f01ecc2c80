// Package expreval sandboxes expr-lang expression evaluation for condition
// leaves and trigger-file authored predicates: expressions run against a
// plain map of bindings, disallow mutating or I/O-capable builtins, and
// compiled programs are cached by source text so a hot condition leaf
// doesn't re-parse on every event.
package expreval

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Evaluator compiles and runs boolean/arbitrary-valued expr-lang expressions
// against a map of named bindings.
type Evaluator interface {
	// Evaluate compiles (or fetches from cache) expression and runs it against
	// bindings, returning its result.
	Evaluate(ctx context.Context, expression string, bindings map[string]any) (any, error)
	// EvaluateBool is Evaluate with the result coerced to bool; a non-bool
	// result is an error.
	EvaluateBool(ctx context.Context, expression string, bindings map[string]any) (bool, error)
}

type exprEvaluator struct {
	mu           sync.Mutex
	programCache map[string]*vm.Program
}

// NewEvaluator returns an Evaluator with an empty program cache.
func NewEvaluator() Evaluator {
	return &exprEvaluator{programCache: make(map[string]*vm.Program)}
}

func (e *exprEvaluator) Evaluate(ctx context.Context, expression string, bindings map[string]any) (any, error) {
	if bindings == nil {
		return nil, ErrNilContext
	}
	select {
	case <-ctx.Done():
		return nil, ErrEvaluationTimeout
	default:
	}

	program, err := e.getOrCompile(expression)
	if err != nil {
		return nil, err
	}

	result, err := expr.Run(program, bindings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return result, nil
}

func (e *exprEvaluator) EvaluateBool(ctx context.Context, expression string, bindings map[string]any) (bool, error) {
	result, err := e.Evaluate(ctx, expression, bindings)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("%w: expression %q did not evaluate to a bool", ErrInvalidExpression, expression)
	}
	return b, nil
}

func (e *exprEvaluator) getOrCompile(expression string) (*vm.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok := e.programCache[expression]; ok {
		return program, nil
	}

	if err := validateExpression(expression); err != nil {
		return nil, err
	}

	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	e.programCache[expression] = program
	return program, nil
}

// unsafeCallPattern matches a call into a builtin with side effects or I/O
// reach — none of which belong in a condition predicate. expr-lang itself
// has no such builtins by default, but the pattern also catches a host
// binding named to look like one (e.g. a leaked "exec" helper in bindings).
var unsafeCallPattern = regexp.MustCompile(`\b(exec|os|env|syscall|import)\s*\(`)

// validateExpression rejects an expression that calls into a disallowed name
// before it's ever compiled, so a sandbox escape attempt fails on the first
// Evaluate call, before any program for it is built or run.
func validateExpression(expression string) error {
	if unsafeCallPattern.MatchString(expression) {
		return ErrUnsafeOperation
	}
	return nil
}
