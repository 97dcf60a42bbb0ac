package variants

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError captures guard metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	// Rule is the compound rule index in declaration order. It is only
	// meaningful when HasRule is true.
	Rule    int
	HasRule bool
	Err     error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	engine := e.Engine
	if engine == "" {
		engine = "unknown"
	}
	if !e.HasRule {
		return fmt.Sprintf("variants: %s guard %s: %v", engine, describeExpression(e.Expr), e.Err)
	}
	return fmt.Sprintf("variants: %s guard %s rule=%d: %v", engine, describeExpression(e.Expr), e.Rule, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "variants:") {
		return err
	}
	return fmt.Errorf("variants: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr string, rule int, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if !evalErr.HasRule {
			evalErr.Rule = rule
			evalErr.HasRule = true
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Rule:    rule,
		HasRule: true,
		Err:     err,
	}
}
