package variants

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr evaluator.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// exprEvaluator runs guards using github.com/expr-lang/expr. Undefined
// identifiers evaluate to nil so guards can reference axes that are unset.
type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Evaluate compiles and runs expression against ctx.
func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program, e.environment(ctx))
	if err != nil {
		return nil, wrapEvaluatorError("expr", err)
	}
	return result, nil
}

// Compile returns a compiled rule that reuses the program per invocation.
func (e *exprEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &exprCompiledRule{
		evaluator:  e,
		program:    program,
		expression: expression,
	}, nil
}

func (e *exprEvaluator) loadOrCompile(expression string) (*exprvm.Program, error) {
	key := "expr:" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range e.registryNames() {
		options = append(options, exprlang.Function(name, e.registryFunction(name)))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapEvaluatorError("expr", err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

type exprCompiledRule struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
}

func (r *exprCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("compiled rule missing evaluator"))
	}
	ctx = ctx.withDefaults()
	if r.program == nil {
		return r.evaluator.Evaluate(ctx, r.expression)
	}
	result, err := exprlang.Run(r.program, r.evaluator.environment(ctx))
	if err != nil {
		return nil, wrapEvaluatorError("expr", err)
	}
	return result, nil
}

func (e *exprEvaluator) environment(ctx RuleContext) map[string]any {
	env := ctx.axisBindings()
	env["now"] = ctx.timestamp()
	env["args"] = ctx.Args
	env["metadata"] = ctx.Metadata
	env["selection"] = map[string]string(ctx.Selection)
	env["defaults"] = map[string]string(ctx.Defaults)
	env["effective"] = map[string]string(ctx.Effective)
	if binding := ctx.scopeBinding(); binding != nil {
		env["scope"] = binding
	}
	if e.registry != nil {
		env["call"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		}
	}
	return env
}

func (e *exprEvaluator) registryNames() []string {
	if e == nil || e.registry == nil {
		return nil
	}
	return e.registry.Names()
}

func (e *exprEvaluator) registryFunction(name string) func(...any) (any, error) {
	return func(arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}
}
