//go:build js_eval

package variants

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
	timeout  time.Duration
}

// NewJSEvaluator constructs an Evaluator backed by goja. Each evaluation runs
// in a fresh runtime, so compiled programs can be shared across goroutines.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		cache:    cfg.cache,
		registry: cfg.registry,
		timeout:  cfg.timeout,
	}
}

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, program)
}

func (e *jsEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{
		evaluator: e,
		program:   program,
	}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	key := "js:" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("guard", e.wrapExpression(expression), false)
	if err != nil {
		return nil, wrapEvaluatorError("js", err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *jsEvaluator) run(ctx RuleContext, program *goja.Program) (any, error) {
	vm := goja.New()
	if err := e.injectContext(vm, ctx); err != nil {
		return nil, wrapEvaluatorError("js", err)
	}
	if e.timeout > 0 {
		timer := time.AfterFunc(e.timeout, func() {
			vm.Interrupt("guard timed out")
		})
		defer timer.Stop()
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, wrapEvaluatorError("js", err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) injectContext(vm *goja.Runtime, ctx RuleContext) error {
	bindings := ctx.axisBindings()
	bindings["now"] = ctx.timestamp()
	bindings["args"] = ctx.Args
	bindings["metadata"] = ctx.Metadata
	bindings["selection"] = map[string]string(ctx.Selection)
	bindings["defaults"] = map[string]string(ctx.Defaults)
	bindings["effective"] = map[string]string(ctx.Effective)
	bindings["scope"] = ctx.scopeBinding()
	for key, value := range bindings {
		if err := vm.Set(key, value); err != nil {
			return err
		}
	}
	if e.registry == nil {
		return nil
	}
	if err := vm.Set("call", func(name string, arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}); err != nil {
		return err
	}
	for _, name := range e.registry.Names() {
		fn := name
		if err := vm.Set(fn, func(arguments ...any) (any, error) {
			return e.registry.Call(fn, arguments...)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (e *jsEvaluator) wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	evaluator *jsEvaluator
	program   *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("js", fmt.Errorf("compiled rule missing evaluator"))
	}
	return r.evaluator.run(ctx.withDefaults(), r.program)
}

func jsEvaluatorAvailable() bool {
	return true
}
