package variants

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	functions "github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

var anySliceType = reflect.TypeOf([]any{})

type celProgram struct {
	env       *celgo.Env
	program   celgo.Program
	variables []string
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Axis variables
// are declared as dyn; unset axes are bound to null.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression, ctx.axisVariables())
	if err != nil {
		return nil, err
	}
	return e.run(program, ctx)
}

func (e *celEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	cfg := applyCompileOptions(opts)
	program, err := e.loadOrCompile(expression, normalizeVariables(cfg.variables))
	if err != nil {
		return nil, err
	}
	return &celCompiledRule{
		evaluator:  e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string, variables []string) (*celProgram, error) {
	key := "cel:" + expression + "|" + strings.Join(variables, ",")
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(variables)
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluatorError("cel", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}

	bundle := &celProgram{
		env:       env,
		program:   prg,
		variables: variables,
	}
	if e.cache != nil {
		e.cache.Set(key, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(variables []string) (*celgo.Env, error) {
	stringMap := celgo.MapType(celgo.StringType, celgo.StringType)
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("metadata", celgo.DynType),
		celgo.Variable("scope", celgo.DynType),
		celgo.Variable("selection", stringMap),
		celgo.Variable("defaults", stringMap),
		celgo.Variable("effective", stringMap),
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call", celgo.Overload(
			"call_dyn",
			[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
			celgo.DynType,
			celgo.FunctionBinding(functions.FunctionOp(e.callBinding())),
		)))
	}
	for _, name := range variables {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) run(program *celProgram, ctx RuleContext) (any, error) {
	out, _, err := program.program.Eval(e.activation(program, ctx))
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) activation(program *celProgram, ctx RuleContext) map[string]any {
	activation := map[string]any{
		"now":       ctx.timestamp(),
		"args":      ctx.Args,
		"metadata":  ctx.Metadata,
		"selection": map[string]string(ctx.Selection),
		"defaults":  map[string]string(ctx.Defaults),
		"effective": map[string]string(ctx.Effective),
		"scope":     types.NullValue,
	}
	if binding := ctx.scopeBinding(); binding != nil {
		activation["scope"] = binding
	}
	for _, name := range program.variables {
		if value, ok := ctx.Effective[name]; ok {
			activation[name] = value
			continue
		}
		activation[name] = types.NullValue
	}
	return activation
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
	program    *celProgram
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("compiled rule missing evaluator"))
	}
	ctx = ctx.withDefaults()
	if r.program == nil {
		return r.evaluator.Evaluate(ctx, r.expression)
	}
	return r.evaluator.run(r.program, ctx)
}

// axisVariables lists the bindable identifiers known to ctx, sorted so cache
// keys are stable.
func (ctx RuleContext) axisVariables() []string {
	names := make([]string, 0, len(ctx.Variables)+len(ctx.Effective))
	names = append(names, ctx.Variables...)
	for name := range ctx.Effective {
		names = append(names, name)
	}
	return normalizeVariables(names)
}

func normalizeVariables(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !bindableIdentifier(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (e *celEvaluator) callBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("variants: function registry not configured")
		}
		if len(values) != 2 {
			return types.NewErr("variants: call requires a name and an argument list")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("variants: call name must be string")
		}
		native, err := values[1].ConvertToNative(anySliceType)
		if err != nil {
			return types.NewErr("variants: call arguments: %v", err)
		}
		result, err := e.registry.Call(name, native.([]any)...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
