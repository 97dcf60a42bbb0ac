package variants

import (
	"time"

	"github.com/goliatone/go-variants/pkg/activity"
)

// Selection maps axis names to the chosen option keys. Any subset of the
// declared axes is valid, including none.
type Selection map[string]string

// Axis is a named dimension of variation. Options maps option keys to the
// fragment emitted when that key is selected.
type Axis struct {
	Name    string
	Options map[string]string
}

// Compound appends Fragment when every constrained axis is satisfied.
// Constraints maps an axis name to its acceptable option keys; axes that are
// not present in the map are unconstrained. A present key with an empty slice
// can only be satisfied by a defaulted axis.
type Compound struct {
	Constraints map[string][]string
	Fragment    string
	// When is an optional guard expression that must evaluate to true for the
	// rule to apply, in addition to the constraints.
	When string
}

// Definition is the static description a Resolver is built from.
type Definition struct {
	// Name identifies the definition in logs, traces and catalogs.
	Name string
	// Base is emitted first when set. A non-nil pointer to "" still counts
	// as provided.
	Base      *string
	Axes      []Axis
	Defaults  map[string]string
	// NullDefaults lists axes whose default is declared without a value.
	// They contribute no fragment but count as defaulted when compound
	// constraints are matched.
	NullDefaults []string
	Compounds    []Compound
}

// String returns a pointer to v, handy for Definition.Base literals.
func String(v string) *string {
	return &v
}

// AxisNames returns the declared axis names in declaration order.
func (d Definition) AxisNames() []string {
	names := make([]string, 0, len(d.Axes))
	for _, axis := range d.Axes {
		names = append(names, axis.Name)
	}
	return names
}

func (d Definition) clone() Definition {
	out := Definition{
		Name:     d.Name,
		Defaults: cloneSelection(d.Defaults),
	}
	if d.Base != nil {
		out.Base = String(*d.Base)
	}
	if len(d.NullDefaults) > 0 {
		out.NullDefaults = append([]string(nil), d.NullDefaults...)
	}
	if len(d.Axes) > 0 {
		out.Axes = make([]Axis, len(d.Axes))
		for i, axis := range d.Axes {
			out.Axes[i] = Axis{
				Name:    axis.Name,
				Options: cloneStrings(axis.Options),
			}
		}
	}
	if len(d.Compounds) > 0 {
		out.Compounds = make([]Compound, len(d.Compounds))
		for i, rule := range d.Compounds {
			out.Compounds[i] = Compound{
				Constraints: cloneConstraints(rule.Constraints),
				Fragment:    rule.Fragment,
				When:        rule.When,
			}
		}
	}
	return out
}

// RuleContext carries the inputs available to compound guard expressions.
type RuleContext struct {
	// Selection holds the explicit choices made by the caller.
	Selection Selection
	// Defaults and Effective are filled in by the resolver before guards run.
	Defaults  Selection
	Effective Selection
	Now       *time.Time
	Args      map[string]any
	Metadata  map[string]any
	Scope     Scope
	ScopeName string
	// Variables lists extra identifiers the guard may reference. Values
	// missing from Effective are bound as null.
	Variables []string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	if ctx.Selection == nil {
		ctx.Selection = Selection{}
	}
	if ctx.Defaults == nil {
		ctx.Defaults = Selection{}
	}
	if ctx.Effective == nil {
		ctx.Effective = Selection{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) withDefaultScope(scope Scope) RuleContext {
	if ctx.Scope.isZero() && !scope.isZero() {
		ctx.Scope = scope.clone()
	}
	if ctx.ScopeName == "" && ctx.Scope.Name != "" {
		ctx.ScopeName = ctx.Scope.Name
	}
	return ctx
}

func (ctx RuleContext) scopeBinding() map[string]any {
	if binding := scopeToBinding(ctx.Scope); binding != nil {
		return binding
	}
	if ctx.ScopeName == "" {
		return nil
	}
	return map[string]any{"name": ctx.ScopeName}
}

// axisBindings returns the effective axis values keyed by variable name.
// Declared variables without a value are bound to nil.
func (ctx RuleContext) axisBindings() map[string]any {
	out := make(map[string]any, len(ctx.Variables)+len(ctx.Effective))
	for _, name := range ctx.Variables {
		if !bindableIdentifier(name) {
			continue
		}
		out[name] = nil
	}
	for name, value := range ctx.Effective {
		if !bindableIdentifier(name) {
			continue
		}
		out[name] = value
	}
	return out
}

// Evaluator executes guard expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable guard program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct {
	variables []string
}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// CompileWithVariables declares identifiers the expression may reference.
// Engines that type-check ahead of time (CEL) need them at compile time.
func CompileWithVariables(names ...string) CompileOption {
	return compileOptionFunc(func(cfg *compileConfig) {
		cfg.variables = append(cfg.variables, names...)
	})
}

func applyCompileOptions(opts []CompileOption) compileConfig {
	cfg := compileConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt.applyCompileOption(&cfg)
		}
	}
	return cfg
}

// Option configures a Resolver.
type Option func(*resolverConfig)

type resolverConfig struct {
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	logger          ResolveLogger
	schemaGenerator SchemaGenerator
	scope           Scope
	activityHooks   activity.Hooks
}

func applyOptions(opts []Option) resolverConfig {
	cfg := resolverConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator configures the engine used for compound guards.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *resolverConfig) {
		cfg.evaluator = e
	}
}

// WithSchemaGenerator configures a custom schema generator implementation.
func WithSchemaGenerator(generator SchemaGenerator) Option {
	return func(cfg *resolverConfig) {
		cfg.schemaGenerator = generator
	}
}

// WithScope configures the default scope metadata exposed to guards.
func WithScope(scope Scope) Option {
	return func(cfg *resolverConfig) {
		cfg.scope = scope.clone()
	}
}

func scopeToBinding(scope Scope) map[string]any {
	if scope.isZero() {
		return nil
	}
	binding := map[string]any{
		"name":     scope.Name,
		"label":    scope.Label,
		"priority": scope.Priority,
	}
	if len(scope.Metadata) > 0 {
		binding["metadata"] = copyMetadata(scope.Metadata)
	}
	return binding
}

func cloneSelection(src map[string]string) Selection {
	if src == nil {
		return nil
	}
	out := make(Selection, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func cloneStrings(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func cloneConstraints(src map[string][]string) map[string][]string {
	if src == nil {
		return nil
	}
	out := make(map[string][]string, len(src))
	for key, values := range src {
		if values == nil {
			out[key] = []string{}
			continue
		}
		out[key] = append([]string{}, values...)
	}
	return out
}

func bindableIdentifier(name string) bool {
	if name == "" || reservedBinding(name) {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func reservedBinding(name string) bool {
	switch name {
	case "selection", "defaults", "effective", "args", "metadata", "scope", "now", "call",
		"true", "false", "null", "nil", "in", "not":
		return true
	default:
		return false
	}
}
