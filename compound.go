package variants

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoEvaluator is returned when a guard is present but no engine could be
// configured for it.
var ErrNoEvaluator = errors.New("variants: evaluator not configured")

type compiledCompound struct {
	// constraints keeps the rule's axes. An empty set only matches defaulted axes.
	constraints map[string]map[string]struct{}
	fragment    string
	when        string
	program     CompiledRule
	engine      string
	compileErr  error
	index       int
}

// satisfied reports whether every constrained axis is either explicitly set
// to an acceptable key or absent from sel with any default present. The
// default's value is not checked against the acceptable set, and the axis
// catalog is never consulted.
func (c *compiledCompound) satisfied(sel Selection, defaulted map[string]struct{}) bool {
	for axis, acceptable := range c.constraints {
		if value, ok := sel[axis]; ok {
			if _, member := acceptable[value]; member {
				continue
			}
			return false
		}
		if _, hasDefault := defaulted[axis]; hasDefault {
			continue
		}
		return false
	}
	return true
}

// allow runs the guard. Compile failures, runtime failures and non-boolean
// results all deny the rule.
func (c *compiledCompound) allow(ctx RuleContext) (bool, error) {
	if c.compileErr != nil {
		return false, c.compileErr
	}
	if c.program == nil {
		return false, wrapEvaluationError(c.engine, c.when, c.index, ErrNoEvaluator)
	}
	value, err := c.program.Evaluate(ctx)
	if err != nil {
		return false, wrapEvaluationError(c.engine, c.when, c.index, err)
	}
	allowed, ok := value.(bool)
	if !ok {
		return false, wrapEvaluationError(c.engine, c.when, c.index, fmt.Errorf("guard must return bool, got %T", value))
	}
	return allowed, nil
}

func (r *Resolver) compileCompounds(rules []Compound) []compiledCompound {
	if len(rules) == 0 {
		return nil
	}
	out := make([]compiledCompound, len(rules))
	variables := r.guardVariables()
	for i, rule := range rules {
		compiled := compiledCompound{
			constraints: make(map[string]map[string]struct{}, len(rule.Constraints)),
			fragment:    rule.Fragment,
			when:        rule.When,
			index:       i,
		}
		for axis, keys := range rule.Constraints {
			set := make(map[string]struct{}, len(keys))
			for _, key := range keys {
				set[key] = struct{}{}
			}
			compiled.constraints[axis] = set
		}
		if rule.When != "" {
			r.compileGuard(&compiled, variables)
		}
		out[i] = compiled
	}
	return out
}

func (r *Resolver) compileGuard(rule *compiledCompound, variables []string) {
	evaluator, err := r.resolveEvaluator()
	if err != nil {
		rule.compileErr = wrapEvaluationError("", rule.when, rule.index, err)
		return
	}
	rule.engine = evaluatorEngineName(evaluator)
	program, err := evaluator.Compile(rule.when, CompileWithVariables(variables...))
	if err != nil {
		rule.compileErr = wrapEvaluationError(rule.engine, rule.when, rule.index, err)
		return
	}
	rule.program = program
}

// guardVariables collects every axis name a guard could reference: declared
// axes, defaulted axes and constrained axes.
func (r *Resolver) guardVariables() []string {
	seen := map[string]struct{}{}
	for _, name := range r.order {
		seen[name] = struct{}{}
	}
	for name := range r.defaulted {
		seen[name] = struct{}{}
	}
	for _, rule := range r.def.Compounds {
		for name := range rule.Constraints {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		if bindableIdentifier(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// resolveEvaluator returns the configured evaluator, defaulting to expr.
func (r *Resolver) resolveEvaluator() (Evaluator, error) {
	if r.evaluator != nil {
		return r.evaluator, nil
	}
	if r.cfg.evaluator != nil {
		r.evaluator = r.cfg.evaluator
		return r.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cache := r.programCache(); cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := r.functionRegistry(); registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	r.evaluator = defaultEvaluator
	return defaultEvaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*variants.exprEvaluator":
		return "expr"
	case "*variants.celEvaluator":
		return "cel"
	case "*variants.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
