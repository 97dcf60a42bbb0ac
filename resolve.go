package variants

import (
	"errors"
	"strings"
	"time"
)

// resolveInput bundles everything one resolution needs. layers records which
// scope supplied an axis value when the selection came from a Stack.
type resolveInput struct {
	ctx    RuleContext
	layers map[string]Scope
}

// Resolve composes base, axis and compound fragments for sel.
func (r *Resolver) Resolve(sel Selection) string {
	return r.ResolveWith(RuleContext{Selection: sel})
}

// ResolveWith resolves ctx.Selection and exposes ctx.Args, ctx.Metadata and
// ctx.Scope to compound guards.
func (r *Resolver) ResolveWith(ctx RuleContext) string {
	out, _ := r.run(resolveInput{ctx: ctx}, nil)
	return out
}

// ResolveWithTrace resolves sel and reports where every fragment came from.
func (r *Resolver) ResolveWithTrace(sel Selection) (string, Trace) {
	trace := &Trace{}
	out, _ := r.run(resolveInput{ctx: RuleContext{Selection: sel}}, trace)
	return out, *trace
}

func (r *Resolver) run(in resolveInput, trace *Trace) (string, error) {
	if r == nil {
		return "", nil
	}
	var start time.Time
	if r.cfg.logger != nil {
		start = time.Now()
	}
	sel := in.ctx.Selection

	fragments := make([]string, 0, len(r.order)+len(r.rules)+1)
	if r.def.Base != nil {
		fragments = append(fragments, *r.def.Base)
	}
	if trace != nil {
		trace.Definition = r.def.Name
		trace.Base = r.def.Base
	}

	for _, name := range r.order {
		fragment, step := r.axisFragment(name, sel, in.layers)
		if step.Found {
			fragments = append(fragments, fragment)
		}
		if trace != nil {
			trace.Axes = append(trace.Axes, step)
		}
	}

	var (
		matched []int
		errs    []error
		guardIn *RuleContext
	)
	for i := range r.rules {
		rule := &r.rules[i]
		ok := rule.satisfied(sel, r.defaulted)
		step := CompoundTrace{
			Index:    i,
			Fragment: rule.fragment,
			Guard:    rule.when,
		}
		if ok && rule.when != "" {
			if guardIn == nil {
				prepared := r.guardContext(in.ctx)
				guardIn = &prepared
			}
			var err error
			ok, err = rule.allow(*guardIn)
			if err != nil {
				errs = append(errs, err)
				step.GuardErr = err.Error()
			}
		}
		if ok {
			fragments = append(fragments, rule.fragment)
			matched = append(matched, i)
		}
		step.Matched = ok
		if trace != nil {
			trace.Compounds = append(trace.Compounds, step)
		}
	}

	out := strings.Join(fragments, " ")
	err := errors.Join(errs...)
	if trace != nil {
		trace.Output = out
	}
	if r.cfg.logger != nil {
		r.resolveLogger().LogResolve(ResolveLogEvent{
			Definition: r.def.Name,
			Selection:  cloneSelection(sel),
			Output:     out,
			Matched:    matched,
			Duration:   time.Since(start),
			Err:        err,
		})
	}
	return out, err
}

// axisFragment picks the fragment for one axis. An explicit key never falls
// back to the default, even when it is not a known option.
func (r *Resolver) axisFragment(name string, sel Selection, layers map[string]Scope) (string, AxisTrace) {
	options := r.axes[name]
	step := AxisTrace{Axis: name, Source: SourceNone}

	if key, ok := sel[name]; ok {
		step.Source = SourceExplicit
		if scope, fromLayer := layers[name]; fromLayer {
			step.Source = SourceLayer
			step.Scope = scope.Name
		}
		step.Key = key
		fragment, found := options[key]
		step.Fragment = fragment
		step.Found = found
		return fragment, step
	}

	key, ok := r.defaults[name]
	if !ok {
		return "", step
	}
	step.Source = SourceDefault
	step.Key = key
	fragment, found := options[key]
	step.Fragment = fragment
	step.Found = found
	return fragment, step
}

// effective overlays the explicit selection on the defaults. Undeclared axes
// pass through so guards can inspect them.
func (r *Resolver) effective(sel Selection) Selection {
	out := make(Selection, len(r.defaults)+len(sel))
	for key, value := range r.defaults {
		out[key] = value
	}
	for key, value := range sel {
		out[key] = value
	}
	return out
}

func (r *Resolver) guardContext(ctx RuleContext) RuleContext {
	ctx = ctx.withDefaultScope(r.cfg.scope)
	ctx.Defaults = cloneSelection(r.defaults)
	ctx.Effective = r.effective(ctx.Selection)
	ctx.Variables = append(append([]string(nil), r.order...), ctx.Variables...)
	return ctx.withDefaults()
}
