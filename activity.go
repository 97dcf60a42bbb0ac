package variants

import "github.com/goliatone/go-variants/pkg/activity"

// WithActivityHooks attaches hooks notified when a Catalog registers,
// replaces or removes this resolver. Nil hooks are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := hooks.Clone()
	return func(cfg *resolverConfig) {
		cfg.activityHooks = normalized
	}
}

// ActivityHooks returns a copy of the hooks configured on the resolver.
func (r *Resolver) ActivityHooks() activity.Hooks {
	if r == nil {
		return nil
	}
	return r.cfg.activityHooks.Clone()
}

// summarize describes r for activity metadata.
func (r *Resolver) summarize() *activity.DefinitionSummary {
	summary := &activity.DefinitionSummary{
		Axes:      r.Axes(),
		Defaults:  cloneSelection(r.defaults),
		Compounds: len(r.rules),
		HasBase:   r.def.Base != nil,
	}
	for i := range r.rules {
		if r.rules[i].when != "" {
			summary.Guarded++
		}
	}
	return summary
}
