package variants

// ResolveFunc composes the output string for a selection.
type ResolveFunc func(Selection) string

// Resolver is an immutable, concurrency safe resolver built from a
// Definition. All state is captured at construction; Resolve never mutates it.
type Resolver struct {
	def      Definition
	order    []string
	axes     map[string]map[string]string
	defaults Selection
	// defaulted holds every axis with a default entry, valued or not.
	defaulted map[string]struct{}
	rules     []compiledCompound

	evaluator Evaluator
	cfg       resolverConfig
}

// Build returns a resolve closure for def. It never validates; malformed
// definitions only show up as missing fragments at resolve time.
func Build(def Definition) ResolveFunc {
	return New(def).Func()
}

// New constructs a Resolver from def. The definition is copied so later
// mutations by the caller have no effect.
func New(def Definition, opts ...Option) *Resolver {
	cfg := applyOptions(opts)
	copied := def.clone()

	r := &Resolver{
		def:      copied,
		order:    make([]string, 0, len(copied.Axes)),
		axes:     make(map[string]map[string]string, len(copied.Axes)),
		defaults: copied.Defaults,
		cfg:      cfg,
	}
	r.defaulted = make(map[string]struct{}, len(copied.Defaults)+len(copied.NullDefaults))
	for name := range copied.Defaults {
		r.defaulted[name] = struct{}{}
	}
	for _, name := range copied.NullDefaults {
		r.defaulted[name] = struct{}{}
	}
	for _, axis := range copied.Axes {
		if _, seen := r.axes[axis.Name]; seen {
			continue
		}
		options := axis.Options
		if options == nil {
			options = map[string]string{}
		}
		r.order = append(r.order, axis.Name)
		r.axes[axis.Name] = options
	}
	r.rules = r.compileCompounds(copied.Compounds)
	return r
}

// Load constructs a Resolver and runs strict validation, returning the
// joined validation errors when the definition is inconsistent.
func Load(def Definition, opts ...Option) (*Resolver, error) {
	r := New(def, opts...)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Func exposes Resolve as a plain closure.
func (r *Resolver) Func() ResolveFunc {
	return r.Resolve
}

// Name returns the definition name.
func (r *Resolver) Name() string {
	if r == nil {
		return ""
	}
	return r.def.Name
}

// Definition returns a copy of the definition the resolver was built from.
func (r *Resolver) Definition() Definition {
	if r == nil {
		return Definition{}
	}
	return r.def.clone()
}

// Axes returns the axis names in output order.
func (r *Resolver) Axes() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// RequiredAxes lists axes without a default, i.e. the keys a caller must
// supply to get a fragment for every axis.
func (r *Resolver) RequiredAxes() []string {
	if r == nil {
		return nil
	}
	var required []string
	for _, name := range r.order {
		if _, ok := r.defaults[name]; ok {
			continue
		}
		required = append(required, name)
	}
	return required
}

func (r *Resolver) programCache() ProgramCache {
	return r.cfg.programCache
}

func (r *Resolver) functionRegistry() *FunctionRegistry {
	return r.cfg.functions
}

func (r *Resolver) resolveLogger() ResolveLogger {
	if r.cfg.logger != nil {
		return r.cfg.logger
	}
	return noopResolveLogger{}
}

func (r *Resolver) schemaGenerator() SchemaGenerator {
	if r == nil || r.cfg.schemaGenerator == nil {
		return DefaultSchemaGenerator()
	}
	return r.cfg.schemaGenerator
}
