package variants

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function is a helper callable from compound guards.
type Function func(args ...any) (any, error)

// FunctionRegistry stores guard helpers keyed by lower-cased name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name. Names are case-insensitive and must be
// usable as guard identifiers.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("variants: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("variants: function name must not be empty")
	}
	key := strings.ToLower(name)
	if !bindableIdentifier(key) {
		return fmt.Errorf("variants: function name %q is not a valid identifier", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("variants: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy so evaluators are isolated from later
// registrations.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("variants: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("variants: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry exposes registry to guards compiled by the default
// evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *resolverConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers a single guard helper. Invalid or duplicate
// names are ignored; use FunctionRegistry.Register to observe the error.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *resolverConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}
