package variants

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-variants/layering"
)

// Scope names a precedence bucket for selections (theme, component,
// instance, ...). Higher priority values represent stronger layers.
type Scope struct {
	Name     string
	Label    string
	Priority int
	Metadata map[string]any
}

// ScopeOption configures metadata on Scope creation.
type ScopeOption func(*scopeConfig)

type scopeConfig struct {
	label    string
	metadata map[string]any
}

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.label = label
	}
}

// WithScopeMetadata attaches arbitrary metadata to the scope. The map is
// copied.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(cfg *scopeConfig) {
		if len(metadata) == 0 {
			return
		}
		cfg.metadata = copyMetadata(metadata)
	}
}

// NewScope builds a Scope. Validation is deferred to NewStack.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	cfg := scopeConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return Scope{
		Name:     name,
		Label:    cfg.label,
		Priority: priority,
		Metadata: copyMetadata(cfg.metadata),
	}
}

func (s Scope) clone() Scope {
	return Scope{
		Name:     s.Name,
		Label:    s.Label,
		Priority: s.Priority,
		Metadata: copyMetadata(s.Metadata),
	}
}

func (s Scope) isZero() bool {
	return s.Name == "" && s.Label == "" && s.Priority == 0 && len(s.Metadata) == 0
}

// Layer pairs a scope with the selection captured for it.
type Layer struct {
	Scope      Scope
	Selection  Selection
	SnapshotID string
}

// LayerOption configures optional metadata for a layer.
type LayerOption func(*Layer)

// WithSnapshotID sets the identifier reported in traces and logs.
func WithSnapshotID(id string) LayerOption {
	return func(layer *Layer) {
		layer.SnapshotID = id
	}
}

// NewLayer constructs a Layer with copies of the scope and selection.
func NewLayer(scope Scope, selection Selection, opts ...LayerOption) Layer {
	layer := Layer{
		Scope:     scope.clone(),
		Selection: cloneSelection(selection),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&layer)
	}
	return layer
}

var (
	// ErrScopeNameRequired indicates a missing scope name.
	ErrScopeNameRequired = errors.New("scope: name must be provided")
	// ErrDuplicateScopeName indicates multiple layers share a scope name.
	ErrDuplicateScopeName = errors.New("scope: names must be unique")
	// ErrPriorityOrder indicates duplicate priorities.
	ErrPriorityOrder = errors.New("scope: priorities must be strictly ordered")
)

// Stack is an immutable set of selection layers ordered strongest first.
type Stack struct {
	layers []Layer
}

// NewStack validates and sorts layers so the highest priority comes first.
func NewStack(layers ...Layer) (*Stack, error) {
	if len(layers) == 0 {
		return &Stack{}, nil
	}

	seenNames := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		layer := cloneLayer(layer)
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seenNames[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seenNames[layer.Scope.Name] = struct{}{}
		copied[i] = layer
	}

	sort.Slice(copied, func(i, j int) bool {
		if copied[i].Scope.Priority == copied[j].Scope.Priority {
			return copied[i].Scope.Name < copied[j].Scope.Name
		}
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})

	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority <= copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}

	return &Stack{layers: copied}, nil
}

// Layers returns a copy of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = cloneLayer(s.layers[i])
	}
	return out
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// LayeredSelection is the effective selection of a Stack together with the
// scope that supplied each axis.
type LayeredSelection struct {
	Selection Selection
	Origins   map[string]Scope
}

// Merge flattens the stack. The strongest layer that sets an axis wins.
func (s *Stack) Merge() LayeredSelection {
	if s == nil || len(s.layers) == 0 {
		return LayeredSelection{Selection: Selection{}, Origins: map[string]Scope{}}
	}
	selections := make([]map[string]string, len(s.layers))
	for i := range s.layers {
		selections[i] = s.layers[i].Selection
	}
	merged, origin := layering.Merge(selections...)
	origins := make(map[string]Scope, len(origin))
	for axis, index := range origin {
		origins[axis] = s.layers[index].Scope.clone()
	}
	return LayeredSelection{
		Selection: Selection(merged),
		Origins:   origins,
	}
}

// ResolveLayers resolves the merged selection of stack. Values supplied by
// any layer count as explicit; only axes no layer sets fall back to the
// definition defaults.
func (r *Resolver) ResolveLayers(stack *Stack) string {
	merged := stack.Merge()
	out, _ := r.run(resolveInput{
		ctx:    RuleContext{Selection: merged.Selection},
		layers: merged.Origins,
	}, nil)
	return out
}

// ResolveLayersWithTrace is ResolveLayers plus provenance. Axis traces name
// the supplying scope.
func (r *Resolver) ResolveLayersWithTrace(stack *Stack) (string, Trace) {
	merged := stack.Merge()
	trace := &Trace{}
	out, _ := r.run(resolveInput{
		ctx:    RuleContext{Selection: merged.Selection},
		layers: merged.Origins,
	}, trace)
	return out, *trace
}

func cloneLayer(layer Layer) Layer {
	return Layer{
		Scope:      layer.Scope.clone(),
		Selection:  cloneSelection(layer.Selection),
		SnapshotID: layer.SnapshotID,
	}
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
