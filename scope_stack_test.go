package variants

import (
	"errors"
	"testing"
)

func TestNewStackOrdersByPriority(t *testing.T) {
	stack, err := NewStack(
		NewLayer(NewScope("theme", 10), Selection{"color": "blue"}),
		NewLayer(NewScope("instance", 30), Selection{"size": "large"}),
		NewLayer(NewScope("component", 20), nil),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	layers := stack.Layers()
	if len(layers) != 3 || stack.Len() != 3 {
		t.Fatalf("expected three layers, got %d", len(layers))
	}
	names := []string{layers[0].Scope.Name, layers[1].Scope.Name, layers[2].Scope.Name}
	if names[0] != "instance" || names[1] != "component" || names[2] != "theme" {
		t.Fatalf("unexpected order %v", names)
	}

	layers[0].Selection["size"] = "small"
	if stack.Layers()[0].Selection["size"] != "large" {
		t.Fatalf("expected Layers to return copies")
	}
}

func TestNewStackErrors(t *testing.T) {
	cases := []struct {
		name   string
		layers []Layer
		want   error
	}{
		{name: "missing_name", layers: []Layer{NewLayer(NewScope("", 1), nil)}, want: ErrScopeNameRequired},
		{name: "duplicate_name", layers: []Layer{NewLayer(NewScope("a", 1), nil), NewLayer(NewScope("a", 2), nil)}, want: ErrDuplicateScopeName},
		{name: "duplicate_priority", layers: []Layer{NewLayer(NewScope("a", 1), nil), NewLayer(NewScope("b", 1), nil)}, want: ErrPriorityOrder},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewStack(tc.layers...); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, err)
			}
		})
	}
}

func TestStackMergeOrigins(t *testing.T) {
	stack, err := ThemeComponentInstance(
		Selection{"color": "blue", "size": "small"},
		Selection{"size": "medium"},
		Selection{"color": "red"},
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	merged := stack.Merge()
	if merged.Selection["color"] != "red" || merged.Selection["size"] != "medium" {
		t.Fatalf("unexpected merge %v", merged.Selection)
	}
	if merged.Origins["color"].Name != "instance" || merged.Origins["size"].Name != "component" {
		t.Fatalf("unexpected origins %+v", merged.Origins)
	}

	var empty *Stack
	if got := empty.Merge(); len(got.Selection) != 0 || got.Origins == nil {
		t.Fatalf("expected empty merge for nil stack, got %+v", got)
	}
}

func TestResolveLayersTreatsLayerValuesAsExplicit(t *testing.T) {
	r := New(defaultedCompoundDefinition())

	themeOnly, err := ThemeComponentInstance(Selection{"color": "blue"}, nil, nil)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	if got := r.ResolveLayers(themeOnly); got != "hello world text-blue h-medium compound-1" {
		t.Fatalf("unexpected output %q", got)
	}

	overridden, err := ThemeComponentInstance(Selection{"color": "blue"}, nil, Selection{"color": "red"})
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	out, trace := r.ResolveLayersWithTrace(overridden)
	if out != "hello world text-red h-medium" {
		t.Fatalf("unexpected output %q", out)
	}
	color := trace.Axes[0]
	if color.Source != SourceLayer || color.Scope != "instance" || color.Key != "red" {
		t.Fatalf("unexpected color trace %+v", color)
	}
	if size := trace.Axes[1]; size.Source != SourceDefault {
		t.Fatalf("expected size from defaults, got %+v", size)
	}

	if got := r.ResolveLayers(nil); got != "hello world text-blue h-medium compound-1" {
		t.Fatalf("expected nil stack to behave like an empty selection, got %q", got)
	}
}

func TestLayerOptions(t *testing.T) {
	meta := map[string]any{"tenant": "acme"}
	scope := NewScope("tenant", 5, WithScopeLabel("Tenant"), WithScopeMetadata(meta), nil)
	layer := NewLayer(scope, Selection{"color": "red"}, WithSnapshotID("snap-1"), nil)
	meta["tenant"] = "changed"
	if layer.Scope.Metadata["tenant"] != "acme" || layer.Scope.Label != "Tenant" {
		t.Fatalf("expected scope metadata copied, got %+v", layer.Scope)
	}
	if layer.SnapshotID != "snap-1" {
		t.Fatalf("expected snapshot id, got %q", layer.SnapshotID)
	}
}
