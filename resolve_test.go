package variants

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

const baseText = "hello world"

func colorSizeAxes() []Axis {
	return []Axis{
		{Name: "color", Options: map[string]string{"red": "text-red", "green": "text-green", "blue": "text-blue"}},
		{Name: "size", Options: map[string]string{"small": "h-small", "medium": "h-medium", "large": "h-large"}},
	}
}

func matchingRulesDefinition() Definition {
	rule := func(fragment string, constraints map[string][]string) Compound {
		return Compound{Fragment: fragment, Constraints: constraints}
	}
	return Definition{
		Name: "button",
		Base: String(baseText),
		Axes: colorSizeAxes(),
		Compounds: []Compound{
			rule("success-1", map[string][]string{"color": {"green"}, "size": {"large"}}),
			rule("success-2", map[string][]string{"color": {"green"}}),
			rule("success-3", map[string][]string{"size": {"large"}}),
			rule("success-4", map[string][]string{"color": {"green", "blue"}, "size": {"large"}}),
			rule("success-5", map[string][]string{"color": {"blue", "green"}, "size": {"large"}}),
			rule("success-6", map[string][]string{"color": {"green", "green"}, "size": {"large"}}),
			rule("fail-1", map[string][]string{"color": {"green"}, "size": {"small"}}),
			rule("fail-2", map[string][]string{"color": {"blue"}, "size": {"large"}}),
			rule("fail-3", map[string][]string{"color": {"green"}, "size": {}}),
			rule("fail-4", map[string][]string{"color": {}, "size": {"large"}}),
		},
	}
}

func defaultedCompoundDefinition() Definition {
	return Definition{
		Base:     String(baseText),
		Axes:     colorSizeAxes(),
		Defaults: map[string]string{"size": "medium", "color": "blue"},
		Compounds: []Compound{
			{Fragment: "compound-1", Constraints: map[string][]string{"color": {"blue"}, "size": {"medium"}}},
		},
	}
}

func TestResolveScenarios(t *testing.T) {
	cases := []struct {
		name string
		def  Definition
		sel  Selection
		want string
	}{
		{name: "base_only_nil_selection", def: Definition{Base: String("X")}, sel: nil, want: "X"},
		{name: "base_only_ignores_unknown_axes", def: Definition{Base: String("X")}, sel: Selection{"color": "red"}, want: "X"},
		{name: "empty_definition", def: Definition{}, sel: Selection{"a": "b"}, want: ""},
		{name: "empty_base_is_emitted", def: Definition{Base: String(""), Axes: colorSizeAxes()}, sel: Selection{"color": "red"}, want: " text-red"},
		{name: "axes_without_base", def: Definition{Axes: colorSizeAxes()}, sel: Selection{"size": "small", "color": "red"}, want: "text-red h-small"},
		{name: "axis_declaration_order", def: Definition{Base: String(baseText), Axes: colorSizeAxes()}, sel: Selection{"size": "medium", "color": "green"}, want: "hello world text-green h-medium"},
		{name: "no_selection_no_defaults", def: Definition{Base: String(baseText), Axes: colorSizeAxes()}, sel: Selection{}, want: baseText},
		{name: "all_rules_with_empty_selection", def: matchingRulesDefinition(), sel: Selection{}, want: baseText},
		{
			name: "independent_rules_append_in_order",
			def:  matchingRulesDefinition(),
			sel:  Selection{"color": "green", "size": "large"},
			want: "hello world text-green h-large success-1 success-2 success-3 success-4 success-5 success-6",
		},
		{
			name: "defaults_apply",
			def:  Definition{Base: String(baseText), Axes: colorSizeAxes(), Defaults: map[string]string{"color": "blue", "size": "medium"}},
			sel:  Selection{},
			want: "hello world text-blue h-medium",
		},
		{
			name: "explicit_overrides_default",
			def:  Definition{Base: String(baseText), Axes: colorSizeAxes(), Defaults: map[string]string{"color": "blue", "size": "medium"}},
			sel:  Selection{"color": "green"},
			want: "hello world text-green h-medium",
		},
		{
			name: "partial_default",
			def:  Definition{Base: String(baseText), Axes: colorSizeAxes(), Defaults: map[string]string{"color": "blue"}},
			sel:  Selection{"size": "large"},
			want: "hello world text-blue h-large",
		},
		{
			name: "invalid_explicit_does_not_fall_back",
			def:  Definition{Base: String(baseText), Axes: colorSizeAxes(), Defaults: map[string]string{"color": "blue"}},
			sel:  Selection{"color": "purple"},
			want: baseText,
		},
		{
			name: "invalid_default_emits_nothing",
			def:  Definition{Axes: colorSizeAxes(), Defaults: map[string]string{"color": "purple", "size": "small"}},
			sel:  Selection{},
			want: "h-small",
		},
		{name: "compound_with_defaults", def: defaultedCompoundDefinition(), sel: Selection{}, want: "hello world text-blue h-medium compound-1"},
		{name: "compound_explicit_matching", def: defaultedCompoundDefinition(), sel: Selection{"color": "blue"}, want: "hello world text-blue h-medium compound-1"},
		{name: "compound_explicit_override_fails", def: defaultedCompoundDefinition(), sel: Selection{"color": "red"}, want: "hello world text-red h-medium"},
		{name: "compound_explicit_both_fails", def: defaultedCompoundDefinition(), sel: Selection{"color": "red", "size": "medium"}, want: "hello world text-red h-medium"},
		{
			name: "default_counts_as_match",
			def: Definition{
				Axes: []Axis{
					{Name: "color", Options: map[string]string{"blue": "b", "green": "g"}},
					{Name: "size", Options: map[string]string{"sm": "s", "md": "m"}},
				},
				Defaults:  map[string]string{"color": "green"},
				Compounds: []Compound{{Fragment: "X", Constraints: map[string][]string{"color": {"blue", "green"}, "size": {"md"}}}},
			},
			sel:  Selection{"size": "md"},
			want: "g m X",
		},
		{
			name: "default_value_outside_set_still_matches",
			def: Definition{
				Axes:      []Axis{{Name: "size", Options: map[string]string{"md": "m", "lg": "l"}}},
				Defaults:  map[string]string{"size": "md"},
				Compounds: []Compound{{Fragment: "large-only", Constraints: map[string][]string{"size": {"lg"}}}},
			},
			sel:  Selection{},
			want: "m large-only",
		},
		{
			name: "empty_set_matches_defaulted_axis",
			def: Definition{
				Axes:      []Axis{{Name: "size", Options: map[string]string{"md": "m"}}},
				Defaults:  map[string]string{"size": "md"},
				Compounds: []Compound{{Fragment: "empty", Constraints: map[string][]string{"size": nil}}},
			},
			sel:  Selection{},
			want: "m empty",
		},
		{
			name: "empty_set_never_matches_explicit",
			def: Definition{
				Axes:      []Axis{{Name: "size", Options: map[string]string{"md": "m"}}},
				Defaults:  map[string]string{"size": "md"},
				Compounds: []Compound{{Fragment: "empty", Constraints: map[string][]string{"size": {}}}},
			},
			sel:  Selection{"size": "md"},
			want: "m",
		},
		{
			name: "null_default_satisfies_constraint",
			def: Definition{
				Axes:         []Axis{{Name: "size", Options: map[string]string{"md": "m"}}},
				NullDefaults: []string{"size"},
				Compounds:    []Compound{{Fragment: "X", Constraints: map[string][]string{"size": {"lg"}}}},
			},
			sel:  Selection{},
			want: "X",
		},
		{
			name: "unconstrained_rule_always_matches",
			def:  Definition{Compounds: []Compound{{Fragment: "always"}}},
			sel:  nil,
			want: "always",
		},
		{
			name: "rule_on_undeclared_axis",
			def:  Definition{Compounds: []Compound{{Fragment: "ghost", Constraints: map[string][]string{"tone": {"warm"}}}}},
			sel:  Selection{"tone": "warm"},
			want: "ghost",
		},
		{
			name: "rule_accepts_key_missing_from_axis",
			def: Definition{
				Axes:      colorSizeAxes(),
				Compounds: []Compound{{Fragment: "purple-rule", Constraints: map[string][]string{"color": {"purple"}}}},
			},
			sel:  Selection{"color": "purple"},
			want: "purple-rule",
		},
		{
			name: "empty_fragments_are_kept",
			def: Definition{
				Base:      String("a"),
				Axes:      []Axis{{Name: "gap", Options: map[string]string{"none": ""}}},
				Compounds: []Compound{{Fragment: ""}},
			},
			sel:  Selection{"gap": "none"},
			want: "a  ",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			resolve := Build(tc.def)
			if got := resolve(tc.sel); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	resolve := Build(matchingRulesDefinition())
	sel := Selection{"color": "green", "size": "large"}
	first := resolve(sel)
	for i := 0; i < 5; i++ {
		if got := resolve(sel); got != first {
			t.Fatalf("call %d returned %q, expected %q", i, got, first)
		}
	}
	if len(sel) != 2 || sel["color"] != "green" {
		t.Fatalf("selection mutated: %v", sel)
	}
}

func TestBuildCopiesDefinition(t *testing.T) {
	def := defaultedCompoundDefinition()
	def.NullDefaults = []string{"tone"}
	resolve := Build(def)

	*def.Base = "changed"
	def.Axes[0].Options["blue"] = "changed"
	def.Axes[1].Name = "renamed"
	def.Defaults["color"] = "red"
	def.Compounds[0].Constraints["color"][0] = "red"
	def.Compounds[0].Fragment = "changed"
	def.NullDefaults[0] = "size"

	if got := resolve(Selection{}); got != "hello world text-blue h-medium compound-1" {
		t.Fatalf("resolver observed caller mutation: %q", got)
	}
}

func TestBuiltResolversAreIndependent(t *testing.T) {
	a := Build(Definition{Base: String("a"), Axes: colorSizeAxes()})
	b := Build(Definition{Base: String("b"), Axes: colorSizeAxes(), Defaults: map[string]string{"color": "red"}})
	if got := a(Selection{}); got != "a" {
		t.Fatalf("unexpected output from a: %q", got)
	}
	if got := b(Selection{}); got != "b text-red" {
		t.Fatalf("unexpected output from b: %q", got)
	}
}

func TestResolveConcurrentCalls(t *testing.T) {
	resolve := Build(matchingRulesDefinition())
	want := "hello world text-green h-large success-1 success-2 success-3 success-4 success-5 success-6"

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sel := Selection{"color": "green", "size": "large"}
			if i%2 == 1 {
				sel = Selection{"color": "red"}
			}
			got := resolve(sel)
			if i%2 == 0 && got != want {
				errs <- got
			}
			if i%2 == 1 && got != "hello world text-red" {
				errs <- got
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("unexpected concurrent output %q", got)
	}
}

func TestDuplicateAxisFirstDeclarationWins(t *testing.T) {
	def := Definition{Axes: []Axis{
		{Name: "size", Options: map[string]string{"sm": "first"}},
		{Name: "tone", Options: map[string]string{"warm": "w"}},
		{Name: "size", Options: map[string]string{"sm": "second"}},
	}}
	r := New(def)
	if got := r.Resolve(Selection{"size": "sm", "tone": "warm"}); got != "first w" {
		t.Fatalf("unexpected output %q", got)
	}
	if got := strings.Join(r.Axes(), ","); got != "size,tone" {
		t.Fatalf("unexpected axes %s", got)
	}
}

func TestRequiredAxes(t *testing.T) {
	def := Definition{
		Axes:     append(colorSizeAxes(), Axis{Name: "tone"}),
		Defaults: map[string]string{"size": "small"},
	}
	got := New(def).RequiredAxes()
	if strings.Join(got, ",") != "color,tone" {
		t.Fatalf("unexpected required axes %v", got)
	}
}

func TestResolveLoggerReceivesEvents(t *testing.T) {
	var events []ResolveLogEvent
	logger := ResolveLoggerFunc(func(evt ResolveLogEvent) {
		events = append(events, evt)
	})
	def := matchingRulesDefinition()
	r := New(def, WithResolveLogger(logger))

	sel := Selection{"color": "green", "size": "large"}
	out := r.Resolve(sel)

	if len(events) != 1 {
		t.Fatalf("expected one log event, got %d", len(events))
	}
	evt := events[0]
	if evt.Definition != "button" || evt.Output != out {
		t.Fatalf("unexpected event %+v", evt)
	}
	if fmt.Sprint(evt.Matched) != "[0 1 2 3 4 5]" {
		t.Fatalf("unexpected matched rules %v", evt.Matched)
	}
	if evt.Err != nil {
		t.Fatalf("unexpected error %v", evt.Err)
	}
	sel["color"] = "red"
	if evt.Selection["color"] != "green" {
		t.Fatalf("expected event selection to be a copy")
	}
}

func TestNilResolver(t *testing.T) {
	var r *Resolver
	if got := r.Resolve(Selection{"a": "b"}); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if r.Name() != "" || r.Axes() != nil || r.RequiredAxes() != nil || r.Validate() != nil {
		t.Fatalf("expected nil resolver accessors to be zero")
	}
}
