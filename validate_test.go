package variants

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAcceptsConsistentDefinitions(t *testing.T) {
	for name, def := range map[string]Definition{
		"rules":    matchingRulesDefinition(),
		"defaults": defaultedCompoundDefinition(),
		"empty":    {},
	} {
		r, err := Load(def)
		if err != nil {
			t.Fatalf("%s: unexpected validation error: %v", name, err)
		}
		if r == nil {
			t.Fatalf("%s: expected resolver", name)
		}
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	def := Definition{
		Axes: []Axis{
			{Name: "size", Options: map[string]string{"sm": "s"}},
			{Name: ""},
			{Name: "size", Options: map[string]string{"lg": "l"}},
		},
		Defaults: map[string]string{"size": "lg", "tone": "warm"},
		Compounds: []Compound{
			{Fragment: "a", Constraints: map[string][]string{"size": {"sm", "xl"}}},
			{Fragment: "b", Constraints: map[string][]string{"color": {"red"}}},
		},
	}
	err := New(def).Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}

	for _, sentinel := range []error{ErrEmptyAxisName, ErrDuplicateAxis, ErrUnknownAxis, ErrUnknownOption} {
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected %v in %v", sentinel, err)
		}
	}
	if errors.Is(err, ErrInvalidGuard) {
		t.Fatalf("did not expect ErrInvalidGuard")
	}

	lines := strings.Split(err.Error(), "\n")
	want := []string{
		`variants: axis name must be provided: axes`,
		`variants: axis names must be unique: axes axis="size"`,
		`variants: unknown option: defaults axis="size" key="lg"`,
		`variants: unknown axis: defaults axis="tone"`,
		`variants: unknown option: compounds[0] axis="size" key="xl"`,
		`variants: unknown axis: compounds[1] axis="color"`,
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected validation output:\n%s", err)
	}
}

func TestValidationErrorAs(t *testing.T) {
	err := New(Definition{Defaults: map[string]string{"tone": "warm"}}).Validate()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if vErr.Kind != ErrUnknownAxis || vErr.Axis != "tone" || vErr.Field != "defaults" || vErr.Rule != -1 {
		t.Fatalf("unexpected error fields %+v", vErr)
	}
}

func TestValidateNullDefaults(t *testing.T) {
	def := Definition{
		Axes:         []Axis{{Name: "size", Options: map[string]string{"sm": "s"}}},
		NullDefaults: []string{"size"},
	}
	if _, err := Load(def); err != nil {
		t.Fatalf("expected declared null default to validate, got %v", err)
	}

	def.NullDefaults = []string{"tone"}
	var vErr *ValidationError
	if err := New(def).Validate(); !errors.As(err, &vErr) || vErr.Kind != ErrUnknownAxis || vErr.Axis != "tone" {
		t.Fatalf("expected unknown axis for null default, got %v", err)
	}
}

func TestValidationDoesNotChangeResolution(t *testing.T) {
	def := Definition{
		Axes:     []Axis{{Name: "size", Options: map[string]string{"sm": "s"}}},
		Defaults: map[string]string{"size": "xl"},
	}
	if _, err := Load(def); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected Load to fail, got %v", err)
	}
	if got := Build(def)(Selection{}); got != "" {
		t.Fatalf("expected graceful degradation, got %q", got)
	}
}
