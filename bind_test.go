package variants

import "testing"

type buttonProps struct {
	Color   string  `variant:"color"`
	Size    *string `variant:"size"`
	Label   string
	Ignored string `variant:"-"`
	Tone    int    `variant:"tone"`
	hidden  string `variant:"hidden"`
}

func TestSelectionFromStruct(t *testing.T) {
	props := buttonProps{Color: "green", Size: String("large"), Label: "Save", Ignored: "x", Tone: 3, hidden: "y"}
	sel := SelectionFrom(props)
	if len(sel) != 2 || sel["color"] != "green" || sel["size"] != "large" {
		t.Fatalf("unexpected selection %v", sel)
	}

	sel = SelectionFrom(&buttonProps{Size: String("")})
	if _, ok := sel["color"]; ok {
		t.Fatalf("expected empty string field to be omitted")
	}
	if value, ok := sel["size"]; !ok || value != "" {
		t.Fatalf("expected non-nil pointer to count as explicit, got %v", sel)
	}
}

func TestSelectionFromOtherValues(t *testing.T) {
	var nilProps *buttonProps
	for _, v := range []any{nil, nilProps, 42, "color"} {
		if sel := SelectionFrom(v); len(sel) != 0 {
			t.Fatalf("expected empty selection for %T, got %v", v, sel)
		}
	}
	src := map[string]string{"color": "red"}
	sel := SelectionFrom(src)
	src["color"] = "blue"
	if sel["color"] != "red" {
		t.Fatalf("expected map to be copied")
	}
}

func TestBindResolvesProps(t *testing.T) {
	resolve := Bind[buttonProps](New(defaultedCompoundDefinition()))
	if got := resolve(buttonProps{}); got != "hello world text-blue h-medium compound-1" {
		t.Fatalf("unexpected default output %q", got)
	}
	if got := resolve(buttonProps{Color: "red"}); got != "hello world text-red h-medium" {
		t.Fatalf("unexpected override output %q", got)
	}

	byPointer := Bind[*buttonProps](New(defaultedCompoundDefinition()))
	if got := byPointer(&buttonProps{Size: String("small")}); got != "hello world text-blue h-small" {
		t.Fatalf("unexpected pointer output %q", got)
	}
}
