package variants

import (
	"reflect"
	"strings"
	"testing"
)

func TestResolveWithTraceProvenance(t *testing.T) {
	r := New(defaultedCompoundDefinition())
	out, trace := r.ResolveWithTrace(Selection{"color": "purple"})

	if out != "hello world h-medium" {
		t.Fatalf("unexpected output %q", out)
	}
	if trace.Output != out {
		t.Fatalf("trace output mismatch %q", trace.Output)
	}
	want := []AxisTrace{
		{Axis: "color", Source: SourceExplicit, Key: "purple", Found: false},
		{Axis: "size", Source: SourceDefault, Key: "medium", Fragment: "h-medium", Found: true},
	}
	if !reflect.DeepEqual(want, trace.Axes) {
		t.Fatalf("unexpected axis trace:\nwant %+v\n got %+v", want, trace.Axes)
	}
	if len(trace.Compounds) != 1 || trace.Compounds[0].Matched {
		t.Fatalf("expected compound to be recorded as unmatched, got %+v", trace.Compounds)
	}
	if strings.Join(trace.Fragments(), " ") != out {
		t.Fatalf("fragments do not rebuild output: %v", trace.Fragments())
	}
}

func TestTraceNoneSource(t *testing.T) {
	_, trace := New(Definition{Axes: colorSizeAxes()}).ResolveWithTrace(nil)
	for _, axis := range trace.Axes {
		if axis.Source != SourceNone || axis.Found {
			t.Fatalf("expected untouched axis, got %+v", axis)
		}
	}
	if trace.Base != nil || trace.Output != "" {
		t.Fatalf("unexpected trace %+v", trace)
	}
}

func TestTraceJSONRoundTrip(t *testing.T) {
	_, trace := New(matchingRulesDefinition()).ResolveWithTrace(Selection{"color": "green", "size": "large"})
	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(payload), `"source":"explicit"`) {
		t.Fatalf("expected source in payload: %s", payload)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(trace, decoded) {
		t.Fatalf("round trip mismatch:\nwant %+v\n got %+v", trace, decoded)
	}
	if _, err := TraceFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected malformed payload to fail")
	}
}

func TestTraceRecordsGuardError(t *testing.T) {
	_, trace := New(guardedDefinition(`"nope"`)).ResolveWithTrace(Selection{"color": "red"})
	guard := trace.Compounds[1]
	if guard.Matched || guard.Guard != `"nope"` || guard.GuardErr == "" {
		t.Fatalf("expected guard failure recorded, got %+v", guard)
	}
}
