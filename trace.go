package variants

import (
	"encoding/json"
)

// Source names where an axis value came from.
type Source string

const (
	SourceNone     Source = "none"
	SourceExplicit Source = "explicit"
	SourceDefault  Source = "default"
	SourceLayer    Source = "layer"
)

// Trace captures provenance for a single resolution.
type Trace struct {
	Definition string          `json:"definition,omitempty"`
	Output     string          `json:"output"`
	Base       *string         `json:"base,omitempty"`
	Axes       []AxisTrace     `json:"axes,omitempty"`
	Compounds  []CompoundTrace `json:"compounds,omitempty"`
}

// AxisTrace details how one axis contributed. Found is false when the key was
// not a declared option, in which case the axis emitted nothing.
type AxisTrace struct {
	Axis     string `json:"axis"`
	Source   Source `json:"source"`
	Key      string `json:"key,omitempty"`
	Fragment string `json:"fragment,omitempty"`
	Found    bool   `json:"found"`
	// Scope names the layer that supplied the value when Source is layer.
	Scope string `json:"scope,omitempty"`
}

// CompoundTrace records whether a compound rule applied.
type CompoundTrace struct {
	Index    int    `json:"index"`
	Fragment string `json:"fragment"`
	Matched  bool   `json:"matched"`
	Guard    string `json:"guard,omitempty"`
	GuardErr string `json:"guard_error,omitempty"`
}

// Fragments returns the fragments in output order.
func (t Trace) Fragments() []string {
	var out []string
	if t.Base != nil {
		out = append(out, *t.Base)
	}
	for _, axis := range t.Axes {
		if axis.Found {
			out = append(out, axis.Fragment)
		}
	}
	for _, rule := range t.Compounds {
		if rule.Matched {
			out = append(out, rule.Fragment)
		}
	}
	return out
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload previously generated via ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
