// Package hydrate turns definition payloads into ordered documents. Axis and
// compound order is taken from the payload, never from map iteration.
package hydrate

import (
	"fmt"
	"sort"
	"strings"
)

// Context carries identifiers tied to a payload for hooks and errors.
type Context struct {
	Slug   string
	Format string
}

// Document is the decoded, order-preserving form of a definition.
type Document struct {
	Name      string
	Base      *string
	Axes      []AxisEntry
	Defaults  map[string]string
	// NullDefaults lists defaultVariants keys whose value is null.
	NullDefaults []string
	Compounds    []CompoundEntry
}

// AxisEntry is one axis in declaration order.
type AxisEntry struct {
	Name    string
	Options map[string]string
}

// CompoundEntry is one compound rule. Constraints omits axes whose value was
// null in the payload.
type CompoundEntry struct {
	Constraints map[string][]string
	Value       string
	When        string
}

// PreHook lets callers mutate or normalise the raw payload before decoding.
type PreHook func(Context, *Object) error

// PostHook lets callers adjust or validate the decoded document.
type PostHook func(Context, *Document) error

// DecoderOption configures a Decoder instance.
type DecoderOption func(*Decoder)

// Decoder converts payloads into Documents.
type Decoder struct {
	preHooks    []PreHook
	postHooks   []PostHook
	strictKeys  bool
	defaultName string
}

// WithPreHook applies hook prior to decoding.
func WithPreHook(hook PreHook) DecoderOption {
	return func(d *Decoder) {
		if hook != nil {
			d.preHooks = append(d.preHooks, hook)
		}
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook(hook PostHook) DecoderOption {
	return func(d *Decoder) {
		if hook != nil {
			d.postHooks = append(d.postHooks, hook)
		}
	}
}

// WithDisallowUnknownKeys rejects unknown keys at the top level and inside
// compound entries.
func WithDisallowUnknownKeys() DecoderOption {
	return func(d *Decoder) {
		d.strictKeys = true
	}
}

// WithDefaultName names documents whose payload has no "name" key.
func WithDefaultName(name string) DecoderOption {
	return func(d *Decoder) {
		d.defaultName = name
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// DecodeJSON parses data as JSON and decodes it.
func (d *Decoder) DecodeJSON(ctx Context, data []byte) (Document, error) {
	if ctx.Format == "" {
		ctx.Format = "json"
	}
	obj, err := ParseJSON(data)
	if err != nil {
		return Document{}, fmt.Errorf("hydrate: parse %s %q: %w", ctx.Format, ctx.Slug, err)
	}
	return d.Decode(ctx, obj)
}

// DecodeYAML parses data as YAML and decodes it.
func (d *Decoder) DecodeYAML(ctx Context, data []byte) (Document, error) {
	if ctx.Format == "" {
		ctx.Format = "yaml"
	}
	obj, err := ParseYAML(data)
	if err != nil {
		return Document{}, fmt.Errorf("hydrate: parse %s %q: %w", ctx.Format, ctx.Slug, err)
	}
	return d.Decode(ctx, obj)
}

// Decode converts an ordered payload into a Document applying hooks.
func (d *Decoder) Decode(ctx Context, payload *Object) (Document, error) {
	if payload == nil {
		return Document{}, fmt.Errorf("hydrate: payload is nil for %q", ctx.Slug)
	}

	for _, hook := range d.preHooks {
		if err := hook(ctx, payload); err != nil {
			return Document{}, fmt.Errorf("hydrate: pre-hook for %q failed: %w", ctx.Slug, err)
		}
	}

	doc, err := d.decodeDocument(payload)
	if err != nil {
		return Document{}, fmt.Errorf("hydrate: decode %q: %w", ctx.Slug, err)
	}
	if doc.Name == "" {
		doc.Name = d.defaultName
	}

	for _, hook := range d.postHooks {
		if err := hook(ctx, &doc); err != nil {
			return Document{}, fmt.Errorf("hydrate: post-hook for %q failed: %w", ctx.Slug, err)
		}
	}
	return doc, nil
}

var documentKeys = map[string]struct{}{
	"name":             {},
	"base":             {},
	"variants":         {},
	"defaultVariants":  {},
	"compoundVariants": {},
}

var compoundKeys = map[string]struct{}{
	"variants": {},
	"value":    {},
	"when":     {},
}

func (d *Decoder) decodeDocument(payload *Object) (Document, error) {
	if d.strictKeys {
		if err := rejectUnknown("", payload, documentKeys); err != nil {
			return Document{}, err
		}
	}

	var doc Document
	if raw, ok := payload.Get("name"); ok && raw != nil {
		name, err := asString("name", raw)
		if err != nil {
			return Document{}, err
		}
		doc.Name = name
	}
	if raw, ok := payload.Get("base"); ok && raw != nil {
		base, err := asString("base", raw)
		if err != nil {
			return Document{}, err
		}
		doc.Base = &base
	}

	axes, err := decodeAxes(payload)
	if err != nil {
		return Document{}, err
	}
	doc.Axes = axes

	defaults, nulls, err := decodeDefaults(payload)
	if err != nil {
		return Document{}, err
	}
	doc.Defaults = defaults
	doc.NullDefaults = nulls

	compounds, err := d.decodeCompounds(payload)
	if err != nil {
		return Document{}, err
	}
	doc.Compounds = compounds
	return doc, nil
}

func decodeAxes(payload *Object) ([]AxisEntry, error) {
	raw, ok := payload.Get("variants")
	if !ok || raw == nil {
		return nil, nil
	}
	axesObj, err := asObject("variants", raw)
	if err != nil {
		return nil, err
	}
	axes := make([]AxisEntry, 0, axesObj.Len())
	for _, name := range axesObj.Keys() {
		value, _ := axesObj.Get(name)
		path := "variants." + name
		optionsObj, err := asObject(path, value)
		if err != nil {
			return nil, err
		}
		options := make(map[string]string, optionsObj.Len())
		for _, key := range optionsObj.Keys() {
			fragmentRaw, _ := optionsObj.Get(key)
			fragment, err := asString(path+"."+key, fragmentRaw)
			if err != nil {
				return nil, err
			}
			options[key] = fragment
		}
		axes = append(axes, AxisEntry{Name: name, Options: options})
	}
	return axes, nil
}

func decodeDefaults(payload *Object) (map[string]string, []string, error) {
	raw, ok := payload.Get("defaultVariants")
	if !ok || raw == nil {
		return nil, nil, nil
	}
	obj, err := asObject("defaultVariants", raw)
	if err != nil {
		return nil, nil, err
	}
	defaults := make(map[string]string, obj.Len())
	var nulls []string
	for _, axis := range obj.Keys() {
		value, _ := obj.Get(axis)
		if value == nil {
			nulls = append(nulls, axis)
			continue
		}
		key, err := asString("defaultVariants."+axis, value)
		if err != nil {
			return nil, nil, err
		}
		defaults[axis] = key
	}
	return defaults, nulls, nil
}

func (d *Decoder) decodeCompounds(payload *Object) ([]CompoundEntry, error) {
	raw, ok := payload.Get("compoundVariants")
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("compoundVariants must be an array, got %s", kindOf(raw))
	}
	compounds := make([]CompoundEntry, 0, len(list))
	for i, item := range list {
		path := fmt.Sprintf("compoundVariants[%d]", i)
		obj, err := asObject(path, item)
		if err != nil {
			return nil, err
		}
		if d.strictKeys {
			if err := rejectUnknown(path, obj, compoundKeys); err != nil {
				return nil, err
			}
		}

		entry := CompoundEntry{Constraints: map[string][]string{}}
		if rawValue, ok := obj.Get("value"); ok && rawValue != nil {
			value, err := asString(path+".value", rawValue)
			if err != nil {
				return nil, err
			}
			entry.Value = value
		}
		if rawWhen, ok := obj.Get("when"); ok && rawWhen != nil {
			when, err := asString(path+".when", rawWhen)
			if err != nil {
				return nil, err
			}
			entry.When = strings.TrimSpace(when)
		}
		if rawConstraints, ok := obj.Get("variants"); ok && rawConstraints != nil {
			constraints, err := asObject(path+".variants", rawConstraints)
			if err != nil {
				return nil, err
			}
			for _, axis := range constraints.Keys() {
				rawKeys, _ := constraints.Get(axis)
				if rawKeys == nil {
					continue
				}
				keys, err := asStrings(path+".variants."+axis, rawKeys)
				if err != nil {
					return nil, err
				}
				entry.Constraints[axis] = keys
			}
		}
		compounds = append(compounds, entry)
	}
	return compounds, nil
}

func rejectUnknown(path string, obj *Object, allowed map[string]struct{}) error {
	var unknown []string
	for _, key := range obj.Keys() {
		if _, ok := allowed[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	if path == "" {
		return fmt.Errorf("unknown keys %s", strings.Join(unknown, ", "))
	}
	return fmt.Errorf("%s: unknown keys %s", path, strings.Join(unknown, ", "))
}

func asObject(path string, value any) (*Object, error) {
	obj, ok := value.(*Object)
	if !ok {
		return nil, fmt.Errorf("%s must be an object, got %s", path, kindOf(value))
	}
	return obj, nil
}

// asString accepts strings, and numbers or booleans written as bare YAML or
// JSON scalars, since option keys are frequently numeric ("1", "2").
func asString(path string, value any) (string, error) {
	switch typed := value.(type) {
	case string:
		return typed, nil
	case fmt.Stringer:
		return typed.String(), nil
	case bool:
		if typed {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("%s must be a string, got %s", path, kindOf(value))
	}
}

func asStrings(path string, value any) ([]string, error) {
	list, ok := value.([]any)
	if !ok {
		single, err := asString(path, value)
		if err != nil {
			return nil, fmt.Errorf("%s must be an array of strings, got %s", path, kindOf(value))
		}
		return []string{single}, nil
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		key, err := asString(fmt.Sprintf("%s[%d]", path, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, nil
}
