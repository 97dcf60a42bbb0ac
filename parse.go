package variants

import (
	"fmt"

	"github.com/goliatone/go-variants/internal/hydrate"
)

// ParseOption configures definition parsing.
type ParseOption func(*parseConfig)

type parseConfig struct {
	name    string
	slug    string
	strict  bool
	prepare []func(*Definition) error
}

// WithDefaultDefinitionName names definitions whose payload has no "name".
func WithDefaultDefinitionName(name string) ParseOption {
	return func(cfg *parseConfig) {
		cfg.name = name
	}
}

// WithSourceName labels the payload in error messages, e.g. a file name.
func WithSourceName(slug string) ParseOption {
	return func(cfg *parseConfig) {
		cfg.slug = slug
	}
}

// WithUnknownKeysRejected fails parsing when the payload carries keys the
// definition format does not know.
func WithUnknownKeysRejected() ParseOption {
	return func(cfg *parseConfig) {
		cfg.strict = true
	}
}

// WithDefinitionHook runs fn on the parsed definition before it is returned.
func WithDefinitionHook(fn func(*Definition) error) ParseOption {
	return func(cfg *parseConfig) {
		if fn != nil {
			cfg.prepare = append(cfg.prepare, fn)
		}
	}
}

// ParseJSON decodes a definition from JSON. Axis order follows the order of
// keys under "variants". A null constraint is dropped; [] is an empty set.
func ParseJSON(data []byte, opts ...ParseOption) (Definition, error) {
	return parse("json", data, opts)
}

// ParseYAML decodes a definition from YAML with the same layout as ParseJSON.
func ParseYAML(data []byte, opts ...ParseOption) (Definition, error) {
	return parse("yaml", data, opts)
}

func parse(format string, data []byte, opts []ParseOption) (Definition, error) {
	cfg := parseConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var decoderOpts []hydrate.DecoderOption
	if cfg.strict {
		decoderOpts = append(decoderOpts, hydrate.WithDisallowUnknownKeys())
	}
	if cfg.name != "" {
		decoderOpts = append(decoderOpts, hydrate.WithDefaultName(cfg.name))
	}
	decoder := hydrate.NewDecoder(decoderOpts...)
	ctx := hydrate.Context{Slug: cfg.slug, Format: format}

	var (
		doc hydrate.Document
		err error
	)
	switch format {
	case "yaml":
		doc, err = decoder.DecodeYAML(ctx, data)
	default:
		doc, err = decoder.DecodeJSON(ctx, data)
	}
	if err != nil {
		return Definition{}, fmt.Errorf("variants: parse %s: %w", format, err)
	}

	def := definitionFromDocument(doc)
	for _, fn := range cfg.prepare {
		if err := fn(&def); err != nil {
			return Definition{}, fmt.Errorf("variants: parse %s: %w", format, err)
		}
	}
	return def, nil
}

func definitionFromDocument(doc hydrate.Document) Definition {
	def := Definition{
		Name:     doc.Name,
		Base:     doc.Base,
		Defaults: doc.Defaults,
	}
	if len(doc.NullDefaults) > 0 {
		def.NullDefaults = append([]string(nil), doc.NullDefaults...)
	}
	if len(doc.Axes) > 0 {
		def.Axes = make([]Axis, len(doc.Axes))
		for i, axis := range doc.Axes {
			def.Axes[i] = Axis{Name: axis.Name, Options: axis.Options}
		}
	}
	if len(doc.Compounds) > 0 {
		def.Compounds = make([]Compound, len(doc.Compounds))
		for i, rule := range doc.Compounds {
			def.Compounds[i] = Compound{
				Constraints: rule.Constraints,
				Fragment:    rule.Value,
				When:        rule.When,
			}
		}
	}
	return def
}
