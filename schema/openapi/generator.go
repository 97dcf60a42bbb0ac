package openapi

import (
	"fmt"
	"strings"

	variants "github.com/goliatone/go-variants"
)

type generator struct {
	config generatorConfig
}

// NewGenerator constructs an OpenAPI-compatible selection schema generator.
func NewGenerator(opts ...GeneratorOption) variants.SchemaGenerator {
	return generator{config: applyGeneratorOptions(opts)}
}

// Option returns a variants.Option that wires the OpenAPI generator into a
// Resolver.
func Option(opts ...GeneratorOption) variants.Option {
	return variants.WithSchemaGenerator(NewGenerator(opts...))
}

func (g generator) Generate(def variants.Definition) (variants.SchemaDocument, error) {
	cfg := g.config
	if !cfg.customTitle && def.Name != "" {
		cfg.info.Title = def.Name + " variants"
	}
	if cfg.operation.OperationID == "" {
		cfg.operation.OperationID = defaultOperationID(def.Name, cfg.operation)
	}

	document, err := newDocumentBuilder(cfg, SelectionSchema(def, cfg.strict)).build()
	if err != nil {
		return variants.SchemaDocument{}, err
	}
	return variants.SchemaDocument{
		Format:   variants.SchemaFormatOpenAPI,
		Document: document,
	}, nil
}

// SelectionSchema returns the JSON Schema object describing selections for
// def: one enum-typed string property per axis, required when the axis has
// no default.
func SelectionSchema(def variants.Definition, strict bool) map[string]any {
	descriptors := variants.DescribeAxes(def)
	properties := make(map[string]any, len(descriptors))
	order := make([]string, 0, len(descriptors))
	var required []string
	for _, descriptor := range descriptors {
		property := map[string]any{
			"type": "string",
			"enum": append([]string{}, descriptor.Options...),
		}
		if descriptor.HasDefault {
			property["default"] = descriptor.Default
		}
		if descriptor.Required {
			required = append(required, descriptor.Axis)
		}
		properties[descriptor.Axis] = property
		order = append(order, descriptor.Axis)
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": !strict,
		"x-axis-order":         order,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	if def.Name != "" {
		schema["title"] = def.Name
	}
	return schema
}

func defaultOperationID(name string, operation operationConfig) string {
	method := strings.ToLower(operation.Method)
	if method == "" {
		method = "post"
	}
	if name == "" {
		return fmt.Sprintf("%s:%s", method, operation.Path)
	}
	return fmt.Sprintf("resolve%s", exportName(name))
}

func exportName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case r == '-' || r == '_' || r == ' ' || r == '.':
			upper = true
		case upper:
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
