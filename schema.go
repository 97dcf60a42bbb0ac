package variants

import (
	"sort"
)

// SchemaFormat identifies the representation a schema document encodes.
type SchemaFormat string

const (
	// SchemaFormatDescriptors represents the flattened axis descriptors.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatOpenAPI represents OpenAPI-compatible JSON Schema documents.
	SchemaFormatOpenAPI SchemaFormat = "openapi"
)

// SchemaDocument encapsulates a generated schema alongside its format. The
// Document must be JSON-serialisable.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// SchemaGenerator describes the selection shape accepted by a definition.
// Implementations must be safe for concurrent use.
type SchemaGenerator interface {
	Generate(def Definition) (SchemaDocument, error)
}

// AxisDescriptor describes one axis of a selection. Required is true when
// the axis has no default.
type AxisDescriptor struct {
	Axis       string   `json:"axis"`
	Options    []string `json:"options"`
	Default    string   `json:"default,omitempty"`
	HasDefault bool     `json:"has_default"`
	Required   bool     `json:"required"`
}

// DefaultSchemaGenerator returns the built-in descriptor generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(def Definition) (SchemaDocument, error) {
	return SchemaDocument{
		Format:   SchemaFormatDescriptors,
		Document: DescribeAxes(def),
	}, nil
}

// DescribeAxes lists every declared axis in declaration order. Duplicate
// axis names keep their first declaration, matching resolution.
func DescribeAxes(def Definition) []AxisDescriptor {
	descriptors := make([]AxisDescriptor, 0, len(def.Axes))
	seen := make(map[string]struct{}, len(def.Axes))
	for _, axis := range def.Axes {
		if _, dup := seen[axis.Name]; dup {
			continue
		}
		seen[axis.Name] = struct{}{}
		keys := make([]string, 0, len(axis.Options))
		for key := range axis.Options {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		descriptor := AxisDescriptor{
			Axis:     axis.Name,
			Options:  keys,
			Required: true,
		}
		if value, ok := def.Defaults[axis.Name]; ok {
			descriptor.Default = value
			descriptor.HasDefault = true
			descriptor.Required = false
		}
		descriptors = append(descriptors, descriptor)
	}
	return descriptors
}

// Schema generates the selection schema with the configured generator.
func (r *Resolver) Schema() (SchemaDocument, error) {
	if r == nil {
		return DefaultSchemaGenerator().Generate(Definition{})
	}
	return r.schemaGenerator().Generate(r.def.clone())
}
