package hydrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Object is a decoded mapping that remembers key order. Values are *Object,
// []any, string, json.Number, bool, or nil.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: map[string]any{}}
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	value, ok := o.values[key]
	return value, ok
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (o *Object) Set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key.
func (o *Object) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, existing := range o.keys {
		if existing == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// ParseJSON decodes data into an ordered object. The top-level value must be
// a JSON object.
func ParseJSON(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	value, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected trailing data after top-level value")
	}
	obj, ok := value.(*Object)
	if !ok {
		return nil, fmt.Errorf("top-level value must be an object, got %s", kindOf(value))
	}
	return obj, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
			}
			value, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		list := []any{}
		for dec.More() {
			value, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// ParseYAML decodes data into an ordered object using the yaml.v3 node tree.
// The document root must be a mapping.
func ParseYAML(data []byte) (*Object, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, fmt.Errorf("document is empty")
		}
		node = node.Content[0]
	}
	value, err := convertYAMLNode(node)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(*Object)
	if !ok {
		return nil, fmt.Errorf("document root must be a mapping, got %s", kindOf(value))
	}
	return obj, nil
}

func convertYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("line %d: dangling alias", node.Line)
		}
		return convertYAMLNode(node.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", keyNode.Line)
			}
			value, err := convertYAMLNode(valueNode)
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, value)
		}
		return obj, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := convertYAMLNode(child)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		return list, nil
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return nil, err
			}
			return b, nil
		case "!!int", "!!float":
			return json.Number(node.Value), nil
		default:
			return node.Value, nil
		}
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %d", node.Line, node.Kind)
	}
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case *Object:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", value)
	}
}
