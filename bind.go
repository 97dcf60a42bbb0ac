package variants

import (
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag read by Bind and SelectionFrom.
const TagName = "variant"

// Bind returns a resolve function over a props struct P. Fields tagged
// `variant:"axis"` feed the selection: string fields count as explicit when
// non-empty, *string fields when non-nil. Untagged fields and `variant:"-"`
// are ignored. P may also be a pointer to such a struct.
func Bind[P any](r *Resolver) func(P) string {
	return func(props P) string {
		return r.Resolve(SelectionFrom(props))
	}
}

// SelectionFrom converts a tagged props struct, a Selection or a
// map[string]string into a Selection. Other values yield an empty selection.
func SelectionFrom(v any) Selection {
	switch typed := v.(type) {
	case nil:
		return Selection{}
	case Selection:
		return cloneSelection(typed)
	case map[string]string:
		return cloneSelection(typed)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Selection{}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return Selection{}
	}

	fields := tagFieldsFor(rv.Type())
	sel := make(Selection, len(fields))
	for _, field := range fields {
		value := rv.FieldByIndex(field.index)
		switch value.Kind() {
		case reflect.String:
			if value.Len() == 0 {
				continue
			}
			sel[field.axis] = value.String()
		case reflect.Pointer:
			if value.IsNil() || value.Elem().Kind() != reflect.String {
				continue
			}
			sel[field.axis] = value.Elem().String()
		}
	}
	return sel
}

type tagField struct {
	axis  string
	index []int
}

var tagFieldCache sync.Map // reflect.Type -> []tagField

func tagFieldsFor(rt reflect.Type) []tagField {
	if cached, ok := tagFieldCache.Load(rt); ok {
		return cached.([]tagField)
	}
	var fields []tagField
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		name = strings.TrimSpace(name)
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if !stringish(sf.Type) {
			continue
		}
		fields = append(fields, tagField{axis: name, index: sf.Index})
	}
	tagFieldCache.Store(rt, fields)
	return fields
}

func stringish(rt reflect.Type) bool {
	if rt.Kind() == reflect.String {
		return true
	}
	return rt.Kind() == reflect.Pointer && rt.Elem().Kind() == reflect.String
}
