package variants

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrEmptyAxisName indicates an axis declared without a name.
	ErrEmptyAxisName = errors.New("variants: axis name must be provided")
	// ErrDuplicateAxis indicates the same axis name was declared twice. Only
	// the first declaration is used when resolving.
	ErrDuplicateAxis = errors.New("variants: axis names must be unique")
	// ErrUnknownAxis indicates a default or constraint naming an undeclared axis.
	ErrUnknownAxis = errors.New("variants: unknown axis")
	// ErrUnknownOption indicates a default or constraint naming an option key
	// the axis does not declare.
	ErrUnknownOption = errors.New("variants: unknown option")
	// ErrInvalidGuard indicates a compound guard that failed to compile.
	ErrInvalidGuard = errors.New("variants: invalid guard")
)

// ValidationError describes one inconsistency in a Definition. Kind is one of
// the sentinel errors above so callers can match with errors.Is.
type ValidationError struct {
	Kind  error
	Axis  string
	Key   string
	Field string
	// Rule is the compound index, or -1 when the problem is not in a rule.
	Rule int
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	location := e.Field
	if e.Rule >= 0 {
		location = fmt.Sprintf("%s[%d]", e.Field, e.Rule)
	}
	msg := fmt.Sprintf("%v: %s", e.Kind, location)
	if e.Axis != "" {
		msg += fmt.Sprintf(" axis=%q", e.Axis)
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" key=%q", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Is(target error) bool {
	return e != nil && e.Kind == target
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validate checks the definition strictly. Resolution never depends on it:
// a resolver that fails validation still resolves with graceful degradation.
func (r *Resolver) Validate() error {
	if r == nil {
		return nil
	}
	var errs []error
	seen := make(map[string]struct{}, len(r.def.Axes))
	for _, axis := range r.def.Axes {
		if axis.Name == "" {
			errs = append(errs, &ValidationError{Kind: ErrEmptyAxisName, Field: "axes", Rule: -1})
			continue
		}
		if _, dup := seen[axis.Name]; dup {
			errs = append(errs, &ValidationError{Kind: ErrDuplicateAxis, Field: "axes", Axis: axis.Name, Rule: -1})
			continue
		}
		seen[axis.Name] = struct{}{}
	}

	for _, name := range sortedKeys(r.defaults) {
		if err := r.checkOption("defaults", -1, name, r.defaults[name]); err != nil {
			errs = append(errs, err)
		}
	}

	for _, name := range r.def.NullDefaults {
		if _, ok := r.axes[name]; !ok {
			errs = append(errs, &ValidationError{Kind: ErrUnknownAxis, Field: "defaults", Rule: -1, Axis: name})
		}
	}

	for i, rule := range r.def.Compounds {
		axes := make([]string, 0, len(rule.Constraints))
		for name := range rule.Constraints {
			axes = append(axes, name)
		}
		sort.Strings(axes)
		for _, name := range axes {
			if _, ok := r.axes[name]; !ok {
				errs = append(errs, &ValidationError{Kind: ErrUnknownAxis, Field: "compounds", Rule: i, Axis: name})
				continue
			}
			for _, key := range rule.Constraints[name] {
				if err := r.checkOption("compounds", i, name, key); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	for i := range r.rules {
		if r.rules[i].compileErr != nil {
			errs = append(errs, &ValidationError{Kind: ErrInvalidGuard, Field: "compounds", Rule: i, Err: r.rules[i].compileErr})
		}
	}
	return errors.Join(errs...)
}

func (r *Resolver) checkOption(field string, rule int, axis, key string) error {
	options, ok := r.axes[axis]
	if !ok {
		return &ValidationError{Kind: ErrUnknownAxis, Field: field, Rule: rule, Axis: axis}
	}
	if _, ok := options[key]; !ok {
		return &ValidationError{Kind: ErrUnknownOption, Field: field, Rule: rule, Axis: axis, Key: key}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
