package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Violation records a single field-level validation failure.
type Violation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Violations is an ordered list of validation failures. A nil or empty
// list means the value passed validation.
type Violations []Violation

// Error implements the error interface, rendering all violations as a
// single "path: reason; path: reason" string.
func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, violation := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", violation.Path, violation.Reason))
	}
	return strings.Join(parts, "; ")
}

// FieldPaths returns the distinct field paths that failed, in order of
// first appearance. Used to build corrective follow-up prompts.
func (v Violations) FieldPaths() []string {
	seen := make(map[string]bool, len(v))
	paths := make([]string, 0, len(v))
	for _, violation := range v {
		if !seen[violation.Path] {
			seen[violation.Path] = true
			paths = append(paths, violation.Path)
		}
	}
	return paths
}

// Validate checks a decoded JSON value against the expected shape and
// returns all violations found. It is a pure function: malformed or
// unexpected input is reported, never panicked on. A nil schema accepts
// any value.
func Validate(value any, s *JSONSchema) Violations {
	var violations Violations
	validate(value, s, "$", &violations)
	return violations
}

func validate(value any, s *JSONSchema, path string, out *Violations) {
	if s == nil {
		return
	}

	if value == nil {
		out.add(path, "value is missing")
		return
	}

	if len(s.Enum) > 0 {
		if !enumContains(s.Enum, value) {
			out.add(path, fmt.Sprintf("value %v is not one of the allowed values", value))
		}
		return
	}

	switch s.Type {
	case "object":
		validateObject(value, s, path, out)
	case "array":
		validateArray(value, s, path, out)
	case "string":
		str, ok := value.(string)
		if !ok {
			out.add(path, fmt.Sprintf("expected string, got %T", value))
			return
		}
		if s.MinLength != nil && len(str) < *s.MinLength {
			out.add(path, fmt.Sprintf("string shorter than %d characters", *s.MinLength))
		}
	case "number":
		num, ok := asNumber(value)
		if !ok {
			out.add(path, fmt.Sprintf("expected number, got %T", value))
			return
		}
		if s.Minimum != nil && num < *s.Minimum {
			out.add(path, fmt.Sprintf("value %v below minimum %v", num, *s.Minimum))
		}
		if s.Maximum != nil && num > *s.Maximum {
			out.add(path, fmt.Sprintf("value %v above maximum %v", num, *s.Maximum))
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			out.add(path, fmt.Sprintf("expected boolean, got %T", value))
		}
	case "":
		// Untyped schema accepts any value.
	default:
		out.add(path, fmt.Sprintf("unsupported schema type %q", s.Type))
	}
}

func validateObject(value any, s *JSONSchema, path string, out *Violations) {
	obj, ok := value.(map[string]any)
	if !ok {
		out.add(path, fmt.Sprintf("expected object, got %T", value))
		return
	}

	for _, required := range s.Required {
		if _, present := obj[required]; !present {
			out.add(path+"."+required, "required field is missing")
		}
	}

	for name, propSchema := range s.Properties {
		propValue, present := obj[name]
		if !present {
			continue
		}
		validate(propValue, propSchema, path+"."+name, out)
	}

	// Map-style objects: validate every value against a single schema,
	// iterating keys deterministically so violation order is stable.
	if s.AdditionalProperties != nil {
		keys := make([]string, 0, len(obj))
		for key := range obj {
			if _, declared := s.Properties[key]; declared {
				continue
			}
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			validate(obj[key], s.AdditionalProperties, path+"."+key, out)
		}
	}
}

func validateArray(value any, s *JSONSchema, path string, out *Violations) {
	arr, ok := value.([]any)
	if !ok {
		out.add(path, fmt.Sprintf("expected array, got %T", value))
		return
	}

	if s.MinItems != nil && len(arr) < *s.MinItems {
		out.add(path, fmt.Sprintf("array has %d items, minimum is %d", len(arr), *s.MinItems))
	}
	if s.MaxItems != nil && len(arr) > *s.MaxItems {
		out.add(path, fmt.Sprintf("array has %d items, maximum is %d", len(arr), *s.MaxItems))
	}

	if s.Items != nil {
		for i, item := range arr {
			validate(item, s.Items, fmt.Sprintf("%s[%d]", path, i), out)
		}
	}
}

func (v *Violations) add(path, reason string) {
	*v = append(*v, Violation{Path: path, Reason: reason})
}

// asNumber coerces JSON numeric representations to float64.
// encoding/json decodes all numbers as float64, but values assembled in
// Go code may carry int types.
func asNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func enumContains(enum []any, value any) bool {
	for _, allowed := range enum {
		if allowed == value {
			return true
		}
	}
	return false
}
