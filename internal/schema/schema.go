package schema

// JSONSchema describes the expected shape of a JSON value. It is a small
// subset of JSON Schema sufficient for validating language model output:
// types, required properties, enum membership, numeric bounds, and
// array/string length constraints.
type JSONSchema struct {
	// Type specifies the JSON type (object, array, string, number, boolean)
	Type string `json:"type,omitempty"`

	// Properties defines object properties (for type: object)
	Properties map[string]*JSONSchema `json:"properties,omitempty"`

	// Required lists required property names (for type: object)
	Required []string `json:"required,omitempty"`

	// Items defines array item schema (for type: array)
	Items *JSONSchema `json:"items,omitempty"`

	// AdditionalProperties, when set, validates object values with
	// arbitrary keys (for type: object used as a map)
	AdditionalProperties *JSONSchema `json:"additionalProperties,omitempty"`

	// Description provides human-readable schema documentation
	Description string `json:"description,omitempty"`

	// Enum constrains values to a specific set
	Enum []any `json:"enum,omitempty"`

	// Minimum specifies minimum numeric value
	Minimum *float64 `json:"minimum,omitempty"`

	// Maximum specifies maximum numeric value
	Maximum *float64 `json:"maximum,omitempty"`

	// MinLength specifies minimum string length
	MinLength *int `json:"minLength,omitempty"`

	// MinItems specifies minimum array length
	MinItems *int `json:"minItems,omitempty"`

	// MaxItems specifies maximum array length
	MaxItems *int `json:"maxItems,omitempty"`
}

// Object creates an object schema with the given required property names.
func Object(properties map[string]*JSONSchema, required ...string) *JSONSchema {
	return &JSONSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// Array creates an array schema with the given item schema.
func Array(items *JSONSchema) *JSONSchema {
	return &JSONSchema{
		Type:  "array",
		Items: items,
	}
}

// String creates a string schema.
func String() *JSONSchema {
	return &JSONSchema{Type: "string"}
}

// Number creates a number schema bounded to [min, max].
func Number(min, max float64) *JSONSchema {
	return &JSONSchema{
		Type:    "number",
		Minimum: &min,
		Maximum: &max,
	}
}

// Bounded constrains an array schema to [min, max] items.
func (s *JSONSchema) Bounded(min, max int) *JSONSchema {
	s.MinItems = &min
	s.MaxItems = &max
	return s
}

// WithDescription sets the schema description.
func (s *JSONSchema) WithDescription(desc string) *JSONSchema {
	s.Description = desc
	return s
}
