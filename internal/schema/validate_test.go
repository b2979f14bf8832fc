package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func criteriaSchema() *JSONSchema {
	return Object(map[string]*JSONSchema{
		"criteria": Array(Object(map[string]*JSONSchema{
			"name":        String(),
			"description": String(),
			"weight":      Number(0, 1),
		}, "name", "description", "weight")).Bounded(4, 10),
	}, "criteria")
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	var value any
	require.NoError(t, json.Unmarshal([]byte(raw), &value))
	return value
}

func TestValidate_AcceptsWellFormedCriteria(t *testing.T) {
	value := decode(t, `{"criteria": [
		{"name": "Cost", "description": "a", "weight": 0.25},
		{"name": "Performance", "description": "b", "weight": 0.25},
		{"name": "Scalability", "description": "c", "weight": 0.25},
		{"name": "Maintainability", "description": "d", "weight": 0.25}
	]}`)

	violations := Validate(value, criteriaSchema())
	assert.Empty(t, violations)
}

func TestValidate_ReportsMissingRequiredField(t *testing.T) {
	value := decode(t, `{"criteria": [
		{"name": "Cost", "weight": 0.5},
		{"name": "Speed", "description": "x", "weight": 0.5},
		{"name": "A", "description": "x", "weight": 0},
		{"name": "B", "description": "x", "weight": 0}
	]}`)

	violations := Validate(value, criteriaSchema())
	require.Len(t, violations, 1)
	assert.Equal(t, "$.criteria[0].description", violations[0].Path)
	assert.Contains(t, violations[0].Reason, "required field is missing")
}

func TestValidate_ReportsOutOfRangeWeight(t *testing.T) {
	value := decode(t, `{"criteria": [
		{"name": "Cost", "description": "a", "weight": 1.5},
		{"name": "B", "description": "b", "weight": 0.1},
		{"name": "C", "description": "c", "weight": 0.1},
		{"name": "D", "description": "d", "weight": -0.2}
	]}`)

	violations := Validate(value, criteriaSchema())
	require.Len(t, violations, 2)
	assert.Equal(t, "$.criteria[0].weight", violations[0].Path)
	assert.Equal(t, "$.criteria[3].weight", violations[1].Path)
}

func TestValidate_ReportsWrongArity(t *testing.T) {
	value := decode(t, `{"criteria": [
		{"name": "Cost", "description": "a", "weight": 0.5}
	]}`)

	violations := Validate(value, criteriaSchema())
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Reason, "minimum is 4")
}

func TestValidate_ReportsWrongTypes(t *testing.T) {
	value := decode(t, `{"criteria": "not an array"}`)

	violations := Validate(value, criteriaSchema())
	require.Len(t, violations, 1)
	assert.Equal(t, "$.criteria", violations[0].Path)
	assert.Contains(t, violations[0].Reason, "expected array")
}

func TestValidate_MapValuesAgainstAdditionalProperties(t *testing.T) {
	scoresSchema := Object(map[string]*JSONSchema{
		"scores": {
			Type:                 "object",
			AdditionalProperties: Number(0, 10),
		},
	}, "scores")

	ok := decode(t, `{"scores": {"Cost": 7, "Performance": 9.5}}`)
	assert.Empty(t, Validate(ok, scoresSchema))

	bad := decode(t, `{"scores": {"Cost": 11, "Performance": "high"}}`)
	violations := Validate(bad, scoresSchema)
	require.Len(t, violations, 2)
	// Map keys are iterated sorted, so order is deterministic.
	assert.Equal(t, "$.scores.Cost", violations[0].Path)
	assert.Equal(t, "$.scores.Performance", violations[1].Path)
}

func TestValidate_EnumMembership(t *testing.T) {
	statusSchema := &JSONSchema{Enum: []any{"draft", "in_review", "published", "archived"}}

	assert.Empty(t, Validate("draft", statusSchema))

	violations := Validate("deleted", statusSchema)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Reason, "not one of the allowed values")
}

func TestValidate_NilValueReported(t *testing.T) {
	violations := Validate(nil, String())
	require.Len(t, violations, 1)
	assert.Equal(t, "$", violations[0].Path)
}

func TestValidate_NilSchemaAcceptsAnything(t *testing.T) {
	assert.Empty(t, Validate(map[string]any{"anything": true}, nil))
}

func TestValidate_IntegersCountAsNumbers(t *testing.T) {
	assert.Empty(t, Validate(7, Number(0, 10)))
	assert.Empty(t, Validate(int64(3), Number(0, 10)))
}

func TestViolations_ErrorAndFieldPaths(t *testing.T) {
	v := Violations{
		{Path: "$.criteria", Reason: "expected array, got string"},
		{Path: "$.criteria", Reason: "second reason"},
		{Path: "$.weight", Reason: "above maximum"},
	}

	assert.Equal(t, "$.criteria: expected array, got string; $.criteria: second reason; $.weight: above maximum", v.Error())
	assert.Equal(t, []string{"$.criteria", "$.weight"}, v.FieldPaths())
}
