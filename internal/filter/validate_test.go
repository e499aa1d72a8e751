package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conditionRepeat(n int) []Condition {
	conditions := make([]Condition, n)
	for i := range conditions {
		conditions[i] = Condition{Field: FieldPriority, Operator: OpEqual, Value: float64(i)}
	}
	return conditions
}

func TestValidateAcceptsParsedFilter(t *testing.T) {
	expr, err := Parse(`priority >= 3 && done = false && title like "report"`)
	require.NoError(t, err)

	result := Validate(expr, DefaultLimits())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateConditionCountLimit(t *testing.T) {
	expr := &Expression{
		Groups: []Group{{Conditions: conditionRepeat(51), Operator: OpAnd}},
	}

	result := Validate(expr, DefaultLimits())
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "51 conditions")
	assert.Contains(t, result.Errors[0], "maximum is 50")
}

func TestValidateConditionCountWarning(t *testing.T) {
	expr := &Expression{
		Groups: []Group{{Conditions: conditionRepeat(11), Operator: OpAnd}},
	}

	result := Validate(expr, DefaultLimits())
	assert.True(t, result.Valid, "warning must not invalidate the filter")
	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "may be slow")
}

func TestValidateRejectsDisallowedContent(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
		want string
	}{
		{
			name: "proto field",
			cond: Condition{Field: "__proto__", Operator: OpEqual, Value: 1.0},
			want: `field "__proto__" is not allowed`,
		},
		{
			name: "constructor field",
			cond: Condition{Field: "constructor", Operator: OpEqual, Value: 1.0},
			want: `field "constructor" is not allowed`,
		},
		{
			name: "unknown field",
			cond: Condition{Field: "color", Operator: OpEqual, Value: 1.0},
			want: `unknown field "color"`,
		},
		{
			name: "script tag in value",
			cond: Condition{Field: FieldTitle, Operator: OpEqual, Value: "<script>alert(1)</script>"},
			want: `disallowed content "<script"`,
		},
		{
			name: "javascript url in value",
			cond: Condition{Field: FieldDescription, Operator: OpLike, Value: "javascript:alert(1)"},
			want: `disallowed content "javascript:"`,
		},
		{
			name: "function payload in value",
			cond: Condition{Field: FieldTitle, Operator: OpEqual, Value: "function() { return 1 }"},
			want: `disallowed content "function("`,
		},
		{
			name: "marker case insensitive",
			cond: Condition{Field: FieldTitle, Operator: OpEqual, Value: "<SCRIPT src=x>"},
			want: `disallowed content "<script"`,
		},
		{
			name: "marker inside array element",
			cond: Condition{Field: FieldLabels, Operator: OpIn, Value: []any{"<script>"}},
			want: `disallowed content "<script"`,
		},
		{
			name: "reserved identifier as value",
			cond: Condition{Field: FieldTitle, Operator: OpEqual, Value: "__proto__"},
			want: "reserved identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := &Expression{Groups: []Group{{Conditions: []Condition{tt.cond}, Operator: OpAnd}}}
			result := Validate(expr, DefaultLimits())
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tt.want)
		})
	}
}

func TestValidateOperatorKindCompatibility(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
	}{
		{
			name: "like on number field",
			cond: Condition{Field: FieldPriority, Operator: OpLike, Value: 3.0},
		},
		{
			name: "ordering on array field",
			cond: Condition{Field: FieldLabels, Operator: OpGreater, Value: []any{1.0}},
		},
		{
			name: "in on string field",
			cond: Condition{Field: FieldTitle, Operator: OpIn, Value: "x"},
		},
		{
			name: "ordering on boolean field",
			cond: Condition{Field: FieldDone, Operator: OpLess, Value: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := &Expression{Groups: []Group{{Conditions: []Condition{tt.cond}, Operator: OpAnd}}}
			result := Validate(expr, DefaultLimits())
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], "is not valid for")
		})
	}
}

func TestValidateSizeLimits(t *testing.T) {
	t.Run("oversized array", func(t *testing.T) {
		elements := make([]any, 101)
		for i := range elements {
			elements[i] = float64(i)
		}
		expr := &Expression{Groups: []Group{{
			Conditions: []Condition{{Field: FieldLabels, Operator: OpIn, Value: elements}},
			Operator:   OpAnd,
		}}}

		result := Validate(expr, DefaultLimits())
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors[0], "101 elements")
	})

	t.Run("oversized string", func(t *testing.T) {
		expr := &Expression{Groups: []Group{{
			Conditions: []Condition{{Field: FieldTitle, Operator: OpEqual, Value: strings.Repeat("a", 1001)}},
			Operator:   OpAnd,
		}}}

		result := Validate(expr, DefaultLimits())
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors[0], "1001 characters")
	})

	t.Run("text limits are tighter", func(t *testing.T) {
		expr := &Expression{Groups: []Group{{
			Conditions: []Condition{{Field: FieldTitle, Operator: OpEqual, Value: strings.Repeat("a", 500)}},
			Operator:   OpAnd,
		}}}

		assert.True(t, Validate(expr, DefaultLimits()).Valid)
		assert.False(t, Validate(expr, TextLimits()).Valid)
	})

	t.Run("deeply nested value", func(t *testing.T) {
		value := any("leaf")
		for i := 0; i < 12; i++ {
			value = []any{value}
		}
		expr := &Expression{Groups: []Group{{
			Conditions: []Condition{{Field: FieldLabels, Operator: OpIn, Value: value}},
			Operator:   OpAnd,
		}}}

		result := Validate(expr, DefaultLimits())
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors[0], "nested")
	})
}

func TestValidateNilAndEmpty(t *testing.T) {
	assert.True(t, Validate(nil, DefaultLimits()).Valid)
	assert.True(t, Validate(&Expression{}, DefaultLimits()).Valid)
}

func TestValidateText(t *testing.T) {
	t.Run("valid text", func(t *testing.T) {
		result := ValidateText("priority >= 3 && done = false")
		assert.True(t, result.Valid)
	})

	t.Run("parse error surfaces verbatim", func(t *testing.T) {
		result := ValidateText("priority >= ")
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "expected number")
		assert.Contains(t, result.Errors[0], "position")
	})
}
