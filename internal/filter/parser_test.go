package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleCondition(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Condition
	}{
		{
			name:  "boolean equality",
			input: "done = false",
			want:  Condition{Field: FieldDone, Operator: OpEqual, Value: false},
		},
		{
			name:  "number comparison",
			input: "priority >= 3",
			want:  Condition{Field: FieldPriority, Operator: OpGreaterEqual, Value: 3.0},
		},
		{
			name:  "negative number",
			input: "percentDone > -1",
			want:  Condition{Field: FieldPercentDone, Operator: OpGreater, Value: -1.0},
		},
		{
			name:  "string equality double quotes",
			input: `title = "Weekly report"`,
			want:  Condition{Field: FieldTitle, Operator: OpEqual, Value: "Weekly report"},
		},
		{
			name:  "string like single quotes",
			input: "description like 'urgent'",
			want:  Condition{Field: FieldDescription, Operator: OpLike, Value: "urgent"},
		},
		{
			name:  "escaped quote inside string",
			input: `title = "say \"hi\""`,
			want:  Condition{Field: FieldTitle, Operator: OpEqual, Value: `say "hi"`},
		},
		{
			name:  "relative date token",
			input: "dueDate < now+7d",
			want:  Condition{Field: FieldDueDate, Operator: OpLess, Value: "now+7d"},
		},
		{
			name:  "iso date token",
			input: "created >= 2024-01-02T10:00:00Z",
			want:  Condition{Field: FieldCreated, Operator: OpGreaterEqual, Value: "2024-01-02T10:00:00Z"},
		},
		{
			name:  "array membership",
			input: "assignees in [1, 2, 3]",
			want:  Condition{Field: FieldAssignees, Operator: OpIn, Value: []any{1.0, 2.0, 3.0}},
		},
		{
			name:  "negated membership",
			input: "labels not in [4]",
			want:  Condition{Field: FieldLabels, Operator: OpNotIn, Value: []any{4.0}},
		},
		{
			name:  "array with quoted elements",
			input: `labels in ["7", 8]`,
			want:  Condition{Field: FieldLabels, Operator: OpIn, Value: []any{"7", 8.0}},
		},
		{
			name:  "no whitespace around operator",
			input: "priority>=3",
			want:  Condition{Field: FieldPriority, Operator: OpGreaterEqual, Value: 3.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.input)
			require.NoError(t, err)
			require.Len(t, expr.Groups, 1)
			require.Len(t, expr.Groups[0].Conditions, 1)
			assert.Equal(t, tt.want, expr.Groups[0].Conditions[0])
		})
	}
}

func TestParseGroupFolding(t *testing.T) {
	t.Run("same operator folds into one group", func(t *testing.T) {
		expr, err := Parse("priority >= 3 && done = false")
		require.NoError(t, err)
		require.Len(t, expr.Groups, 1)
		assert.Equal(t, OpAnd, expr.Groups[0].Operator)
		assert.Len(t, expr.Groups[0].Conditions, 2)
		assert.Equal(t, OpAnd, expr.Operator)
	})

	t.Run("operator change starts a new group", func(t *testing.T) {
		expr, err := Parse("priority >= 3 && done = false || percentDone = 100 && priority < 2")
		require.NoError(t, err)
		require.Len(t, expr.Groups, 2)
		assert.Equal(t, OpOr, expr.Operator)
		assert.Equal(t, OpAnd, expr.Groups[0].Operator)
		assert.Len(t, expr.Groups[0].Conditions, 2)
		assert.Equal(t, OpAnd, expr.Groups[1].Operator)
		assert.Len(t, expr.Groups[1].Conditions, 2)
	})

	t.Run("all or conditions share a group", func(t *testing.T) {
		expr, err := Parse("priority = 1 || priority = 2 || priority = 3")
		require.NoError(t, err)
		require.Len(t, expr.Groups, 1)
		assert.Equal(t, OpOr, expr.Groups[0].Operator)
		assert.Len(t, expr.Groups[0].Conditions, 3)
		// The group-joining operator stays at its default.
		assert.Equal(t, OpAnd, expr.Operator)
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantMessage string
	}{
		{
			name:        "unknown field",
			input:       "color = 5",
			wantMessage: `unknown field "color"`,
		},
		{
			name:        "proto field rejected",
			input:       "__proto__ = 1",
			wantMessage: `field "__proto__" is not allowed`,
		},
		{
			name:        "constructor field rejected",
			input:       "constructor = 1",
			wantMessage: `field "constructor" is not allowed`,
		},
		{
			name:        "prototype field rejected",
			input:       "prototype = 1",
			wantMessage: `field "prototype" is not allowed`,
		},
		{
			name:        "missing value",
			input:       "priority >=",
			wantMessage: `expected number for field "priority"`,
		},
		{
			name:        "boolean field with number",
			input:       "done = 5",
			wantMessage: `expected true or false for field "done"`,
		},
		{
			name:        "unquoted string value",
			input:       "title = report",
			wantMessage: `expected quoted string for field "title"`,
		},
		{
			name:        "unterminated string",
			input:       `title = "report`,
			wantMessage: "unterminated string literal",
		},
		{
			name:        "single ampersand",
			input:       "done = true & priority = 1",
			wantMessage: "expected '&&'",
		},
		{
			name:        "missing closing bracket",
			input:       "labels in [1, 2",
			wantMessage: "expected ',' or ']'",
		},
		{
			name:        "missing in after not",
			input:       "labels not like [1]",
			wantMessage: "expected 'in' after 'not'",
		},
		{
			name:        "trailing garbage",
			input:       "done = true priority",
			wantMessage: "expected '&&' or '||'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.input)
			assert.Nil(t, expr)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, parseErr.Message, tt.wantMessage)
			assert.GreaterOrEqual(t, parseErr.Position, 0)
			assert.LessOrEqual(t, parseErr.Position, len(tt.input))
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	input := "priority >= 3 && color = 5"
	_, err := Parse(input)
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	// Position points at the start of the unknown field.
	assert.Equal(t, 17, parseErr.Position)
	assert.Contains(t, parseErr.Context, "color")
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 0, parseErr.Position)
}
