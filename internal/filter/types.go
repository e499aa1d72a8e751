package filter

import "fmt"

// ValueKind classifies the literal type a filterable field accepts.
type ValueKind int

const (
	KindBoolean ValueKind = iota
	KindNumber
	KindDate
	KindString
	KindArray
)

// String returns the kind name as used in error messages.
func (k ValueKind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Field is a filterable task field.
type Field string

const (
	FieldDone        Field = "done"
	FieldPriority    Field = "priority"
	FieldPercentDone Field = "percentDone"
	FieldDueDate     Field = "dueDate"
	FieldAssignees   Field = "assignees"
	FieldLabels      Field = "labels"
	FieldCreated     Field = "created"
	FieldUpdated     Field = "updated"
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
)

// Operator compares a field against a literal.
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpLike         Operator = "like"
	OpIn           Operator = "in"
	OpNotIn        Operator = "not in"
)

// LogicalOperator joins conditions within a group or groups within an
// expression.
type LogicalOperator string

const (
	OpAnd LogicalOperator = "&&"
	OpOr  LogicalOperator = "||"
)

// Condition is a single field/operator/value comparison. Value holds a
// bool, float64, string or []any depending on the field's kind. Date
// literals stay strings so relative tokens like "now+7d" resolve at
// evaluation time, not parse time.
//
// Conditions are values; they are never mutated after construction.
type Condition struct {
	Field    Field    `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Group combines conditions with a single logical operator.
type Group struct {
	Conditions []Condition     `json:"conditions"`
	Operator   LogicalOperator `json:"operator"`
}

// Expression is the parsed form of a filter string: groups of conditions
// joined by Operator (&& when empty). The two-level structure is the full
// nesting depth the grammar supports.
type Expression struct {
	Groups   []Group         `json:"groups"`
	Operator LogicalOperator `json:"operator,omitempty"`
}

// ConditionCount returns the number of conditions across all groups.
func (e *Expression) ConditionCount() int {
	if e == nil {
		return 0
	}
	n := 0
	for _, g := range e.Groups {
		n += len(g.Conditions)
	}
	return n
}

// ParseError describes a syntax error in filter text. Position is a 0-based
// offset into the original text; Context is a short excerpt around the
// offending character for diagnostics.
type ParseError struct {
	Message  string `json:"message"`
	Position int    `json:"position"`
	Context  string `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s at position %d near %q", e.Message, e.Position, e.Context)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Position)
}
