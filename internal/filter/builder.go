package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Builder accumulates structured conditions and serializes them to filter
// text. Conditions join with && unless Or marks the next one. A Builder is
// scoped to one filter; it is not safe for concurrent use.
//
//	text := filter.NewBuilder().
//		Where(filter.FieldPriority, filter.OpGreaterEqual, 3).
//		Or().
//		Where(filter.FieldDone, filter.OpEqual, true).
//		String()
//	// "priority >= 3 || done = true"
type Builder struct {
	conditions []Condition
	joins      []LogicalOperator
	nextJoin   LogicalOperator
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nextJoin: OpAnd}
}

// Where appends a condition. It joins to the previous condition with the
// pending logical operator, then resets the pending operator to &&.
func (b *Builder) Where(field Field, op Operator, value any) *Builder {
	if len(b.conditions) > 0 {
		b.joins = append(b.joins, b.nextJoin)
	}
	b.nextJoin = OpAnd
	b.conditions = append(b.conditions, Condition{Field: field, Operator: op, Value: value})
	return b
}

// Or marks that the next appended condition joins with || instead of &&.
func (b *Builder) Or() *Builder {
	b.nextJoin = OpOr
	return b
}

// And resets the pending join operator back to the default &&.
func (b *Builder) And() *Builder {
	b.nextJoin = OpAnd
	return b
}

// Len returns the number of appended conditions.
func (b *Builder) Len() int {
	return len(b.conditions)
}

// Expression folds the accumulated conditions into an Expression using the
// same grouping rules as the parser, so Parse(b.String()) and
// b.Expression() agree.
func (b *Builder) Expression() *Expression {
	return foldConditions(b.conditions, b.joins)
}

// Validate checks the equivalent expression against the default limits.
func (b *Builder) Validate() Result {
	return Validate(b.Expression(), DefaultLimits())
}

// String serializes the accumulated conditions into filter text. The output
// round-trips: parsing it yields the same fields, operators and values in
// the same order.
func (b *Builder) String() string {
	var sb strings.Builder
	for i, cond := range b.conditions {
		if i > 0 {
			sb.WriteByte(' ')
			sb.WriteString(string(b.joins[i-1]))
			sb.WriteByte(' ')
		}
		sb.WriteString(string(cond.Field))
		sb.WriteByte(' ')
		sb.WriteString(string(cond.Operator))
		sb.WriteByte(' ')
		sb.WriteString(formatValue(cond.Field, cond.Value))
	}
	return sb.String()
}

// formatValue renders a condition value in the form the parser expects for
// the field's kind.
func formatValue(field Field, value any) string {
	kind, ok := KindOf(field)
	if !ok {
		kind = KindString
	}

	switch kind {
	case KindArray:
		elements := toList(value)
		parts := make([]string, len(elements))
		for i, element := range elements {
			parts[i] = formatScalar(element, true)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindString:
		return formatScalar(value, true)
	default:
		return formatScalar(value, false)
	}
}

// formatScalar renders a single scalar. quoteStrings controls whether a
// string value gets quoted; booleans and single-token dates serialize bare.
// Date layouts with whitespace ("2006-01-02 15:04:05") would be split by the
// lexer, so those are quoted; the parser accepts quoted date literals.
func formatScalar(value any, quoteStrings bool) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case string:
		if quoteStrings || strings.ContainsAny(v, " \t\"[],") {
			return quoteString(v)
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		if quoteStrings {
			return quoteString(fmt.Sprintf("%v", v))
		}
		return fmt.Sprintf("%v", v)
	}
}

// quoteString wraps v in double quotes, escaping backslashes and embedded
// double quotes.
func quoteString(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}
