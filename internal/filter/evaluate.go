package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/mindthunk/vikunja-mcp/internal/vikunja"
)

// Apply evaluates expr against tasks and returns the matching subsequence
// in the original order. The input is never mutated; the result references
// the same task values. A nil or empty expression matches everything.
//
// Evaluation never fails: unknown field/operator combinations and
// unresolvable date tokens simply do not match, so partially-malformed
// expressions degrade to "excluded" instead of aborting the pass.
func Apply(tasks []vikunja.Task, expr *Expression) []vikunja.Task {
	if expr == nil || len(expr.Groups) == 0 {
		out := make([]vikunja.Task, len(tasks))
		copy(out, tasks)
		return out
	}

	now := time.Now()
	out := make([]vikunja.Task, 0, len(tasks))
	for _, task := range tasks {
		if matchExpression(&task, expr, now) {
			out = append(out, task)
		}
	}
	return out
}

func matchExpression(task *vikunja.Task, expr *Expression, now time.Time) bool {
	op := expr.Operator
	if op == "" {
		op = OpAnd
	}
	for i := range expr.Groups {
		matched := matchGroup(task, &expr.Groups[i], now)
		if op == OpOr && matched {
			return true
		}
		if op != OpOr && !matched {
			return false
		}
	}
	// AND: every group matched. OR: none did.
	return op != OpOr
}

func matchGroup(task *vikunja.Task, group *Group, now time.Time) bool {
	if len(group.Conditions) == 0 {
		return true
	}
	op := group.Operator
	if op == "" {
		op = OpAnd
	}
	for i := range group.Conditions {
		matched := matchCondition(task, &group.Conditions[i], now)
		if op == OpOr && matched {
			return true
		}
		if op != OpOr && !matched {
			return false
		}
	}
	return op != OpOr
}

// matchCondition evaluates one condition against a task. Anything the
// engine cannot interpret evaluates to false.
func matchCondition(task *vikunja.Task, cond *Condition, now time.Time) bool {
	kind, ok := KindOf(cond.Field)
	if !ok {
		return false
	}
	if !operatorValidFor(cond.Operator, kind) {
		return false
	}

	switch kind {
	case KindBoolean:
		literal, ok := toBool(cond.Value)
		if !ok {
			return false
		}
		switch cond.Field {
		case FieldDone:
			return matchBool(task.Done, cond.Operator, literal)
		}
		return false

	case KindNumber:
		literal, ok := toFloat(cond.Value)
		if !ok {
			return false
		}
		switch cond.Field {
		case FieldPriority:
			return matchNumber(float64(task.Priority), cond.Operator, literal)
		case FieldPercentDone:
			return matchNumber(task.PercentDone, cond.Operator, literal)
		}
		return false

	case KindDate:
		var actual time.Time
		switch cond.Field {
		case FieldDueDate:
			actual = task.DueDate
		case FieldCreated:
			actual = task.Created
		case FieldUpdated:
			actual = task.Updated
		default:
			return false
		}
		return matchDate(actual, cond.Operator, cond.Value, now)

	case KindString:
		literal, ok := toString(cond.Value)
		if !ok {
			return false
		}
		switch cond.Field {
		case FieldTitle:
			return matchString(task.Title, cond.Operator, literal)
		case FieldDescription:
			return matchString(task.Description, cond.Operator, literal)
		}
		return false

	case KindArray:
		var actual []int64
		switch cond.Field {
		case FieldAssignees:
			actual = task.AssigneeIDs()
		case FieldLabels:
			actual = task.LabelIDs()
		default:
			return false
		}
		return matchMembership(actual, cond.Operator, toList(cond.Value))
	}

	return false
}

func matchBool(actual bool, op Operator, literal bool) bool {
	switch op {
	case OpEqual:
		return actual == literal
	case OpNotEqual:
		return actual != literal
	}
	return false
}

func matchNumber(actual float64, op Operator, literal float64) bool {
	switch op {
	case OpEqual:
		return actual == literal
	case OpNotEqual:
		return actual != literal
	case OpGreater:
		return actual > literal
	case OpGreaterEqual:
		return actual >= literal
	case OpLess:
		return actual < literal
	case OpLessEqual:
		return actual <= literal
	}
	return false
}

// matchDate compares a task date against a date literal. Equality compares
// by calendar day only; the ordering operators compare full instants. An
// absent date matches != and nothing else: null is never equal to anything.
func matchDate(actual time.Time, op Operator, literal any, now time.Time) bool {
	if actual.IsZero() {
		return op == OpNotEqual
	}

	raw, ok := toString(literal)
	if !ok {
		return false
	}
	resolved, ok := resolveDateAt(raw, now)
	if !ok {
		return false
	}

	switch op {
	case OpEqual:
		return sameCalendarDay(actual, resolved)
	case OpNotEqual:
		return !sameCalendarDay(actual, resolved)
	case OpGreater:
		return actual.After(resolved)
	case OpGreaterEqual:
		return actual.After(resolved) || actual.Equal(resolved)
	case OpLess:
		return actual.Before(resolved)
	case OpLessEqual:
		return actual.Before(resolved) || actual.Equal(resolved)
	}
	return false
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func matchString(actual string, op Operator, literal string) bool {
	switch op {
	case OpEqual:
		return actual == literal
	case OpNotEqual:
		return actual != literal
	case OpLike:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(literal))
	}
	return false
}

// matchMembership implements in/not in over id lists. "in" is true when any
// literal element appears among the actual ids; "not in" is its exact
// complement.
func matchMembership(actual []int64, op Operator, literal []any) bool {
	contains := false
	for _, element := range literal {
		if containsID(actual, element) {
			contains = true
			break
		}
	}

	switch op {
	case OpIn:
		return contains
	case OpNotIn:
		return !contains
	}
	return false
}

func containsID(ids []int64, element any) bool {
	want, ok := toID(element)
	if !ok {
		return false
	}
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

// Coercions below convert condition literals to the field's declared kind.

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return parsed, true
	}
	return false, false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func toString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case time.Time:
		return v.Format(time.RFC3339), true
	}
	return "", false
}

// toList normalizes the supported slice shapes to []any. Structured input
// arrives as []any from JSON; the Builder also accepts typed slices.
func toList(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}
		return out
	case []float64:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}
		return out
	case []int:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}
		return out
	case []int64:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}
		return out
	case nil:
		return nil
	default:
		return []any{value}
	}
}

func toID(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
