package filter

import (
	"fmt"
	"strings"
)

// Limits bounds the size and content of a filter expression. The zero value
// is not useful; start from DefaultLimits or TextLimits.
type Limits struct {
	// MaxConditions is the hard cap on conditions across the whole
	// expression.
	MaxConditions int

	// WarnConditions is the soft threshold above which validation emits a
	// performance warning.
	WarnConditions int

	// MaxDepth caps nesting inside condition values. The grammar itself is
	// flat, but structured input built programmatically can embed slices
	// and maps arbitrarily deep.
	MaxDepth int

	// MaxArrayLen caps the element count of array literals.
	MaxArrayLen int

	// MaxStringLen caps the length of string literals.
	MaxStringLen int
}

// DefaultLimits returns the limits applied to structured filter input.
func DefaultLimits() Limits {
	return Limits{
		MaxConditions:  50,
		WarnConditions: 10,
		MaxDepth:       10,
		MaxArrayLen:    100,
		MaxStringLen:   1000,
	}
}

// TextLimits returns the tighter limits applied to bare text filters, which
// are meant for short ad-hoc queries.
func TextLimits() Limits {
	limits := DefaultLimits()
	limits.MaxStringLen = 200
	return limits
}

// Result reports the outcome of validating a filter expression. Errors are
// fatal; warnings are advisory.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// injectionMarkers are rejected inside string literals regardless of which
// field they target.
var injectionMarkers = []string{"<script", "javascript:", "function("}

// Validate walks expr and checks it against limits. Validation is purely
// structural and content-based; it never consults live data.
func Validate(expr *Expression, limits Limits) Result {
	result := Result{Valid: true}
	if expr == nil {
		return result
	}

	count := expr.ConditionCount()
	if count > limits.MaxConditions {
		result.addError("filter has %d conditions, maximum is %d", count, limits.MaxConditions)
	} else if count > limits.WarnConditions {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("filter has %d conditions; filters above %d conditions may be slow to evaluate", count, limits.WarnConditions))
	}

	if expr.Operator != "" && expr.Operator != OpAnd && expr.Operator != OpOr {
		result.addError("invalid logical operator %q", expr.Operator)
	}

	for _, group := range expr.Groups {
		if group.Operator != "" && group.Operator != OpAnd && group.Operator != OpOr {
			result.addError("invalid logical operator %q", group.Operator)
		}
		for _, cond := range group.Conditions {
			validateCondition(cond, limits, &result)
		}
	}

	return result
}

// ValidateText parses filter text and validates the result under the
// tighter text-filter limits. Parse failures surface as validation errors.
func ValidateText(text string) Result {
	expr, err := Parse(text)
	if err != nil {
		return Result{Valid: false, Errors: []string{err.Error()}}
	}
	return Validate(expr, TextLimits())
}

func validateCondition(cond Condition, limits Limits, result *Result) {
	if reservedIdentifiers[string(cond.Field)] {
		result.addError("field %q is not allowed", cond.Field)
		return
	}

	kind, ok := KindOf(cond.Field)
	if !ok {
		result.addError("unknown field %q", cond.Field)
		return
	}

	if !operatorValidFor(cond.Operator, kind) {
		result.addError("operator %q is not valid for %s field %q", cond.Operator, kind, cond.Field)
	}

	if depth := valueDepth(cond.Value); depth > limits.MaxDepth {
		result.addError("value for field %q is nested %d levels deep, maximum is %d", cond.Field, depth, limits.MaxDepth)
		return
	}

	validateValue(cond.Field, cond.Value, limits, result)
}

func validateValue(field Field, value any, limits Limits, result *Result) {
	switch v := value.(type) {
	case string:
		if len(v) > limits.MaxStringLen {
			result.addError("value for field %q is %d characters long, maximum is %d", field, len(v), limits.MaxStringLen)
		}
		lower := strings.ToLower(v)
		for _, marker := range injectionMarkers {
			if strings.Contains(lower, marker) {
				result.addError("value for field %q contains disallowed content %q", field, marker)
			}
		}
		if reservedIdentifiers[v] {
			result.addError("value for field %q is a reserved identifier", field)
		}
	case []any:
		if len(v) > limits.MaxArrayLen {
			result.addError("array for field %q has %d elements, maximum is %d", field, len(v), limits.MaxArrayLen)
			return
		}
		for _, element := range v {
			validateValue(field, element, limits, result)
		}
	}
}

// valueDepth measures nesting of a condition value: scalars are depth 1,
// each slice or map level adds one.
func valueDepth(value any) int {
	switch v := value.(type) {
	case []any:
		deepest := 0
		for _, element := range v {
			if d := valueDepth(element); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	case map[string]any:
		deepest := 0
		for _, element := range v {
			if d := valueDepth(element); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	default:
		return 1
	}
}

func (r *Result) addError(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}
