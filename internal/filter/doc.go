// Package filter implements the filter expression engine used to select
// Vikunja tasks client-side.
//
// The upstream Vikunja API accepts a filter parameter but applies it
// unreliably, so filtering is re-implemented here: tasks are fetched
// unfiltered and the filter string is parsed, validated and evaluated
// locally. The package provides functionality for:
//   - Parsing filter text into an Expression tree (Parse)
//   - Validating expressions against size and content limits (Validate)
//   - Building filter text programmatically (Builder)
//   - Evaluating expressions against in-memory tasks (Apply)
//   - Resolving relative date tokens such as "now+7d" (ResolveDate)
//
// # Grammar
//
// A filter string is one or more conditions of the form
// "<field> <operator> <value>" joined by && or ||:
//
//	done = false
//	priority >= 3 && done = false
//	dueDate < now+7d || labels in [1, 2]
//
// Consecutive conditions joined by the same logical operator fold into one
// group; a change of operator starts a new group, and the changed operator
// joins the groups. The structure is deliberately flat: groups of
// conditions, nothing deeper.
//
// Field names are restricted to the built-in catalogue. Identifiers outside
// it, including "__proto__", "constructor" and "prototype", are rejected
// with a ParseError so that hostile payloads never reach downstream code.
//
// # Example Usage
//
//	expr, err := filter.Parse(`priority >= 3 && done = false`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if result := filter.Validate(expr, filter.DefaultLimits()); !result.Valid {
//	    log.Fatal(strings.Join(result.Errors, "; "))
//	}
//
//	matching := filter.Apply(tasks, expr)
//
// All functions are pure and safe for concurrent use; only a Builder
// instance carries state, scoped to that instance.
package filter
