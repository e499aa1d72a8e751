// Package filters stores named, reusable task filters.
//
// Saved filters pair a name with validated filter text (and its parsed
// expression) so tool callers can apply common queries without rebuilding
// them. Storage is in-memory and scoped to the server process; the filter
// engine itself lives in the filter package and only the text/expression
// fields pass through here.
package filters
