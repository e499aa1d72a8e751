package filter

import "sort"

// catalogue maps every filterable field to the kind of literal it accepts.
// This is the single authority on which identifiers are valid fields; the
// parser, validator and evaluator all consult it.
var catalogue = map[Field]ValueKind{
	FieldDone:        KindBoolean,
	FieldPriority:    KindNumber,
	FieldPercentDone: KindNumber,
	FieldDueDate:     KindDate,
	FieldAssignees:   KindArray,
	FieldLabels:      KindArray,
	FieldCreated:     KindDate,
	FieldUpdated:     KindDate,
	FieldTitle:       KindString,
	FieldDescription: KindString,
}

// reservedIdentifiers are rejected explicitly rather than just failing the
// catalogue lookup, so the error message names them as disallowed instead of
// merely unknown. They are classic prototype-pollution payloads.
var reservedIdentifiers = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// KindOf returns the value kind for a field and whether the field is in the
// catalogue.
func KindOf(f Field) (ValueKind, bool) {
	k, ok := catalogue[f]
	return k, ok
}

// Fields returns all filterable field names in sorted order.
func Fields() []Field {
	fields := make([]Field, 0, len(catalogue))
	for f := range catalogue {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// operatorsByKind lists the operators valid for each value kind. Ordering
// operators make no sense on arrays, "like" only on strings, and membership
// tests only on arrays.
var operatorsByKind = map[ValueKind][]Operator{
	KindBoolean: {OpEqual, OpNotEqual},
	KindNumber:  {OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual},
	KindDate:    {OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual},
	KindString:  {OpEqual, OpNotEqual, OpLike},
	KindArray:   {OpIn, OpNotIn},
}

// OperatorsFor returns the operators valid for a value kind.
func OperatorsFor(k ValueKind) []Operator {
	ops := operatorsByKind[k]
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// operatorValidFor reports whether op may be applied to a field of kind k.
func operatorValidFor(op Operator, k ValueKind) bool {
	for _, valid := range operatorsByKind[k] {
		if op == valid {
			return true
		}
	}
	return false
}
