package condition

import (
	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-esquery/pkg/field"
)

// Create picks the condition for an operator and value pair.
//
// Membership and equality operators dispatch directly. Ordering operators
// dispatch on the value kind: integers, date-times and floats each get their
// own range node, anything else fails with ErrUnsupportedType. Pattern
// operators return ErrNotImplemented; use Starts, Ends or Contains instead.
func Create(f field.Ref, value any, op Operator) (Condition, error) {
	if f.IsZero() {
		return nil, ErrEmptyField
	}
	switch {
	case op == OpIn:
		return In(f, value), nil
	case op == OpNotIn:
		return NotIn(f, value), nil
	case op == OpEqual:
		return Equal(f, value), nil
	case op == OpNotEqual:
		return NotEqual(f, value), nil
	case op.IsComparison():
		return Compare(f, value, op)
	case op.IsPattern():
		return nil, errors.Wrapf(ErrNotImplemented, "operator %q", op)
	}
	return nil, errors.Wrapf(ErrUnknownOperator, "%q", op)
}

// Pattern builds the wildcard condition for a pattern operator.
func Pattern(f field.Ref, value string, op Operator) (Condition, error) {
	switch op {
	case OpStarts:
		return Starts(f, value), nil
	case OpEnds:
		return Ends(f, value), nil
	case OpContains:
		return Contains(f, value), nil
	}
	return nil, errors.Wrapf(ErrUnknownOperator, "%q is not a pattern operator", op)
}
