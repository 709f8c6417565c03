package condition

import (
	"time"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-esquery/pkg/field"
)

type rangeCondition struct {
	field    field.Ref
	min      Value
	max      Value
	boundary Boundary
	strategy strategy
}

func (c rangeCondition) Query() *types.Query {
	lo, hi := c.min, c.max
	if lo.IsNull() && hi.IsNull() {
		return nil
	}
	if !lo.IsNull() && !hi.IsNull() && c.strategy.less(hi, lo) {
		lo, hi = hi, lo
	}

	rq := c.strategy.newNode()
	if !lo.IsNull() {
		if c.boundary.lowerInclusive() {
			c.strategy.gte(rq, lo)
		} else {
			c.strategy.gt(rq, lo)
		}
	}
	if !hi.IsNull() {
		if c.boundary.upperInclusive() {
			c.strategy.lte(rq, hi)
		} else {
			c.strategy.lt(rq, hi)
		}
	}
	return &types.Query{Range: map[string]types.RangeQuery{c.field.String(): rq}}
}

// Range builds a two-sided range from loosely typed bounds. A nil bound is
// unset. Reversed bounds are swapped.
func Range(f field.Ref, min, max any, boundary Boundary) (Condition, error) {
	lo, hi := ValueOf(min), ValueOf(max)
	if lo.kind == KindNull && hi.kind == KindNull {
		return Null, nil
	}
	s, ok := unify(lo, hi)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedType, "range on %s between %s and %s", f, lo.TypeName(), hi.TypeName())
	}
	return rangeCondition{field: f, min: lo, max: hi, boundary: boundary, strategy: s}, nil
}

// Between is Range with both ends inclusive.
func Between(f field.Ref, min, max any) (Condition, error) {
	return Range(f, min, max, BoundaryBoth)
}

// IntRange builds an integer range. Nil pointers leave that side open.
func IntRange(f field.Ref, min, max *int64, boundary Boundary) Condition {
	return rangeCondition{
		field:    f,
		min:      optional(min, Int, KindInteger),
		max:      optional(max, Int, KindInteger),
		boundary: boundary,
		strategy: integerStrategy,
	}
}

// FloatRange builds a floating-point range. Nil pointers leave that side open.
func FloatRange(f field.Ref, min, max *float64, boundary Boundary) Condition {
	return rangeCondition{
		field:    f,
		min:      optional(min, Float, KindFloat),
		max:      optional(max, Float, KindFloat),
		boundary: boundary,
		strategy: floatStrategy,
	}
}

// DateRange builds a date-time range. Nil pointers leave that side open.
func DateRange(f field.Ref, min, max *time.Time, boundary Boundary) Condition {
	return rangeCondition{
		field:    f,
		min:      optional(min, Time, KindTime),
		max:      optional(max, Time, KindTime),
		boundary: boundary,
		strategy: timeStrategy,
	}
}

// DateOnlyRange matches whole days from min through max. It compiles to the
// half-open interval [min 00:00, max+1 00:00) in the location of each bound.
func DateOnlyRange(f field.Ref, min, max *time.Time) Condition {
	if min != nil && max != nil && max.Before(*min) {
		min, max = max, min
	}
	lo, hi := Absent(KindTime), Absent(KindTime)
	if min != nil {
		lo = Time(startOfDay(*min))
	}
	if max != nil {
		hi = Time(startOfDay(*max).AddDate(0, 0, 1))
	}
	return rangeCondition{field: f, min: lo, max: hi, boundary: BoundaryLeft, strategy: timeStrategy}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func optional[T any](p *T, wrap func(T) Value, k Kind) Value {
	if p == nil {
		return Absent(k)
	}
	return wrap(*p)
}

type compareCondition struct {
	field    field.Ref
	value    Value
	op       Operator
	strategy strategy
}

func (c compareCondition) Query() *types.Query {
	if c.value.IsNull() {
		return nil
	}
	rq := c.strategy.newNode()
	switch c.op {
	case OpGreater:
		c.strategy.gt(rq, c.value)
	case OpGreaterOrEqual:
		c.strategy.gte(rq, c.value)
	case OpLess:
		c.strategy.lt(rq, c.value)
	case OpLessOrEqual:
		c.strategy.lte(rq, c.value)
	}
	return &types.Query{Range: map[string]types.RangeQuery{c.field.String(): rq}}
}

// Compare builds a one-sided range. The value kind picks the integer, float
// or date-time node.
func Compare(f field.Ref, value any, op Operator) (Condition, error) {
	if !op.IsComparison() {
		return nil, errors.Wrapf(ErrUnknownOperator, "%q is not a comparison", op)
	}
	v := ValueOf(value)
	s, ok := strategyFor(v.kind)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedType, "%s %s %s", f, op, v.TypeName())
	}
	return compareCondition{field: f, value: v, op: op, strategy: s}, nil
}

// Greater is Compare with OpGreater.
func Greater(f field.Ref, value any) (Condition, error) { return Compare(f, value, OpGreater) }

// GreaterOrEqual is Compare with OpGreaterOrEqual.
func GreaterOrEqual(f field.Ref, value any) (Condition, error) {
	return Compare(f, value, OpGreaterOrEqual)
}

// Less is Compare with OpLess.
func Less(f field.Ref, value any) (Condition, error) { return Compare(f, value, OpLess) }

// LessOrEqual is Compare with OpLessOrEqual.
func LessOrEqual(f field.Ref, value any) (Condition, error) { return Compare(f, value, OpLessOrEqual) }
