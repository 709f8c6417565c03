package condition

import (
	"reflect"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/robert-malhotra/go-esquery/pkg/field"
)

type inCondition struct {
	field  field.Ref
	values []types.FieldValue
	unset  bool
}

// In matches documents whose field equals any of values. values may be any
// slice or array; a scalar is treated as a single-element list. Nil entries
// are dropped. A nil enumerable imposes no constraint, while an empty one
// matches nothing.
func In(f field.Ref, values any) Condition {
	items, ok := enumerate(values)
	if !ok {
		return inCondition{field: f, unset: true}
	}
	list := make([]types.FieldValue, 0, len(items))
	for _, item := range items {
		if item.IsNull() {
			continue
		}
		list = append(list, item.fieldValue())
	}
	return inCondition{field: f, values: list}
}

func (c inCondition) Query() *types.Query {
	if c.unset {
		return nil
	}
	return &types.Query{Terms: &types.TermsQuery{
		TermsQuery: map[string]types.TermsQueryField{c.field.String(): c.values},
	}}
}

type notInCondition struct {
	in inCondition
}

// NotIn negates In. A nil enumerable still imposes no constraint.
func NotIn(f field.Ref, values any) Condition {
	return notInCondition{in: In(f, values).(inCondition)}
}

func (c notInCondition) Query() *types.Query {
	return mustNot(c.in.Query())
}

func enumerate(values any) ([]Value, bool) {
	if values == nil {
		return nil, false
	}
	switch x := values.(type) {
	case []Value:
		return x, x != nil
	case []any:
		if x == nil {
			return nil, false
		}
		out := make([]Value, 0, len(x))
		for _, v := range x {
			out = append(out, ValueOf(v))
		}
		return out, true
	}

	rv := reflect.ValueOf(values)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, false
		}
		return enumerate(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return nil, false
		}
		fallthrough
	case reflect.Array:
		out := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, ValueOf(rv.Index(i).Interface()))
		}
		return out, true
	}
	return []Value{ValueOf(values)}, true
}
