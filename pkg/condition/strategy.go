package condition

import (
	"encoding/json"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

// strategy holds the per-kind coercion used by range and compare conditions.
type strategy struct {
	kind    Kind
	newNode func() types.RangeQuery
	gt      func(types.RangeQuery, Value)
	gte     func(types.RangeQuery, Value)
	lt      func(types.RangeQuery, Value)
	lte     func(types.RangeQuery, Value)
	less    func(a, b Value) bool
}

func untyped(q types.RangeQuery) *types.UntypedRangeQuery { return q.(*types.UntypedRangeQuery) }

func number(q types.RangeQuery) *types.NumberRangeQuery { return q.(*types.NumberRangeQuery) }

func date(q types.RangeQuery) *types.DateRangeQuery { return q.(*types.DateRangeQuery) }

func float64Ptr(f float64) *types.Float64 {
	v := types.Float64(f)
	return &v
}

// intRaw keeps integers exact; float64 bounds lose precision above 2^53.
func intRaw(v Value) json.RawMessage {
	return strconv.AppendInt(nil, v.Int64(), 10)
}

func timePtr(v Value) *string {
	s := formatTime(v.t)
	return &s
}

var integerStrategy = strategy{
	kind:    KindInteger,
	newNode: func() types.RangeQuery { return &types.UntypedRangeQuery{} },
	gt:      func(q types.RangeQuery, v Value) { untyped(q).Gt = intRaw(v) },
	gte:     func(q types.RangeQuery, v Value) { untyped(q).Gte = intRaw(v) },
	lt:      func(q types.RangeQuery, v Value) { untyped(q).Lt = intRaw(v) },
	lte:     func(q types.RangeQuery, v Value) { untyped(q).Lte = intRaw(v) },
	less:    func(a, b Value) bool { return a.Int64() < b.Int64() },
}

var floatStrategy = strategy{
	kind:    KindFloat,
	newNode: func() types.RangeQuery { return &types.NumberRangeQuery{} },
	gt:      func(q types.RangeQuery, v Value) { number(q).Gt = float64Ptr(v.Float64()) },
	gte:     func(q types.RangeQuery, v Value) { number(q).Gte = float64Ptr(v.Float64()) },
	lt:      func(q types.RangeQuery, v Value) { number(q).Lt = float64Ptr(v.Float64()) },
	lte:     func(q types.RangeQuery, v Value) { number(q).Lte = float64Ptr(v.Float64()) },
	less:    func(a, b Value) bool { return a.Float64() < b.Float64() },
}

var timeStrategy = strategy{
	kind:    KindTime,
	newNode: func() types.RangeQuery { return &types.DateRangeQuery{} },
	gt:      func(q types.RangeQuery, v Value) { date(q).Gt = timePtr(v) },
	gte:     func(q types.RangeQuery, v Value) { date(q).Gte = timePtr(v) },
	lt:      func(q types.RangeQuery, v Value) { date(q).Lt = timePtr(v) },
	lte:     func(q types.RangeQuery, v Value) { date(q).Lte = timePtr(v) },
	less:    func(a, b Value) bool { return a.t.Before(b.t) },
}

func strategyFor(k Kind) (strategy, bool) {
	switch k {
	case KindInteger:
		return integerStrategy, true
	case KindFloat:
		return floatStrategy, true
	case KindTime:
		return timeStrategy, true
	}
	return strategy{}, false
}

// unify picks one strategy for a pair of bounds. Integer and float mix as float.
func unify(a, b Value) (strategy, bool) {
	ka, kb := a.kind, b.kind
	switch {
	case ka == KindNull:
		ka = kb
	case kb == KindNull:
		kb = ka
	}
	if ka != kb {
		if (ka == KindInteger && kb == KindFloat) || (ka == KindFloat && kb == KindInteger) {
			return floatStrategy, true
		}
		return strategy{}, false
	}
	return strategyFor(ka)
}
