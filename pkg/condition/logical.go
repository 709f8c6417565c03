package condition

import (
	"reflect"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

// minimumShould marks disjunctions built by Or so they can be flattened.
const minimumShould = 1

// And conjoins a and b. Both nodes are materialized immediately. A side
// without a constraint is dropped, so And(Null, x) is x.
func And(a, b Condition) Condition {
	return Raw(conjoin(queryOf(a), queryOf(b)))
}

// Or disjoins a and b with the same null handling as And.
func Or(a, b Condition) Condition {
	return Raw(disjoin(queryOf(a), queryOf(b)))
}

// All folds conditions with And.
func All(conds ...Condition) Condition {
	var q *types.Query
	for _, c := range conds {
		q = conjoin(q, queryOf(c))
	}
	return Raw(q)
}

// Any folds conditions with Or.
func Any(conds ...Condition) Condition {
	var q *types.Query
	for _, c := range conds {
		q = disjoin(q, queryOf(c))
	}
	return Raw(q)
}

// Not negates c. Negating Null is still Null.
func Not(c Condition) Condition {
	return Raw(mustNot(queryOf(c)))
}

func conjoin(a, b *types.Query) *types.Query {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	must := append(conjuncts(a), conjuncts(b)...)
	return &types.Query{Bool: &types.BoolQuery{Must: must}}
}

func disjoin(a, b *types.Query) *types.Query {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	should := append(disjuncts(a), disjuncts(b)...)
	return &types.Query{Bool: &types.BoolQuery{Should: should, MinimumShouldMatch: minimumShould}}
}

func conjuncts(q *types.Query) []types.Query {
	if onlyBool(q) {
		b := *q.Bool
		must := b.Must
		b.Must = nil
		if len(must) > 0 && reflect.ValueOf(b).IsZero() {
			return append([]types.Query(nil), must...)
		}
	}
	return []types.Query{*q}
}

func disjuncts(q *types.Query) []types.Query {
	if onlyBool(q) {
		b := *q.Bool
		should, msm := b.Should, b.MinimumShouldMatch
		b.Should, b.MinimumShouldMatch = nil, nil
		if len(should) > 0 && msm == minimumShould && reflect.ValueOf(b).IsZero() {
			return append([]types.Query(nil), should...)
		}
	}
	return []types.Query{*q}
}

func onlyBool(q *types.Query) bool {
	if q.Bool == nil {
		return false
	}
	rest := *q
	rest.Bool = nil
	return reflect.ValueOf(rest).IsZero()
}
