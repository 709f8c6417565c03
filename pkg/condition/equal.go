package condition

import (
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/robert-malhotra/go-esquery/pkg/field"
)

type equalCondition struct {
	field field.Ref
	value Value
}

// Equal matches documents whose field equals value. Text values compile to a
// match_phrase with zero slop. Other values compile to a term query.
func Equal(f field.Ref, value any) Condition {
	return equalCondition{field: f, value: ValueOf(value)}
}

func (c equalCondition) Query() *types.Query {
	if c.value.IsNull() {
		return nil
	}
	if c.value.kind == KindText {
		slop := 0
		return &types.Query{MatchPhrase: map[string]types.MatchPhraseQuery{
			c.field.String(): {Query: c.value.s, Slop: &slop},
		}}
	}
	return termQuery(c.field, c.value)
}

type notEqualCondition struct {
	eq equalCondition
}

// NotEqual negates Equal.
func NotEqual(f field.Ref, value any) Condition {
	return notEqualCondition{eq: equalCondition{field: f, value: ValueOf(value)}}
}

func (c notEqualCondition) Query() *types.Query {
	return mustNot(c.eq.Query())
}

type termCondition struct {
	field field.Ref
	value Value
}

// Term matches the exact indexed value regardless of its kind.
func Term(f field.Ref, value any) Condition {
	return termCondition{field: f, value: ValueOf(value)}
}

func (c termCondition) Query() *types.Query {
	if c.value.IsNull() {
		return nil
	}
	return termQuery(c.field, c.value)
}

func termQuery(f field.Ref, v Value) *types.Query {
	return &types.Query{Term: map[string]types.TermQuery{f.String(): {Value: v.fieldValue()}}}
}
