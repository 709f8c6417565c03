package condition

import (
	"strings"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/operator"

	"github.com/robert-malhotra/go-esquery/pkg/field"
)

type matchCondition struct {
	field    field.Ref
	text     string
	matchAll bool
}

// Match runs analyzed full-text matching of text against f.
func Match(f field.Ref, text string) Condition {
	return matchCondition{field: f, text: text}
}

// MatchAllTerms is Match requiring every analyzed term to be present.
func MatchAllTerms(f field.Ref, text string) Condition {
	return matchCondition{field: f, text: text, matchAll: true}
}

func (c matchCondition) Query() *types.Query {
	if strings.TrimSpace(c.text) == "" {
		return nil
	}
	mq := types.MatchQuery{Query: c.text}
	if c.matchAll {
		op := operator.And
		mq.Operator = &op
	}
	return &types.Query{Match: map[string]types.MatchQuery{c.field.String(): mq}}
}

type phraseCondition struct {
	field field.Ref
	text  string
	slop  int
}

// MatchPhrase matches text as a phrase allowing slop positions of reordering.
func MatchPhrase(f field.Ref, text string, slop int) Condition {
	if slop < 0 {
		slop = 0
	}
	return phraseCondition{field: f, text: text, slop: slop}
}

func (c phraseCondition) Query() *types.Query {
	if strings.TrimSpace(c.text) == "" {
		return nil
	}
	slop := c.slop
	return &types.Query{MatchPhrase: map[string]types.MatchPhraseQuery{
		c.field.String(): {Query: c.text, Slop: &slop},
	}}
}

type multiMatchCondition struct {
	fields []string
	text   string
}

// MultiMatch runs text against several fields at once.
func MultiMatch(fields []field.Ref, text string) Condition {
	return multiMatchCondition{fields: field.Strings(fields), text: text}
}

func (c multiMatchCondition) Query() *types.Query {
	if strings.TrimSpace(c.text) == "" || len(c.fields) == 0 {
		return nil
	}
	return &types.Query{MultiMatch: &types.MultiMatchQuery{Query: c.text, Fields: c.fields}}
}

type existsCondition struct {
	field field.Ref
}

// Exists matches documents with any indexed value for f.
func Exists(f field.Ref) Condition {
	return existsCondition{field: f}
}

func (c existsCondition) Query() *types.Query {
	if c.field.IsZero() {
		return nil
	}
	return &types.Query{Exists: &types.ExistsQuery{Field: c.field.String()}}
}

// Missing matches documents without a value for f.
func Missing(f field.Ref) Condition {
	return Not(Exists(f))
}
