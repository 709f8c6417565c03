// Package condition models search intent as composable conditions that compile
// to Elasticsearch query DSL nodes.
//
// Every condition either produces a node or nil. A nil node means the
// condition imposes no constraint, and combinators treat it as the identity
// element.
package condition

import (
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedType is returned when a value kind cannot be compared.
	ErrUnsupportedType = errors.New("condition: unsupported type for comparison")
	// ErrNotImplemented is returned for operators the factory does not build.
	ErrNotImplemented = errors.New("condition: operator not implemented")
	// ErrUnknownOperator is returned for operators outside the known set.
	ErrUnknownOperator = errors.New("condition: unknown operator")
	// ErrEmptyField is returned when a condition targets a blank field.
	ErrEmptyField = errors.New("condition: field cannot be empty")
)

// Condition produces a query node, or nil when it imposes no constraint.
type Condition interface {
	Query() *types.Query
}

type nullCondition struct{}

func (nullCondition) Query() *types.Query { return nil }

// Null matches everything. It is stateless and safe to share.
var Null Condition = nullCondition{}

type node struct {
	q *types.Query
}

func (n node) Query() *types.Query { return n.q }

// Raw wraps an already built query node. A nil node behaves like Null.
func Raw(q *types.Query) Condition {
	if q == nil {
		return Null
	}
	return node{q: q}
}

// IsNull reports whether c imposes no constraint.
func IsNull(c Condition) bool {
	return queryOf(c) == nil
}

func queryOf(c Condition) *types.Query {
	if c == nil {
		return nil
	}
	return c.Query()
}

func mustNot(q *types.Query) *types.Query {
	if q == nil {
		return nil
	}
	return &types.Query{Bool: &types.BoolQuery{MustNot: []types.Query{*q}}}
}
