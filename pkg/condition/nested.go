package condition

import (
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/robert-malhotra/go-esquery/pkg/field"
)

type nestedCondition struct {
	path  field.Ref
	inner *types.Query
}

// Nested scopes inner to the nested document collection at path. Inner field
// references should carry the full path, for example path.Dot(field.Name("text")).
func Nested(path field.Ref, inner Condition) Condition {
	return nestedCondition{path: path, inner: queryOf(inner)}
}

func (c nestedCondition) Query() *types.Query {
	if c.inner == nil {
		return nil
	}
	return &types.Query{Nested: &types.NestedQuery{Path: c.path.String(), Query: *c.inner}}
}
