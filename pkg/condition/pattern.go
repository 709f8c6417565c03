package condition

import (
	"strings"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/robert-malhotra/go-esquery/pkg/field"
)

const wildcardMarker = "*"

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`)

// EscapeWildcard quotes the wildcard metacharacters *, ? and \ so s matches literally.
func EscapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

type wildcardCondition struct {
	field   field.Ref
	pattern string
}

// Wildcard matches field against a pattern using * and ? markers.
// An empty pattern imposes no constraint.
func Wildcard(f field.Ref, pattern string) Condition {
	return wildcardCondition{field: f, pattern: pattern}
}

// Starts matches values beginning with prefix. The prefix is matched literally.
func Starts(f field.Ref, prefix string) Condition {
	return decorate(f, prefix, "", wildcardMarker)
}

// Ends matches values ending with suffix.
func Ends(f field.Ref, suffix string) Condition {
	return decorate(f, suffix, wildcardMarker, "")
}

// Contains matches values containing part anywhere.
func Contains(f field.Ref, part string) Condition {
	return decorate(f, part, wildcardMarker, wildcardMarker)
}

func decorate(f field.Ref, value, before, after string) Condition {
	if value == "" {
		return Null
	}
	return Wildcard(f, before+EscapeWildcard(value)+after)
}

func (c wildcardCondition) Query() *types.Query {
	if c.pattern == "" {
		return nil
	}
	pattern := c.pattern
	return &types.Query{Wildcard: map[string]types.WildcardQuery{c.field.String(): {Value: &pattern}}}
}
