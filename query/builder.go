// Package query is a fluent collector of search conditions. Every method adds
// one condition to an internal conjunction and returns the Query for chaining.
package query

import (
	"reflect"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/robert-malhotra/go-esquery/pkg/condition"
	"github.com/robert-malhotra/go-esquery/pkg/field"
)

// Query accumulates conditions combined with AND.
// It is not safe for concurrent use.
type Query struct {
	prefix field.Ref
	cond   condition.Condition
	errs   *multierror.Error
}

// New returns an empty Query. An empty Query matches every document.
func New() *Query {
	return &Query{cond: condition.Null}
}

func (q *Query) ref(name string) field.Ref {
	return q.prefix.Dot(field.Name(name))
}

func (q *Query) add(c condition.Condition, err error) *Query {
	if err != nil {
		q.errs = multierror.Append(q.errs, err)
		return q
	}
	q.cond = condition.And(q.cond, c)
	return q
}

func (q *Query) sub() *Query {
	return &Query{prefix: q.prefix, cond: condition.Null}
}

func (q *Query) merge(child *Query) error {
	if child.errs != nil {
		q.errs = multierror.Append(q.errs, child.errs.Errors...)
		return child.errs
	}
	return nil
}

// Condition returns the accumulated condition.
func (q *Query) Condition() condition.Condition {
	if q == nil || q.cond == nil {
		return condition.Null
	}
	return q.cond
}

// Err returns every error recorded while building.
func (q *Query) Err() error {
	return q.errs.ErrorOrNil()
}

// Where adds a prebuilt condition.
func (q *Query) Where(c condition.Condition) *Query {
	return q.add(c, nil)
}

// Term requires an exact indexed value.
func (q *Query) Term(name string, value any) *Query {
	return q.add(condition.Term(q.ref(name), value), nil)
}

// Terms requires one of values. Nil values add nothing.
func (q *Query) Terms(name string, values any) *Query {
	return q.add(condition.In(q.ref(name), values), nil)
}

// NotTerms excludes documents matching any of values.
func (q *Query) NotTerms(name string, values any) *Query {
	return q.add(condition.NotIn(q.ref(name), values), nil)
}

// Match runs full-text matching.
func (q *Query) Match(name, text string) *Query {
	return q.add(condition.Match(q.ref(name), text), nil)
}

// MatchPhrase matches text as a phrase.
func (q *Query) MatchPhrase(name, text string, slop int) *Query {
	return q.add(condition.MatchPhrase(q.ref(name), text, slop), nil)
}

// MultiMatch runs text against several fields.
func (q *Query) MultiMatch(text string, names ...string) *Query {
	refs := make([]field.Ref, 0, len(names))
	for _, n := range names {
		refs = append(refs, q.ref(n))
	}
	return q.add(condition.MultiMatch(refs, text), nil)
}

// Between requires min <= value <= max. Either bound may be nil.
func (q *Query) Between(name string, min, max any) *Query {
	return q.add(condition.Between(q.ref(name), min, max))
}

// Range is Between with an explicit boundary policy.
func (q *Query) Range(name string, min, max any, boundary condition.Boundary) *Query {
	return q.add(condition.Range(q.ref(name), min, max, boundary))
}

// Days matches whole calendar days from min through max.
func (q *Query) Days(name string, min, max *time.Time) *Query {
	return q.add(condition.DateOnlyRange(q.ref(name), min, max), nil)
}

// Equal matches a value, using phrase matching for text.
func (q *Query) Equal(name string, value any) *Query {
	return q.add(condition.Equal(q.ref(name), value), nil)
}

// NotEqual excludes a value.
func (q *Query) NotEqual(name string, value any) *Query {
	return q.add(condition.NotEqual(q.ref(name), value), nil)
}

// Compare adds a one-sided comparison.
func (q *Query) Compare(name string, op condition.Operator, value any) *Query {
	return q.add(condition.Compare(q.ref(name), value, op))
}

// Greater requires value > v.
func (q *Query) Greater(name string, v any) *Query {
	return q.Compare(name, condition.OpGreater, v)
}

// GreaterOrEqual requires value >= v.
func (q *Query) GreaterOrEqual(name string, v any) *Query {
	return q.Compare(name, condition.OpGreaterOrEqual, v)
}

// Less requires value < v.
func (q *Query) Less(name string, v any) *Query {
	return q.Compare(name, condition.OpLess, v)
}

// LessOrEqual requires value <= v.
func (q *Query) LessOrEqual(name string, v any) *Query {
	return q.Compare(name, condition.OpLessOrEqual, v)
}

// Starts matches a prefix.
func (q *Query) Starts(name, prefix string) *Query {
	return q.add(condition.Starts(q.ref(name), prefix), nil)
}

// Ends matches a suffix.
func (q *Query) Ends(name, suffix string) *Query {
	return q.add(condition.Ends(q.ref(name), suffix), nil)
}

// Contains matches a substring.
func (q *Query) Contains(name, part string) *Query {
	return q.add(condition.Contains(q.ref(name), part), nil)
}

// Like matches a SQL-style pattern where % is any run and _ is one character.
func (q *Query) Like(name, pattern string) *Query {
	return q.add(condition.Wildcard(q.ref(name), LikeToWildcard(pattern)), nil)
}

// Exists requires a value.
func (q *Query) Exists(name string) *Query {
	return q.add(condition.Exists(q.ref(name)), nil)
}

// Missing requires the absence of a value.
func (q *Query) Missing(name string) *Query {
	return q.add(condition.Missing(q.ref(name)), nil)
}

// Nest scopes the conditions built by fn to the nested documents at path.
// Field names inside fn are relative to path.
func (q *Query) Nest(path string, fn func(*Query)) *Query {
	if fn == nil {
		return q
	}
	child := q.sub()
	child.prefix = q.ref(path)
	fn(child)
	if err := q.merge(child); err != nil {
		return q
	}
	return q.add(condition.Nested(q.ref(path), child.Condition()), nil)
}

// AnyOf adds the disjunction of the queries built by fns.
func (q *Query) AnyOf(fns ...func(*Query)) *Query {
	conds := make([]condition.Condition, 0, len(fns))
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		child := q.sub()
		fn(child)
		if err := q.merge(child); err != nil {
			return q
		}
		conds = append(conds, child.Condition())
	}
	return q.add(condition.Any(conds...), nil)
}

// Or disjoins the query built by fn with everything added so far.
func (q *Query) Or(fn func(*Query)) *Query {
	if fn == nil {
		return q
	}
	child := q.sub()
	fn(child)
	if err := q.merge(child); err != nil {
		return q
	}
	q.cond = condition.Or(q.cond, child.Condition())
	return q
}

// Not adds the negation of the query built by fn.
func (q *Query) Not(fn func(*Query)) *Query {
	if fn == nil {
		return q
	}
	child := q.sub()
	fn(child)
	if err := q.merge(child); err != nil {
		return q
	}
	return q.add(condition.Not(child.Condition()), nil)
}

var likeReplacer = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"?", `\?`,
	"%", "*",
	"_", "?",
)

// LikeToWildcard translates % and _ into * and ?. Literal *, ? and \ are escaped.
func LikeToWildcard(pattern string) string {
	return likeReplacer.Replace(pattern)
}

// IsEmpty reports whether v is nil, a nil pointer, an empty string, slice,
// array or map, or the zero time.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case time.Time:
		return x.IsZero()
	case condition.Value:
		return x.IsNull()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	case reflect.Slice, reflect.Map:
		return rv.IsNil() || rv.Len() == 0
	case reflect.Array, reflect.String:
		return rv.Len() == 0
	}
	return false
}
