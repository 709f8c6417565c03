// Package builder assembles Elasticsearch search requests from clauses.
//
// A Builder lazily creates its Select, From, Where, OrderBy and End clauses.
// Request runs PreInit on every clause and then AppendTo, always in that
// order, so the resolved index is known before the request is built.
package builder

import (
	"reflect"

	"github.com/hashicorp/go-multierror"

	"github.com/robert-malhotra/go-esquery/pkg/condition"
	"github.com/robert-malhotra/go-esquery/pkg/field"
)

// Option configures a Builder.
type Option func(*State)

// WithResolver canonicalizes every index name through r.
func WithResolver(r IndexResolver) Option {
	return func(s *State) {
		s.Resolver = r
	}
}

// Builder accumulates a search over documents of type T.
// It is not safe for concurrent use.
type Builder[T any] struct {
	state State

	sel   *SelectClause
	from  *FromClause
	where *WhereClause
	order *OrderByClause
	end   *EndClause
	extra []Clause

	errs *multierror.Error
}

// New returns an empty Builder for documents of type T.
func New[T any](opts ...Option) *Builder[T] {
	b := &Builder[T]{state: State{DocType: reflect.TypeOf((*T)(nil)).Elem()}}
	for _, opt := range opts {
		if opt != nil {
			opt(&b.state)
		}
	}
	return b
}

func (b *Builder[T]) selectClause() *SelectClause {
	if b.sel == nil {
		b.sel = &SelectClause{}
	}
	return b.sel
}

func (b *Builder[T]) fromClause() *FromClause {
	if b.from == nil {
		b.from = &FromClause{}
	}
	return b.from
}

func (b *Builder[T]) whereClause() *WhereClause {
	if b.where == nil {
		b.where = &WhereClause{}
	}
	return b.where
}

func (b *Builder[T]) orderClause() *OrderByClause {
	if b.order == nil {
		b.order = &OrderByClause{}
	}
	return b.order
}

func (b *Builder[T]) endClause() *EndClause {
	if b.end == nil {
		b.end = &EndClause{}
	}
	return b.end
}

func (b *Builder[T]) fail(err error) *Builder[T] {
	if err != nil {
		b.errs = multierror.Append(b.errs, err)
	}
	return b
}

func (b *Builder[T]) resolve(accessor func(*T) any) (field.Ref, bool) {
	ref, err := field.Of(accessor)
	if err != nil {
		b.fail(err)
		return field.Ref{}, false
	}
	return ref, true
}

// Select includes the named fields in the returned _source.
func (b *Builder[T]) Select(fields ...string) *Builder[T] {
	b.selectClause().Include(field.Names(fields...)...)
	return b
}

// SelectField includes fields addressed by typed accessors.
func (b *Builder[T]) SelectField(accessors ...func(*T) any) *Builder[T] {
	for _, acc := range accessors {
		if ref, ok := b.resolve(acc); ok {
			b.selectClause().Include(ref)
		}
	}
	return b
}

// Exclude drops the named fields from the returned _source.
func (b *Builder[T]) Exclude(fields ...string) *Builder[T] {
	b.selectClause().Exclude(field.Names(fields...)...)
	return b
}

// ExcludeField drops fields addressed by typed accessors.
func (b *Builder[T]) ExcludeField(accessors ...func(*T) any) *Builder[T] {
	for _, acc := range accessors {
		if ref, ok := b.resolve(acc); ok {
			b.selectClause().Exclude(ref)
		}
	}
	return b
}

// From targets a literal index name.
func (b *Builder[T]) From(index string) *Builder[T] {
	b.fromClause().Index(index)
	return b
}

// FromType targets the index named after T.
func (b *Builder[T]) FromType() *Builder[T] {
	b.fromClause().Type()
	return b
}

// Resolver sets the index resolver used by From.
func (b *Builder[T]) Resolver(r IndexResolver) *Builder[T] {
	b.fromClause().Resolver(r)
	return b
}

// Where adds a typed condition built by the operator factory.
func (b *Builder[T]) Where(accessor func(*T) any, value any, op condition.Operator) *Builder[T] {
	ref, ok := b.resolve(accessor)
	if !ok {
		return b
	}
	return b.fail(b.whereClause().Where(ref, value, op))
}

// WhereField adds a condition on a raw field name.
func (b *Builder[T]) WhereField(name string, value any, op condition.Operator) *Builder[T] {
	ref, err := field.Parse(name)
	if err != nil {
		return b.fail(err)
	}
	return b.fail(b.whereClause().Where(ref, value, op))
}

// And conjoins a prebuilt condition.
func (b *Builder[T]) And(c condition.Condition) *Builder[T] {
	b.whereClause().And(c)
	return b
}

// Or disjoins a prebuilt condition with everything added so far.
func (b *Builder[T]) Or(c condition.Condition) *Builder[T] {
	b.whereClause().Or(c)
	return b
}

// OrderBy sorts ascending on a column.
func (b *Builder[T]) OrderBy(column string) *Builder[T] {
	b.orderClause().Add(field.Name(column), Ascending, false)
	return b
}

// OrderByDescending sorts descending on a column.
func (b *Builder[T]) OrderByDescending(column string) *Builder[T] {
	b.orderClause().Add(field.Name(column), Descending, false)
	return b
}

// OrderByField sorts on a typed accessor. Set keyword for analyzed text fields.
func (b *Builder[T]) OrderByField(accessor func(*T) any, dir Direction, keyword bool) *Builder[T] {
	if ref, ok := b.resolve(accessor); ok {
		b.orderClause().Add(ref, dir, keyword)
	}
	return b
}

// Skip sets the number of hits to skip.
func (b *Builder[T]) Skip(n int) *Builder[T] {
	b.endClause().Skip(n)
	return b
}

// Take sets the page size.
func (b *Builder[T]) Take(n int) *Builder[T] {
	b.endClause().Take(n)
	return b
}

// Use registers an extra clause that runs after End.
func (b *Builder[T]) Use(c Clause) *Builder[T] {
	if c != nil {
		b.extra = append(b.extra, c)
	}
	return b
}

// Condition returns the composed where tree.
func (b *Builder[T]) Condition() condition.Condition {
	if b.where == nil {
		return condition.Null
	}
	return b.where.Condition()
}

// Index returns the index resolved by the last Request call.
func (b *Builder[T]) Index() string {
	return b.state.Index
}

// Err returns the errors accumulated by fluent calls.
func (b *Builder[T]) Err() error {
	return b.errs.ErrorOrNil()
}

func (b *Builder[T]) clauses() []Clause {
	out := make([]Clause, 0, 5+len(b.extra))
	if b.sel != nil {
		out = append(out, b.sel)
	}
	out = append(out, b.fromClause())
	if b.where != nil {
		out = append(out, b.where)
	}
	if b.order != nil {
		out = append(out, b.order)
	}
	out = append(out, b.endClause())
	return append(out, b.extra...)
}

// Request assembles the search request.
func (b *Builder[T]) Request() (*Request, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	clauses := b.clauses()
	for _, c := range clauses {
		if err := c.PreInit(&b.state); err != nil {
			return nil, err
		}
	}
	req := newRequest(b.state.Index)
	for _, c := range clauses {
		c.AppendTo(req)
	}
	return req, nil
}
