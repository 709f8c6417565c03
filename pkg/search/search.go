// Package search is the typed façade over the clause pipeline. A Search[T]
// collects a query, projection, sort and paging, funnels them into a
// builder.Builder[T] and decodes the executor's hits into T.
package search

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-esquery/pkg/builder"
	"github.com/robert-malhotra/go-esquery/pkg/field"
	"github.com/robert-malhotra/go-esquery/query"
)

// ErrNoExecutor is returned by Result when the Search has no executor.
var ErrNoExecutor = errors.New("search: executor is required")

// Response is what an Executor returns. Hits holds the _source of every
// returned document in order.
type Response struct {
	Hits  []json.RawMessage
	Total int64
	Took  time.Duration
}

// Executor runs an assembled request against a backend.
type Executor interface {
	Execute(ctx context.Context, req *builder.Request) (*Response, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req *builder.Request) (*Response, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, req *builder.Request) (*Response, error) {
	return f(ctx, req)
}

// Result is a decoded page of documents.
type Result[T any] struct {
	Documents []T
	Total     int64
	Took      time.Duration
}

// Option configures a Search.
type Option func(*settings)

type settings struct {
	resolver    builder.IndexResolver
	defaultTake int
}

// WithResolver canonicalizes index names through r.
func WithResolver(r builder.IndexResolver) Option {
	return func(s *settings) {
		s.resolver = r
	}
}

// WithDefaultTake sets the page size used when Take is never called.
func WithDefaultTake(n int) Option {
	return func(s *settings) {
		s.defaultTake = n
	}
}

type sortKey struct {
	name    string
	dir     builder.Direction
	keyword bool
}

// Search is a fluent search over documents of type T.
// It is not safe for concurrent use.
type Search[T any] struct {
	exec     Executor
	settings settings

	index    string
	q        *query.Query
	skip     *int
	take     *int
	sorts    []sortKey
	selected bool
	includes []string
	excludes []string
	collapse string

	errs *multierror.Error
}

// New returns a Search that executes through exec.
func New[T any](exec Executor, opts ...Option) *Search[T] {
	s := &Search[T]{exec: exec}
	for _, opt := range opts {
		if opt != nil {
			opt(&s.settings)
		}
	}
	return s
}

// Index targets a literal index. Without it the index is named after T.
func (s *Search[T]) Index(name string) *Search[T] {
	s.index = name
	return s
}

// Resolver sets the index resolver.
func (s *Search[T]) Resolver(r builder.IndexResolver) *Search[T] {
	s.settings.resolver = r
	return s
}

// Query adds the conditions built by fn. Repeated calls are conjoined.
func (s *Search[T]) Query(fn func(*query.Query)) *Search[T] {
	if fn == nil {
		return s
	}
	if s.q == nil {
		s.q = query.New()
	}
	fn(s.q)
	return s
}

// Page selects a 1-based page of size hits.
func (s *Search[T]) Page(page, size int) *Search[T] {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		s.errs = multierror.Append(s.errs, errors.Errorf("search: invalid page size %d", size))
		return s
	}
	return s.Skip((page - 1) * size).Take(size)
}

// Skip sets the number of hits to skip.
func (s *Search[T]) Skip(n int) *Search[T] {
	s.skip = &n
	return s
}

// Take sets the page size.
func (s *Search[T]) Take(n int) *Search[T] {
	s.take = &n
	return s
}

// Sort orders by a field.
func (s *Search[T]) Sort(name string, dir builder.Direction) *Search[T] {
	s.sorts = append(s.sorts, sortKey{name: name, dir: dir})
	return s
}

// SortKeyword orders by the keyword sub-field of an analyzed text field.
func (s *Search[T]) SortKeyword(name string, dir builder.Direction) *Search[T] {
	s.sorts = append(s.sorts, sortKey{name: name, dir: dir, keyword: true})
	return s
}

// Include limits _source to the named fields.
func (s *Search[T]) Include(names ...string) *Search[T] {
	s.selected = true
	s.includes = append(s.includes, names...)
	return s
}

// Exclude drops the named fields from _source.
func (s *Search[T]) Exclude(names ...string) *Search[T] {
	s.selected = true
	s.excludes = append(s.excludes, names...)
	return s
}

// Collapse keeps one hit per distinct value of name.
func (s *Search[T]) Collapse(name string) *Search[T] {
	s.collapse = name
	return s
}

// Err returns the errors recorded so far.
func (s *Search[T]) Err() error {
	var errs *multierror.Error
	if s.errs != nil {
		errs = multierror.Append(errs, s.errs.Errors...)
	}
	if s.q != nil {
		if err := s.q.Err(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// Builder returns a fresh builder carrying every setting of s.
func (s *Search[T]) Builder() *builder.Builder[T] {
	b := builder.New[T](builder.WithResolver(s.settings.resolver))
	if s.index != "" {
		b.From(s.index)
	} else {
		b.FromType()
	}
	if s.q != nil {
		b.And(s.q.Condition())
	}
	if s.selected {
		b.Select(s.includes...).Exclude(s.excludes...)
	}
	for _, k := range s.sorts {
		ref := field.Name(k.name)
		if k.keyword {
			ref = ref.Keyword()
		}
		if k.dir == builder.Descending {
			b.OrderByDescending(ref.String())
		} else {
			b.OrderBy(ref.String())
		}
	}
	if s.skip != nil {
		b.Skip(*s.skip)
	}
	switch {
	case s.take != nil:
		b.Take(*s.take)
	case s.settings.defaultTake > 0:
		b.Take(s.settings.defaultTake)
	}
	if s.collapse != "" {
		b.Use(&builder.CollapseClause{Field: field.Name(s.collapse)})
	}
	return b
}

// Request assembles the search request.
func (s *Search[T]) Request() (*builder.Request, error) {
	if err := s.Err(); err != nil {
		return nil, err
	}
	return s.Builder().Request()
}

// Result executes the search and decodes every hit into T. Executor errors
// are returned as is.
func (s *Search[T]) Result(ctx context.Context) (*Result[T], error) {
	req, err := s.Request()
	if err != nil {
		return nil, err
	}
	if s.exec == nil {
		return nil, ErrNoExecutor
	}
	resp, err := s.exec.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &Result[T]{Documents: []T{}}, nil
	}
	docs := make([]T, 0, len(resp.Hits))
	for i, hit := range resp.Hits {
		var doc T
		if err := json.Unmarshal(hit, &doc); err != nil {
			return nil, errors.Wrapf(err, "search: decode hit %d", i)
		}
		docs = append(docs, doc)
	}
	return &Result[T]{Documents: docs, Total: resp.Total, Took: resp.Took}, nil
}
