package builder

import (
	"reflect"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-esquery/pkg/condition"
	"github.com/robert-malhotra/go-esquery/pkg/field"
)

// Paging defaults applied by End.
const (
	DefaultSkip = 0
	DefaultTake = 10
)

// State is shared by every clause of one builder.
type State struct {
	Index    string
	DocType  reflect.Type
	Resolver IndexResolver
}

// Clause contributes one fragment of a search request. PreInit runs for every
// clause before any AppendTo.
type Clause interface {
	PreInit(s *State) error
	AppendTo(req *Request)
}

// SelectClause projects _source fields.
type SelectClause struct {
	includes []field.Ref
	excludes []field.Ref
}

// Include adds fields to the projection.
func (c *SelectClause) Include(refs ...field.Ref) *SelectClause {
	c.includes = append(c.includes, refs...)
	return c
}

// Exclude removes fields from the projection.
func (c *SelectClause) Exclude(refs ...field.Ref) *SelectClause {
	c.excludes = append(c.excludes, refs...)
	return c
}

func (c *SelectClause) PreInit(*State) error { return nil }

// AppendTo sets the _source filter. No includes means all fields.
func (c *SelectClause) AppendTo(req *Request) {
	includes := field.Strings(c.includes)
	if len(includes) == 0 {
		includes = []string{"*"}
	}
	req.Body.Source_ = types.SourceFilter{
		Includes: includes,
		Excludes: field.Strings(c.excludes),
	}
}

// FromClause picks the target index from a literal name or the document type.
type FromClause struct {
	name     string
	fromType bool
	resolver IndexResolver
}

// Index sets a literal index name.
func (c *FromClause) Index(name string) *FromClause {
	c.name = name
	c.fromType = false
	return c
}

// Type derives the index from the document type by naming convention.
func (c *FromClause) Type() *FromClause {
	c.name = ""
	c.fromType = true
	return c
}

// Resolver overrides the builder resolver for this clause.
func (c *FromClause) Resolver(r IndexResolver) *FromClause {
	c.resolver = r
	return c
}

// PreInit resolves the index and stores it on the shared state.
func (c *FromClause) PreInit(s *State) error {
	name := c.name
	if c.fromType || name == "" {
		name = Convention(s.DocType)
	}
	if name == "" {
		return ErrIndexRequired
	}
	resolver := c.resolver
	if resolver == nil {
		resolver = s.Resolver
	}
	if resolver != nil {
		resolved, err := resolver.Resolve(name)
		if err != nil {
			return errors.Wrapf(err, "resolve index %q", name)
		}
		name = resolved
	}
	if name == "" {
		return errors.Wrapf(ErrIndexRequired, "resolver returned an empty name for %q", c.name)
	}
	if err := ValidateSearchTarget(name); err != nil {
		return err
	}
	s.Index = name
	return nil
}

// AppendTo is a no-op: the index travels on the Request itself.
func (c *FromClause) AppendTo(*Request) {}

// WhereClause owns the composed condition tree.
type WhereClause struct {
	cond condition.Condition
}

// Condition returns the composed tree.
func (c *WhereClause) Condition() condition.Condition {
	if c.cond == nil {
		return condition.Null
	}
	return c.cond
}

// And conjoins cond with the current tree.
func (c *WhereClause) And(cond condition.Condition) *WhereClause {
	c.cond = condition.And(c.Condition(), cond)
	return c
}

// Or disjoins cond with the current tree.
func (c *WhereClause) Or(cond condition.Condition) *WhereClause {
	c.cond = condition.Or(c.Condition(), cond)
	return c
}

// Where builds a condition with the operator factory and conjoins it.
func (c *WhereClause) Where(ref field.Ref, value any, op condition.Operator) error {
	cond, err := condition.Create(ref, value, op)
	if err != nil {
		return errors.Wrapf(err, "where %s %s", ref, op)
	}
	c.And(cond)
	return nil
}

func (c *WhereClause) PreInit(*State) error { return nil }

// AppendTo sets the query. A tree without constraints leaves it unset.
func (c *WhereClause) AppendTo(req *Request) {
	req.Body.Query = c.Condition().Query()
}

// Direction is a sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts asc and desc, defaulting to ascending.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "asc", "ASC", "+":
		return Ascending, nil
	case "desc", "DESC", "-":
		return Descending, nil
	}
	return "", errors.Errorf("builder: invalid sort direction %q", s)
}

func (d Direction) order() sortorder.SortOrder {
	if d == Descending {
		return sortorder.Desc
	}
	return sortorder.Asc
}

// SortEntry is one sort key.
type SortEntry struct {
	Field     field.Ref
	Direction Direction
}

// OrderByClause accumulates sort keys in order.
type OrderByClause struct {
	entries []SortEntry
}

// Add appends a sort key. keyword targets the exact-match sub-field, which
// analyzed text fields need to be sortable.
func (c *OrderByClause) Add(ref field.Ref, dir Direction, keyword bool) *OrderByClause {
	if ref.IsZero() {
		return c
	}
	if keyword {
		ref = ref.Keyword()
	}
	c.entries = append(c.entries, SortEntry{Field: ref, Direction: dir})
	return c
}

// Entries returns a copy of the sort keys.
func (c *OrderByClause) Entries() []SortEntry {
	return append([]SortEntry(nil), c.entries...)
}

func (c *OrderByClause) PreInit(*State) error { return nil }

// AppendTo appends one sort option per entry.
func (c *OrderByClause) AppendTo(req *Request) {
	for _, e := range c.entries {
		order := e.Direction.order()
		req.Body.Sort = append(req.Body.Sort, types.SortOptions{
			SortOptions: map[string]types.FieldSort{e.Field.String(): {Order: &order}},
		})
	}
}

// EndClause holds paging.
type EndClause struct {
	skip *int
	take *int
}

// Skip sets the number of hits to skip. Negative values mean unset.
func (c *EndClause) Skip(n int) *EndClause {
	c.skip = &n
	return c
}

// Take sets the page size. Non-positive values mean unset.
func (c *EndClause) Take(n int) *EndClause {
	c.take = &n
	return c
}

// Values returns the effective skip and take.
func (c *EndClause) Values() (skip, take int) {
	skip, take = DefaultSkip, DefaultTake
	if c.skip != nil && *c.skip >= 0 {
		skip = *c.skip
	}
	if c.take != nil && *c.take > 0 {
		take = *c.take
	}
	return skip, take
}

func (c *EndClause) PreInit(*State) error { return nil }

// AppendTo writes from and size.
func (c *EndClause) AppendTo(req *Request) {
	skip, take := c.Values()
	req.Body.From = &skip
	req.Body.Size = &take
}

// CollapseClause deduplicates hits by a field value.
type CollapseClause struct {
	Field field.Ref
}

func (c *CollapseClause) PreInit(*State) error { return nil }

// AppendTo sets the collapse field.
func (c *CollapseClause) AppendTo(req *Request) {
	if c.Field.IsZero() {
		return
	}
	req.Body.Collapse = &types.FieldCollapse{Field: c.Field.String()}
}
