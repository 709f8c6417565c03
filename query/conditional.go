package query

import (
	"time"

	"github.com/robert-malhotra/go-esquery/pkg/condition"
)

// The If variants add their condition only when ok is true. The IfNotEmpty
// variants add it only when the value is not empty (see IsEmpty). Skipped
// calls never inspect their arguments and never record errors.

// TermIf is Term guarded by ok.
func (q *Query) TermIf(ok bool, name string, value any) *Query {
	if !ok {
		return q
	}
	return q.Term(name, value)
}

// TermIfNotEmpty is Term skipped for empty values.
func (q *Query) TermIfNotEmpty(name string, value any) *Query {
	return q.TermIf(!IsEmpty(value), name, value)
}

// WhereIf is Where guarded by ok.
func (q *Query) WhereIf(ok bool, c condition.Condition) *Query {
	if !ok {
		return q
	}
	return q.Where(c)
}

// TermsIf is Terms guarded by ok.
func (q *Query) TermsIf(ok bool, name string, values any) *Query {
	if !ok {
		return q
	}
	return q.Terms(name, values)
}

// TermsIfNotEmpty is Terms skipped for nil or empty lists.
func (q *Query) TermsIfNotEmpty(name string, values any) *Query {
	return q.TermsIf(!IsEmpty(values), name, values)
}

// NotTermsIf is NotTerms guarded by ok.
func (q *Query) NotTermsIf(ok bool, name string, values any) *Query {
	if !ok {
		return q
	}
	return q.NotTerms(name, values)
}

// NotTermsIfNotEmpty is NotTerms skipped for nil or empty lists.
func (q *Query) NotTermsIfNotEmpty(name string, values any) *Query {
	return q.NotTermsIf(!IsEmpty(values), name, values)
}

// MatchIf is Match guarded by ok.
func (q *Query) MatchIf(ok bool, name, text string) *Query {
	if !ok {
		return q
	}
	return q.Match(name, text)
}

// MatchIfNotEmpty is Match skipped for blank text.
func (q *Query) MatchIfNotEmpty(name, text string) *Query {
	return q.MatchIf(!IsEmpty(text), name, text)
}

// MatchPhraseIf is MatchPhrase guarded by ok.
func (q *Query) MatchPhraseIf(ok bool, name, text string, slop int) *Query {
	if !ok {
		return q
	}
	return q.MatchPhrase(name, text, slop)
}

// MatchPhraseIfNotEmpty is MatchPhrase skipped for blank text.
func (q *Query) MatchPhraseIfNotEmpty(name, text string, slop int) *Query {
	return q.MatchPhraseIf(!IsEmpty(text), name, text, slop)
}

// MultiMatchIf is MultiMatch guarded by ok.
func (q *Query) MultiMatchIf(ok bool, text string, names ...string) *Query {
	if !ok {
		return q
	}
	return q.MultiMatch(text, names...)
}

// MultiMatchIfNotEmpty is MultiMatch skipped for blank text.
func (q *Query) MultiMatchIfNotEmpty(text string, names ...string) *Query {
	return q.MultiMatchIf(!IsEmpty(text), text, names...)
}

// BetweenIf is Between guarded by ok.
func (q *Query) BetweenIf(ok bool, name string, min, max any) *Query {
	if !ok {
		return q
	}
	return q.Between(name, min, max)
}

// BetweenIfNotEmpty is Between skipped when both bounds are empty.
// An empty single bound is left open.
func (q *Query) BetweenIfNotEmpty(name string, min, max any) *Query {
	minEmpty, maxEmpty := IsEmpty(min), IsEmpty(max)
	if minEmpty && maxEmpty {
		return q
	}
	if minEmpty {
		min = nil
	}
	if maxEmpty {
		max = nil
	}
	return q.Between(name, min, max)
}

// RangeIf is Range guarded by ok.
func (q *Query) RangeIf(ok bool, name string, min, max any, boundary condition.Boundary) *Query {
	if !ok {
		return q
	}
	return q.Range(name, min, max, boundary)
}

// DaysIf is Days guarded by ok.
func (q *Query) DaysIf(ok bool, name string, min, max *time.Time) *Query {
	if !ok {
		return q
	}
	return q.Days(name, min, max)
}

// NestIf is Nest guarded by ok.
func (q *Query) NestIf(ok bool, path string, fn func(*Query)) *Query {
	if !ok {
		return q
	}
	return q.Nest(path, fn)
}

// EqualIf is Equal guarded by ok.
func (q *Query) EqualIf(ok bool, name string, value any) *Query {
	if !ok {
		return q
	}
	return q.Equal(name, value)
}

// EqualIfNotEmpty is Equal skipped for empty values.
func (q *Query) EqualIfNotEmpty(name string, value any) *Query {
	return q.EqualIf(!IsEmpty(value), name, value)
}

// NotEqualIf is NotEqual guarded by ok.
func (q *Query) NotEqualIf(ok bool, name string, value any) *Query {
	if !ok {
		return q
	}
	return q.NotEqual(name, value)
}

// CompareIf is Compare guarded by ok.
func (q *Query) CompareIf(ok bool, name string, op condition.Operator, value any) *Query {
	if !ok {
		return q
	}
	return q.Compare(name, op, value)
}

// CompareIfNotEmpty is Compare skipped for empty values.
func (q *Query) CompareIfNotEmpty(name string, op condition.Operator, value any) *Query {
	return q.CompareIf(!IsEmpty(value), name, op, value)
}

// StartsIf is Starts guarded by ok.
func (q *Query) StartsIf(ok bool, name, prefix string) *Query {
	if !ok {
		return q
	}
	return q.Starts(name, prefix)
}

// StartsIfNotEmpty is Starts skipped for blank prefixes.
func (q *Query) StartsIfNotEmpty(name, prefix string) *Query {
	return q.StartsIf(!IsEmpty(prefix), name, prefix)
}

// EndsIf is Ends guarded by ok.
func (q *Query) EndsIf(ok bool, name, suffix string) *Query {
	if !ok {
		return q
	}
	return q.Ends(name, suffix)
}

// EndsIfNotEmpty is Ends skipped for blank suffixes.
func (q *Query) EndsIfNotEmpty(name, suffix string) *Query {
	return q.EndsIf(!IsEmpty(suffix), name, suffix)
}

// ContainsIf is Contains guarded by ok.
func (q *Query) ContainsIf(ok bool, name, part string) *Query {
	if !ok {
		return q
	}
	return q.Contains(name, part)
}

// ContainsIfNotEmpty is Contains skipped for blank parts.
func (q *Query) ContainsIfNotEmpty(name, part string) *Query {
	return q.ContainsIf(!IsEmpty(part), name, part)
}

// LikeIf is Like guarded by ok.
func (q *Query) LikeIf(ok bool, name, pattern string) *Query {
	if !ok {
		return q
	}
	return q.Like(name, pattern)
}

// LikeIfNotEmpty is Like skipped for blank patterns.
func (q *Query) LikeIfNotEmpty(name, pattern string) *Query {
	return q.LikeIf(!IsEmpty(pattern), name, pattern)
}

// ExistsIf is Exists guarded by ok.
func (q *Query) ExistsIf(ok bool, name string) *Query {
	if !ok {
		return q
	}
	return q.Exists(name)
}

// MissingIf is Missing guarded by ok.
func (q *Query) MissingIf(ok bool, name string) *Query {
	if !ok {
		return q
	}
	return q.Missing(name)
}

// OrIf is Or guarded by ok.
func (q *Query) OrIf(ok bool, fn func(*Query)) *Query {
	if !ok {
		return q
	}
	return q.Or(fn)
}

// NotIf is Not guarded by ok.
func (q *Query) NotIf(ok bool, fn func(*Query)) *Query {
	if !ok {
		return q
	}
	return q.Not(fn)
}
