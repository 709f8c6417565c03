package condition

import (
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/operator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-esquery/pkg/field"
)

func TestEqual(t *testing.T) {
	t.Run("text uses phrase with zero slop", func(t *testing.T) {
		q := Equal(field.Name("title"), "quick brown fox").Query()
		require.NotNil(t, q)
		require.Contains(t, q.MatchPhrase, "title")
		phrase := q.MatchPhrase["title"]
		assert.Equal(t, "quick brown fox", phrase.Query)
		require.NotNil(t, phrase.Slop)
		assert.Equal(t, 0, *phrase.Slop)
		assert.Nil(t, q.Term)
	})

	t.Run("number uses term", func(t *testing.T) {
		q := Equal(field.Name("age"), 42).Query()
		require.NotNil(t, q)
		assert.Equal(t, types.FieldValue(int64(42)), q.Term["age"].Value)
		assert.Nil(t, q.MatchPhrase)
	})

	t.Run("bool uses term", func(t *testing.T) {
		q := Equal(field.Name("active"), true).Query()
		assert.Equal(t, types.FieldValue(true), q.Term["active"].Value)
	})

	t.Run("time renders rfc3339", func(t *testing.T) {
		q := Equal(field.Name("at"), time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)).Query()
		assert.Equal(t, types.FieldValue("2024-05-01T10:00:00Z"), q.Term["at"].Value)
	})

	t.Run("keyword suffix", func(t *testing.T) {
		q := Term(field.Name("status").Keyword(), "active").Query()
		require.Contains(t, q.Term, "status.keyword")
		assert.Equal(t, types.FieldValue("active"), q.Term["status.keyword"].Value)
	})

	t.Run("nil value imposes nothing", func(t *testing.T) {
		assert.Nil(t, Equal(field.Name("x"), nil).Query())
		assert.Nil(t, NotEqual(field.Name("x"), nil).Query())
		assert.Nil(t, Term(field.Name("x"), nil).Query())
	})

	t.Run("not equal wraps must_not", func(t *testing.T) {
		q := NotEqual(field.Name("age"), 42).Query()
		require.NotNil(t, q.Bool)
		require.Len(t, q.Bool.MustNot, 1)
		assert.Equal(t, *Equal(field.Name("age"), 42).Query(), q.Bool.MustNot[0])
	})
}

func TestMembership(t *testing.T) {
	status := field.Name("status")

	t.Run("values drop nil entries", func(t *testing.T) {
		q := In(status, []any{"active", nil, "pending"}).Query()
		require.NotNil(t, q)
		require.NotNil(t, q.Terms)
		assert.Equal(t, []types.FieldValue{"active", "pending"}, q.Terms.TermsQuery["status"])
	})

	t.Run("typed slice", func(t *testing.T) {
		q := In(field.Name("id"), []int{1, 2, 3}).Query()
		assert.Equal(t, []types.FieldValue{int64(1), int64(2), int64(3)}, q.Terms.TermsQuery["id"])
	})

	t.Run("nil enumerable imposes nothing", func(t *testing.T) {
		var statuses []string
		assert.Nil(t, In(status, statuses).Query())
		assert.Nil(t, In(status, nil).Query())
		assert.True(t, IsNull(In(status, nil)))
		assert.Nil(t, NotIn(status, nil).Query())
	})

	t.Run("empty enumerable matches nothing", func(t *testing.T) {
		q := In(status, []string{}).Query()
		require.NotNil(t, q)
		require.NotNil(t, q.Terms)
		values, ok := q.Terms.TermsQuery["status"].([]types.FieldValue)
		require.True(t, ok)
		assert.NotNil(t, values)
		assert.Empty(t, values)
	})

	t.Run("scalar becomes single value", func(t *testing.T) {
		q := In(status, "active").Query()
		assert.Equal(t, []types.FieldValue{"active"}, q.Terms.TermsQuery["status"])
	})

	t.Run("not in negates", func(t *testing.T) {
		q := NotIn(status, []string{"deleted"}).Query()
		require.NotNil(t, q.Bool)
		require.Len(t, q.Bool.MustNot, 1)
		assert.Equal(t, []types.FieldValue{"deleted"}, q.Bool.MustNot[0].Terms.TermsQuery["status"])
	})
}

func TestPatterns(t *testing.T) {
	name := field.Name("name")
	tests := []struct {
		name string
		cond Condition
		want string
	}{
		{"starts", Starts(name, "Jo"), "Jo*"},
		{"ends", Ends(name, "son"), "*son"},
		{"contains", Contains(name, "oh"), "*oh*"},
		{"raw", Wildcard(name, "J?hn*"), "J?hn*"},
		{"starts escapes markers", Starts(name, "a*b?"), `a\*b\?*`},
		{"contains escapes backslash", Contains(name, `c:\x`), `*c:\\x*`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.cond.Query()
			require.NotNil(t, q)
			require.Contains(t, q.Wildcard, "name")
			require.NotNil(t, q.Wildcard["name"].Value)
			assert.Equal(t, tt.want, *q.Wildcard["name"].Value)
		})
	}

	assert.Nil(t, Starts(name, "").Query())
	assert.Nil(t, Wildcard(name, "").Query())
}

func TestEscapeWildcard(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"a*b", `a\*b`},
		{"a?b", `a\?b`},
		{`a\b`, `a\\b`},
		{`\*`, `\\\*`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeWildcard(tt.in))
		})
	}
}

func TestNested(t *testing.T) {
	comments := field.Name("comments")
	inner := Equal(comments.Dot(field.Name("author")), 7)

	q := Nested(comments, inner).Query()
	require.NotNil(t, q)
	require.NotNil(t, q.Nested)
	assert.Equal(t, "comments", q.Nested.Path)
	assert.Equal(t, *inner.Query(), q.Nested.Query)

	assert.Nil(t, Nested(comments, Null).Query())
	assert.Nil(t, Nested(comments, nil).Query())
}

func TestFullText(t *testing.T) {
	q := Match(field.Name("body"), "hello world").Query()
	require.Contains(t, q.Match, "body")
	assert.Equal(t, "hello world", q.Match["body"].Query)
	assert.Nil(t, q.Match["body"].Operator)

	q = MatchAllTerms(field.Name("body"), "hello world").Query()
	require.NotNil(t, q.Match["body"].Operator)
	assert.Equal(t, operator.And, *q.Match["body"].Operator)

	q = MatchPhrase(field.Name("body"), "hello world", 2).Query()
	assert.Equal(t, 2, *q.MatchPhrase["body"].Slop)

	q = MultiMatch(field.Names("title", "body"), "hello").Query()
	require.NotNil(t, q.MultiMatch)
	assert.Equal(t, []string{"title", "body"}, q.MultiMatch.Fields)
	assert.Equal(t, "hello", q.MultiMatch.Query)

	q = Exists(field.Name("email")).Query()
	require.NotNil(t, q.Exists)
	assert.Equal(t, "email", q.Exists.Field)

	q = Missing(field.Name("email")).Query()
	require.Len(t, q.Bool.MustNot, 1)

	assert.Nil(t, Match(field.Name("body"), "  ").Query())
	assert.Nil(t, MultiMatch(nil, "hello").Query())
}

func TestValueOf(t *testing.T) {
	type status string
	type stamp time.Time
	type opaque struct{ A int }

	n := 7
	var nilInt *int
	now := time.Now()

	tests := []struct {
		name     string
		in       any
		kind     Kind
		null     bool
		typeName string
	}{
		{"nil", nil, KindNull, true, "<nil>"},
		{"int", 5, KindInteger, false, "int64"},
		{"uint8", uint8(5), KindInteger, false, "int64"},
		{"huge uint", uint64(1 << 63), KindFloat, false, "float64"},
		{"float32", float32(1.5), KindFloat, false, "float64"},
		{"time", now, KindTime, false, "time.Time"},
		{"named time", stamp(now), KindTime, false, "condition.stamp"},
		{"string", "x", KindText, false, "string"},
		{"named string", status("on"), KindText, false, "condition.status"},
		{"bool", true, KindBool, false, "bool"},
		{"pointer", &n, KindInteger, false, "int64"},
		{"nil pointer keeps kind", nilInt, KindInteger, true, "int"},
		{"struct", opaque{A: 1}, KindOther, false, "condition.opaque"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValueOf(tt.in)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.null, v.IsNull())
			assert.Equal(t, tt.typeName, v.TypeName())
		})
	}

	assert.Equal(t, int64(7), ValueOf(&n).Interface())
	assert.Equal(t, "on", ValueOf(status("on")).String())
	assert.Equal(t, 2.0, Int(2).Float64())
}

func TestParseOperator(t *testing.T) {
	tests := map[string]Operator{
		"=":        OpEqual,
		"==":       OpEqual,
		"<>":       OpNotEqual,
		" >= ":     OpGreaterOrEqual,
		"NOT  IN":  OpNotIn,
		"In":       OpIn,
		"Contains": OpContains,
	}
	for in, want := range tests {
		got, err := ParseOperator(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOperator("~=")
	require.ErrorIs(t, err, ErrUnknownOperator)

	assert.True(t, OpLess.IsComparison())
	assert.False(t, OpIn.IsComparison())
	assert.True(t, OpEnds.IsPattern())
}
