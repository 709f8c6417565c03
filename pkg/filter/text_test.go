package filter

import (
	"encoding/json"
	"testing"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-esquery/pkg/condition"
)

func mustParse(t *testing.T, input string) *types.Query {
	t.Helper()
	c, err := Parse(input)
	require.NoError(t, err)
	return c.Query()
}

func TestParseScenario(t *testing.T) {
	q := mustParse(t, `age BETWEEN 18 AND 30 AND status IN ('active', 'pending') AND name STARTS 'Jo'`)
	require.NotNil(t, q.Bool)
	require.Len(t, q.Bool.Must, 3)

	rq, ok := q.Bool.Must[0].Range["age"].(*types.UntypedRangeQuery)
	require.True(t, ok)
	assert.Equal(t, json.RawMessage("18"), rq.Gte)
	assert.Equal(t, json.RawMessage("30"), rq.Lte)

	assert.Equal(t, []types.FieldValue{"active", "pending"}, q.Bool.Must[1].Terms.TermsQuery["status"])
	assert.Equal(t, "Jo*", *q.Bool.Must[2].Wildcard["name"].Value)
}

func TestParsePredicates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, q *types.Query)
	}{
		{
			name:  "text equality",
			input: `status = "active"`,
			check: func(t *testing.T, q *types.Query) {
				assert.Equal(t, "active", q.MatchPhrase["status"].Query)
			},
		},
		{
			name:  "boolean term",
			input: `deleted = FALSE`,
			check: func(t *testing.T, q *types.Query) {
				assert.Equal(t, types.FieldValue(false), q.Term["deleted"].Value)
			},
		},
		{
			name:  "integer term",
			input: `views == 10`,
			check: func(t *testing.T, q *types.Query) {
				assert.Equal(t, types.FieldValue(int64(10)), q.Term["views"].Value)
			},
		},
		{
			name:  "float comparison",
			input: `score > 1.5`,
			check: func(t *testing.T, q *types.Query) {
				rq := q.Range["score"].(*types.NumberRangeQuery)
				assert.Equal(t, types.Float64(1.5), *rq.Gt)
				assert.Nil(t, rq.Gte)
			},
		},
		{
			name:  "negative number",
			input: `delta <= -3`,
			check: func(t *testing.T, q *types.Query) {
				rq := q.Range["delta"].(*types.UntypedRangeQuery)
				assert.Equal(t, json.RawMessage("-3"), rq.Lte)
			},
		},
		{
			name:  "date comparison",
			input: `created >= '2024-01-02'`,
			check: func(t *testing.T, q *types.Query) {
				rq := q.Range["created"].(*types.DateRangeQuery)
				assert.Equal(t, "2024-01-02T00:00:00Z", *rq.Gte)
			},
		},
		{
			name:  "timestamp field",
			input: `@timestamp < '2024-01-01T10:00:00Z'`,
			check: func(t *testing.T, q *types.Query) {
				rq := q.Range["@timestamp"].(*types.DateRangeQuery)
				assert.Equal(t, "2024-01-01T10:00:00Z", *rq.Lt)
			},
		},
		{
			name:  "dotted field not equal",
			input: `user.name <> 'bob'`,
			check: func(t *testing.T, q *types.Query) {
				require.Len(t, q.Bool.MustNot, 1)
				assert.Contains(t, q.Bool.MustNot[0].MatchPhrase, "user.name")
			},
		},
		{
			name:  "like",
			input: `code LIKE 'Jo%n_'`,
			check: func(t *testing.T, q *types.Query) {
				assert.Equal(t, "Jo*n?", *q.Wildcard["code"].Value)
			},
		},
		{
			name:  "like with literal star",
			input: `code LIKE 'a*b%'`,
			check: func(t *testing.T, q *types.Query) {
				assert.Equal(t, `a\*b*`, *q.Wildcard["code"].Value)
			},
		},
		{
			name:  "not contains",
			input: `name NOT CONTAINS 'bob'`,
			check: func(t *testing.T, q *types.Query) {
				require.Len(t, q.Bool.MustNot, 1)
				assert.Equal(t, "*bob*", *q.Bool.MustNot[0].Wildcard["name"].Value)
			},
		},
		{
			name:  "ends",
			input: `file ends '.go'`,
			check: func(t *testing.T, q *types.Query) {
				assert.Equal(t, "*.go", *q.Wildcard["file"].Value)
			},
		},
		{
			name:  "not in",
			input: `tags NOT IN ('x', NULL)`,
			check: func(t *testing.T, q *types.Query) {
				require.Len(t, q.Bool.MustNot, 1)
				assert.Equal(t, []types.FieldValue{"x"}, q.Bool.MustNot[0].Terms.TermsQuery["tags"])
			},
		},
		{
			name:  "empty in matches nothing",
			input: `tags IN ()`,
			check: func(t *testing.T, q *types.Query) {
				require.NotNil(t, q.Terms)
				assert.Empty(t, q.Terms.TermsQuery["tags"])
			},
		},
		{
			name:  "is null",
			input: `email IS NULL`,
			check: func(t *testing.T, q *types.Query) {
				require.Len(t, q.Bool.MustNot, 1)
				assert.Equal(t, "email", q.Bool.MustNot[0].Exists.Field)
			},
		},
		{
			name:  "is not null",
			input: `email is not null`,
			check: func(t *testing.T, q *types.Query) {
				assert.Equal(t, "email", q.Exists.Field)
			},
		},
		{
			name:  "equals null",
			input: `email = NULL`,
			check: func(t *testing.T, q *types.Query) {
				assert.Equal(t, "email", q.Bool.MustNot[0].Exists.Field)
			},
		},
		{
			name:  "not equals null",
			input: `email != null`,
			check: func(t *testing.T, q *types.Query) {
				assert.Equal(t, "email", q.Exists.Field)
			},
		},
		{
			name:  "open between",
			input: `age BETWEEN NULL AND 30`,
			check: func(t *testing.T, q *types.Query) {
				rq := q.Range["age"].(*types.UntypedRangeQuery)
				assert.Empty(t, rq.Gte)
				assert.Equal(t, json.RawMessage("30"), rq.Lte)
			},
		},
		{
			name:  "keyword-like field names",
			input: `index = 1 and notes = 'x' and in_stock = true`,
			check: func(t *testing.T, q *types.Query) {
				require.Len(t, q.Bool.Must, 3)
				assert.Contains(t, q.Bool.Must[0].Term, "index")
				assert.Contains(t, q.Bool.Must[1].MatchPhrase, "notes")
				assert.Contains(t, q.Bool.Must[2].Term, "in_stock")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustParse(t, tt.input)
			require.NotNil(t, q)
			tt.check(t, q)
		})
	}
}

func TestParseLogic(t *testing.T) {
	t.Run("or", func(t *testing.T) {
		q := mustParse(t, `status = 'active' OR status = 'pending'`)
		require.Len(t, q.Bool.Should, 2)
		assert.EqualValues(t, 1, q.Bool.MinimumShouldMatch)
	})

	t.Run("and binds tighter than or", func(t *testing.T) {
		q := mustParse(t, `a = 1 OR b = 2 AND c = 3`)
		require.Len(t, q.Bool.Should, 2)
		assert.Contains(t, q.Bool.Should[0].Term, "a")
		require.NotNil(t, q.Bool.Should[1].Bool)
		assert.Len(t, q.Bool.Should[1].Bool.Must, 2)
	})

	t.Run("parentheses", func(t *testing.T) {
		q := mustParse(t, `(a = 1 OR b = 2) AND c = 3`)
		require.Len(t, q.Bool.Must, 2)
		assert.Len(t, q.Bool.Must[0].Bool.Should, 2)
	})

	t.Run("not", func(t *testing.T) {
		q := mustParse(t, `NOT (deleted = true)`)
		require.Len(t, q.Bool.MustNot, 1)
		assert.Equal(t, types.FieldValue(true), q.Bool.MustNot[0].Term["deleted"].Value)
	})

	t.Run("between inside conjunction", func(t *testing.T) {
		q := mustParse(t, `age between 1 and 2 and flag = true`)
		require.Len(t, q.Bool.Must, 2)
		assert.Contains(t, q.Bool.Must[0].Range, "age")
	})
}

func TestParseBlank(t *testing.T) {
	c, err := Parse("   ")
	require.NoError(t, err)
	assert.True(t, condition.IsNull(c))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		is    error
	}{
		{"dangling operator", `age >`, nil},
		{"unclosed list", `x IN ('a'`, nil},
		{"text ordering", `name > 'abc'`, condition.ErrUnsupportedType},
		{"null ordering", `age > NULL`, ErrNullComparison},
		{"bool range", `flag BETWEEN true AND false`, condition.ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			if tt.is != nil {
				require.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestParseAll(t *testing.T) {
	c, err := ParseAll("a = 1", "b = 2", "")
	require.NoError(t, err)
	assert.Len(t, c.Query().Bool.Must, 2)

	c, err = ParseAll()
	require.NoError(t, err)
	assert.True(t, condition.IsNull(c))

	_, err = ParseAll("a = 1", "b >")
	require.Error(t, err)
}
