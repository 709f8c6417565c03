package search_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-esquery/pkg/builder"
	"github.com/robert-malhotra/go-esquery/pkg/condition"
	"github.com/robert-malhotra/go-esquery/pkg/search"
	"github.com/robert-malhotra/go-esquery/query"
)

type Article struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Views  int      `json:"views"`
	Tags   []string `json:"tags"`
}

type fakeExecutor struct {
	requests []*builder.Request
	resp     *search.Response
	err      error
}

func (f *fakeExecutor) Execute(_ context.Context, req *builder.Request) (*search.Response, error) {
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

func TestRequest(t *testing.T) {
	req, err := search.New[Article](nil).
		Query(func(q *query.Query) {
			q.Match("title", "golang").TermsIfNotEmpty("tags", []string{"go"})
		}).
		Query(func(q *query.Query) { q.GreaterOrEqual("views", 100) }).
		Include("id", "title").
		Exclude("tags").
		Sort("views", builder.Descending).
		SortKeyword("title", builder.Ascending).
		Page(3, 20).
		Collapse("author").
		Request()
	require.NoError(t, err)

	assert.Equal(t, "article", req.Index)
	assert.Equal(t, 40, req.Skip())
	assert.Equal(t, 20, req.Take())
	require.NotNil(t, req.Query().Bool)
	assert.Len(t, req.Query().Bool.Must, 3)
	assert.Equal(t, types.SourceFilter{Includes: []string{"id", "title"}, Excludes: []string{"tags"}}, req.Body.Source_)
	require.Len(t, req.Body.Sort, 2)
	assert.Contains(t, req.Body.Sort[1].(types.SortOptions).SortOptions, "title.keyword")
	require.NotNil(t, req.Body.Collapse)
	assert.Equal(t, "author", req.Body.Collapse.Field)
}

func TestRequestDefaults(t *testing.T) {
	tests := []struct {
		name  string
		build func() *search.Search[Article]
		index string
		skip  int
		take  int
	}{
		{
			name:  "convention index",
			build: func() *search.Search[Article] { return search.New[Article](nil) },
			index: "article",
			take:  builder.DefaultTake,
		},
		{
			name: "resolver and default take",
			build: func() *search.Search[Article] {
				return search.New[Article](nil,
					search.WithResolver(builder.PrefixResolver("prod")),
					search.WithDefaultTake(25),
				).Index("Articles")
			},
			index: "prod-articles",
			take:  25,
		},
		{
			name:  "page below one",
			build: func() *search.Search[Article] { return search.New[Article](nil).Page(0, 5) },
			index: "article",
			take:  5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.build().Request()
			require.NoError(t, err)
			assert.Equal(t, tt.index, req.Index)
			assert.Equal(t, tt.skip, req.Skip())
			assert.Equal(t, tt.take, req.Take())
			assert.Nil(t, req.Query())
		})
	}
}

func TestRequestErrors(t *testing.T) {
	_, err := search.New[Article](nil).Page(1, 0).Request()
	require.Error(t, err)

	_, err = search.New[Article](nil).
		Query(func(q *query.Query) { q.Greater("title", "abc") }).
		Request()
	require.ErrorIs(t, err, condition.ErrUnsupportedType)

	_, err = search.New[map[string]any](nil).Request()
	require.ErrorIs(t, err, builder.ErrIndexRequired)
}

func TestResult(t *testing.T) {
	exec := &fakeExecutor{resp: &search.Response{
		Hits: []json.RawMessage{
			json.RawMessage(`{"id":"1","title":"Go","views":3}`),
			json.RawMessage(`{"id":"2","title":"Rust","views":5,"tags":["x"]}`),
		},
		Total: 42,
		Took:  7 * time.Millisecond,
	}}

	res, err := search.New[Article](exec).
		Index("articles").
		Query(func(q *query.Query) { q.Term("author", "ann") }).
		Result(context.Background())
	require.NoError(t, err)

	require.Len(t, exec.requests, 1)
	assert.Equal(t, "articles", exec.requests[0].Index)
	assert.Equal(t, int64(42), res.Total)
	assert.Equal(t, 7*time.Millisecond, res.Took)
	assert.Equal(t, []Article{
		{ID: "1", Title: "Go", Views: 3},
		{ID: "2", Title: "Rust", Views: 5, Tags: []string{"x"}},
	}, res.Documents)
}

func TestResultErrors(t *testing.T) {
	t.Run("executor error is returned unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := search.New[Article](&fakeExecutor{err: boom}).Result(context.Background())
		assert.Same(t, boom, err)
	})

	t.Run("no executor", func(t *testing.T) {
		_, err := search.New[Article](nil).Result(context.Background())
		require.ErrorIs(t, err, search.ErrNoExecutor)
	})

	t.Run("bad hit", func(t *testing.T) {
		exec := &fakeExecutor{resp: &search.Response{Hits: []json.RawMessage{json.RawMessage(`[1]`)}}}
		_, err := search.New[Article](exec).Result(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode hit 0")
	})

	t.Run("build error skips execution", func(t *testing.T) {
		exec := &fakeExecutor{}
		_, err := search.New[Article](exec).Page(1, -1).Result(context.Background())
		require.Error(t, err)
		assert.Empty(t, exec.requests)
	})
}

func TestExecutorFunc(t *testing.T) {
	var got string
	exec := search.ExecutorFunc(func(_ context.Context, req *builder.Request) (*search.Response, error) {
		got = req.Index
		return &search.Response{}, nil
	})
	res, err := search.New[Article](exec).Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "article", got)
	assert.Empty(t, res.Documents)
}
