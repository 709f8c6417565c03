package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-esquery/auth"
	"github.com/robert-malhotra/go-esquery/pkg/builder"
	"github.com/robert-malhotra/go-esquery/pkg/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(context.Background(), append([]string{"esq"}, args...))
	return out.String(), err
}

func TestQueryCommand(t *testing.T) {
	out, err := run(t,
		"--index-prefix", "dev",
		"query",
		"--index", "Articles",
		"--where", "status = 'published' AND views >= 10",
		"--where", "author.name IS NOT NULL",
		"--select", "title",
		"--sort", "published_at:desc",
		"--take", "5",
		"--collapse", "author.id",
	)
	require.NoError(t, err)

	var got struct {
		Index string         `json:"index"`
		Body  map[string]any `json:"body"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "dev-articles", got.Index)
	assert.EqualValues(t, 5, got.Body["size"])
	assert.Contains(t, got.Body, "query")
	assert.Contains(t, got.Body, "sort")
	assert.Contains(t, got.Body, "_source")
	assert.Contains(t, got.Body, "collapse")

	query, err := json.Marshal(got.Body["query"])
	require.NoError(t, err)
	assert.Contains(t, string(query), `"views"`)
	assert.Contains(t, string(query), `"exists"`)
}

func TestQueryCommandDefaults(t *testing.T) {
	out, err := run(t, "query", "--index", "logs")
	require.NoError(t, err)

	var got struct {
		Index string         `json:"index"`
		Body  map[string]any `json:"body"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "logs", got.Index)
	assert.EqualValues(t, 10, got.Body["size"])
	assert.NotContains(t, got.Body, "query")
}

func TestQueryCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing index", []string{"query"}},
		{"bad where", []string{"query", "--index", "a", "--where", "age >"}},
		{"bad sort", []string{"query", "--index", "a", "--sort", "name:sideways"}},
		{"bad log level", []string{"--log-level", "loud", "query", "--index", "a"}},
		{"bad url", []string{"--url", "not a url", "search", "--index", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestSearchCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dev-articles/_search", r.URL.Path)
		assert.Equal(t, "ApiKey secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(auth.OpaqueIDHeader))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), `"size":2`)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		_, _ = io.WriteString(w, `{
			"took": 7,
			"hits": {
				"total": {"value": 42, "relation": "eq"},
				"hits": [
					{"_id": "1", "_source": {"title": "first"}},
					{"_id": "2", "_source": {"title": "second"}}
				]
			}
		}`)
	}))
	defer srv.Close()

	out, err := run(t,
		"--url", srv.URL,
		"--api-key", "secret",
		"--index-prefix", "dev",
		"search",
		"--index", "articles",
		"--where", "views > 1",
		"--take", "2",
	)
	require.NoError(t, err)

	var got struct {
		Total     int64            `json:"total"`
		TookMS    int64            `json:"took_ms"`
		Documents []map[string]any `json:"documents"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(42), got.Total)
	assert.Equal(t, int64(7), got.TookMS)
	require.Len(t, got.Documents, 2)
	assert.Equal(t, "first", got.Documents[0]["title"])
	assert.Equal(t, "second", got.Documents[1]["title"])
}

func TestSearchCommandAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception","reason":"no such index [missing]"},"status":404}`)
	}))
	defer srv.Close()

	_, err := run(t, "--url", srv.URL, "search", "--index", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index_not_found_exception")
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		spec    string
		name    string
		dir     builder.Direction
		wantErr bool
	}{
		{spec: "title", name: "title", dir: builder.Ascending},
		{spec: "title:asc", name: "title", dir: builder.Ascending},
		{spec: "published_at:desc", name: "published_at", dir: builder.Descending},
		{spec: " views : DESC ", name: "views", dir: builder.Descending},
		{spec: ":desc", wantErr: true},
		{spec: "title:up", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			name, dir, err := parseSort(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.dir, dir)
		})
	}
}

func TestNewClientWithBreaker(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Breaker.Enabled = true

	client, err := newClient(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "closed", client.BreakerState().String())
}
