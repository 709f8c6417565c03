// Package esclient executes assembled search requests against Elasticsearch.
// It satisfies search.Executor.
package esclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-esquery/pkg/builder"
	"github.com/robert-malhotra/go-esquery/pkg/search"
)

// maxErrorBody caps how much of a failed response is kept.
const maxErrorBody = 1 << 20

// Client is a reusable search executor. It is safe for concurrent use.
type Client struct {
	es          *elasticsearch.Client
	addresses   []string
	transport   http.RoundTripper
	headers     http.Header
	timeout     time.Duration
	retryPolicy RetryPolicy
	breaker     *gobreaker.CircuitBreaker
	logger      Logger
}

var _ search.Executor = (*Client)(nil)

// New constructs a Client with provided options.
func New(opts ...ClientOption) (*Client, error) {
	c := &Client{
		retryPolicy: DefaultRetryPolicy,
		logger:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.es != nil {
		return c, nil
	}
	if len(c.addresses) == 0 {
		return nil, ErrNoAddresses
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    c.addresses,
		Header:       c.headers,
		Transport:    c.transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "esclient: create client")
	}
	c.es = es
	return c, nil
}

// Execute runs req and returns the _source of every hit.
func (c *Client) Execute(ctx context.Context, req *builder.Request) (*search.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	body, err := req.JSON()
	if err != nil {
		return nil, errors.Wrap(err, "esclient: encode request")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.breaker == nil {
		return c.search(ctx, req.Index, body)
	}
	v, err := c.breaker.Execute(func() (interface{}, error) {
		return c.search(ctx, req.Index, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Wrapf(err, "esclient: breaker %s", c.breaker.Name())
		}
		return nil, err
	}
	return v.(*search.Response), nil
}

// BreakerState reports the circuit breaker state, or closed when none is set.
func (c *Client) BreakerState() gobreaker.State {
	if c.breaker == nil {
		return gobreaker.StateClosed
	}
	return c.breaker.State()
}

func (c *Client) search(ctx context.Context, index string, body []byte) (*search.Response, error) {
	c.logger.Debugf("esclient: search index=%s body=%s", index, body)

	var data []byte
	out := c.retry(ctx, func() outcome {
		res, err := c.es.Search(
			c.es.Search.WithContext(ctx),
			c.es.Search.WithIndex(index),
			c.es.Search.WithBody(bytes.NewReader(body)),
		)
		if err != nil {
			return outcome{err: err}
		}
		defer res.Body.Close()

		if res.IsError() {
			raw, readErr := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
			if readErr != nil {
				return outcome{status: res.StatusCode, err: readErr}
			}
			return outcome{status: res.StatusCode, err: parseAPIError(res.StatusCode, raw)}
		}
		data, err = io.ReadAll(res.Body)
		return outcome{status: res.StatusCode, err: err}
	})
	if out.err != nil {
		c.logger.Errorf("esclient: search failed index=%s status=%d err=%v", index, out.status, out.err)
		return nil, out.err
	}
	return decodeResponse(data)
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total totalHits `json:"total"`
		Hits  []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// totalHits accepts both {"value": n} and a bare number.
type totalHits int64

func (t *totalHits) UnmarshalJSON(data []byte) error {
	var obj struct {
		Value int64 `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*t = totalHits(obj.Value)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = totalHits(n)
	return nil
}

func decodeResponse(data []byte) (*search.Response, error) {
	var raw searchResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "esclient: decode response")
	}
	hits := make([]json.RawMessage, 0, len(raw.Hits.Hits))
	for _, h := range raw.Hits.Hits {
		hits = append(hits, h.Source)
	}
	return &search.Response{
		Hits:  hits,
		Total: int64(raw.Hits.Total),
		Took:  time.Duration(raw.Took) * time.Millisecond,
	}, nil
}

func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Temporary() && apiErr.Status < 500
	}
	return errors.Is(err, context.Canceled)
}
