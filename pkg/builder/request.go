package builder

import (
	"bytes"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

// Request is the assembled search: the target index and the search body.
// It must not be modified once handed to an executor.
type Request struct {
	Index string
	Body  *search.Request
}

func newRequest(index string) *Request {
	return &Request{Index: index, Body: &search.Request{}}
}

// Query returns the query tree, or nil when the search matches everything.
func (r *Request) Query() *types.Query {
	if r == nil || r.Body == nil {
		return nil
	}
	return r.Body.Query
}

// Skip returns the number of hits skipped.
func (r *Request) Skip() int {
	if r == nil || r.Body == nil || r.Body.From == nil {
		return 0
	}
	return *r.Body.From
}

// Take returns the page size.
func (r *Request) Take() int {
	if r == nil || r.Body == nil || r.Body.Size == nil {
		return DefaultTake
	}
	return *r.Body.Size
}

// JSON encodes the request body without HTML escaping.
func (r *Request) JSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.Body); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
