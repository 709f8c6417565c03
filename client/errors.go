package esclient

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoAddresses is returned when neither addresses nor a client are configured.
	ErrNoAddresses = errors.New("esclient: at least one address is required")
	// ErrInvalidAddress is returned for node URLs that are not absolute.
	ErrInvalidAddress = errors.New("esclient: invalid address")
	// ErrNilTransport indicates a nil transport was provided.
	ErrNilTransport = errors.New("esclient: transport cannot be nil")
	// ErrNilRequest is returned by Execute for a nil request.
	ErrNilRequest = errors.New("esclient: request cannot be nil")
)

// APIError is an Elasticsearch error payload or a bare HTTP failure.
type APIError struct {
	Status int
	Type   string
	Reason string
	Raw    []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Type == "" && e.Reason == "":
		return fmt.Sprintf("esclient: api error status=%d", e.Status)
	case e.Type != "" && e.Reason != "":
		return fmt.Sprintf("esclient: %s: %s (status=%d)", e.Type, e.Reason, e.Status)
	case e.Type != "":
		return fmt.Sprintf("esclient: %s (status=%d)", e.Type, e.Status)
	}
	return fmt.Sprintf("esclient: %s (status=%d)", e.Reason, e.Status)
}

// Temporary reports whether the error may be retried.
func (e *APIError) Temporary() bool {
	if e == nil {
		return false
	}
	return temporaryStatus(e.Status)
}

func temporaryStatus(status int) bool {
	switch status {
	case 429, 502, 503, 504:
		return true
	}
	return false
}

// parseAPIError decodes the {"error": {...}, "status": n} envelope. The error
// member may also be a plain string.
func parseAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{Status: status, Raw: data}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || len(envelope.Error) == 0 {
		apiErr.Reason = string(data)
		return apiErr
	}
	var cause struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(envelope.Error, &cause); err == nil {
		apiErr.Type, apiErr.Reason = cause.Type, cause.Reason
		return apiErr
	}
	var reason string
	if err := json.Unmarshal(envelope.Error, &reason); err == nil {
		apiErr.Reason = reason
	}
	return apiErr
}
