// Package auth provides http.RoundTripper decorators for Elasticsearch
// authentication and request tracing.
package auth

import (
	"encoding/base64"
	"net/http"

	"github.com/google/uuid"
)

// OpaqueIDHeader is echoed by Elasticsearch in slow logs and task listings.
const OpaqueIDHeader = "X-Opaque-Id"

func base(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}

// APIKeyTransport injects an API key. Key is the base64 encoded "id:api_key"
// pair issued by the security API.
type APIKeyTransport struct {
	Key    string
	Header string
	Base   http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *APIKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.Key != "" {
		if t.Header == "" {
			clone.Header.Set("Authorization", "ApiKey "+t.Key)
		} else {
			clone.Header.Set(t.Header, t.Key)
		}
	}
	return base(t.Base).RoundTrip(clone)
}

// BearerTokenTransport injects a bearer token, for example a service token.
type BearerTokenTransport struct {
	Token string
	Base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.Token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.Token)
	}
	return base(t.Base).RoundTrip(clone)
}

// BasicAuthTransport injects HTTP basic credentials.
type BasicAuthTransport struct {
	Username string
	Password string
	Base     http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *BasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.Username != "" {
		token := base64.StdEncoding.EncodeToString([]byte(t.Username + ":" + t.Password))
		clone.Header.Set("Authorization", "Basic "+token)
	}
	return base(t.Base).RoundTrip(clone)
}

// OpaqueIDTransport tags requests lacking an X-Opaque-Id with a fresh id.
type OpaqueIDTransport struct {
	// NewID overrides the id generator. It defaults to random UUIDs.
	NewID func() string
	Base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *OpaqueIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(OpaqueIDHeader) != "" {
		return base(t.Base).RoundTrip(req)
	}
	newID := t.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	clone := req.Clone(req.Context())
	clone.Header.Set(OpaqueIDHeader, newID())
	return base(t.Base).RoundTrip(clone)
}

// Chain wraps rt with the transport selected by the given credentials. The
// API key wins over the bearer token, which wins over basic credentials.
// The result always sets an opaque id.
func Chain(rt http.RoundTripper, apiKey, bearer, username, password string) http.RoundTripper {
	switch {
	case apiKey != "":
		rt = &APIKeyTransport{Key: apiKey, Base: rt}
	case bearer != "":
		rt = &BearerTokenTransport{Token: bearer, Base: rt}
	case username != "":
		rt = &BasicAuthTransport{Username: username, Password: password, Base: rt}
	}
	return &OpaqueIDTransport{Base: rt}
}
