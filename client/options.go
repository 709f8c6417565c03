package esclient

import (
	"net/http"
	"net/url"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sony/gobreaker"
)

// Logger represents the minimal logging interface used by the client.
// *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client) error

// WithAddresses sets the cluster node URLs.
func WithAddresses(addrs ...string) ClientOption {
	return func(c *Client) error {
		for _, raw := range addrs {
			u, err := url.Parse(raw)
			if err != nil {
				return ErrInvalidAddress
			}
			if !u.IsAbs() || u.Host == "" {
				return ErrInvalidAddress
			}
		}
		c.addresses = append(c.addresses, addrs...)
		return nil
	}
}

// WithTransport injects the HTTP transport, for example an auth decorator
// from the auth package.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) error {
		if rt == nil {
			return ErrNilTransport
		}
		c.transport = rt
		return nil
	}
}

// WithDefaultHeader registers a header applied to every request.
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) error {
		if key == "" {
			return nil
		}
		if c.headers == nil {
			c.headers = make(http.Header)
		}
		c.headers.Add(key, value)
		return nil
	}
}

// WithElasticsearch uses an existing go-elasticsearch client. Address,
// transport and header options are then ignored.
func WithElasticsearch(es *elasticsearch.Client) ClientOption {
	return func(c *Client) error {
		c.es = es
		return nil
	}
}

// WithRetryPolicy configures the retry behavior. A nil policy disables retries.
func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *Client) error {
		c.retryPolicy = policy
		return nil
	}
}

// WithLogger registers a logger used for request lifecycle events.
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithTimeout bounds every Execute call, retries included.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) error {
		if timeout > 0 {
			c.timeout = timeout
		}
		return nil
	}
}

// WithCircuitBreaker guards searches with a circuit breaker built from st.
func WithCircuitBreaker(st gobreaker.Settings) ClientOption {
	return func(c *Client) error {
		if st.Name == "" {
			st.Name = "elasticsearch"
		}
		if st.IsSuccessful == nil {
			st.IsSuccessful = countsAsSuccess
		}
		if st.OnStateChange == nil {
			st.OnStateChange = func(name string, from, to gobreaker.State) {
				c.logger.Errorf("esclient: breaker %s changed from %s to %s", name, from, to)
			}
		}
		c.breaker = gobreaker.NewCircuitBreaker(st)
		return nil
	}
}

// BreakerSettings trips once at least minRequests were seen in the interval
// and the failure ratio reaches ratio.
func BreakerSettings(maxRequests uint32, interval, timeout time.Duration, ratio float64, minRequests uint32) gobreaker.Settings {
	return gobreaker.Settings{
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests || counts.Requests == 0 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
	}
}
