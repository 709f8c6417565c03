package esclient

import (
	"context"
	"time"
)

// RetryPolicy decides whether a failed attempt should be retried. attempt
// starts at 1. status is zero when no response was received.
type RetryPolicy interface {
	ShouldRetry(attempt, status int, err error) (bool, time.Duration)
}

// RetryPolicyFunc adapts a function to the RetryPolicy interface.
type RetryPolicyFunc func(attempt, status int, err error) (bool, time.Duration)

// ShouldRetry implements the RetryPolicy interface.
func (f RetryPolicyFunc) ShouldRetry(attempt, status int, err error) (bool, time.Duration) {
	return f(attempt, status, err)
}

// MaxRetries retries transport failures and overload statuses (429, 502, 503,
// 504) up to n times with a linearly growing delay.
func MaxRetries(n int, delay time.Duration) RetryPolicy {
	return RetryPolicyFunc(func(attempt, status int, err error) (bool, time.Duration) {
		if attempt > n {
			return false, 0
		}
		switch {
		case status != 0:
			return temporaryStatus(status), delay
		case err != nil:
			return true, delay
		default:
			return false, 0
		}
	})
}

// DefaultRetryPolicy retries three times starting at 500ms.
var DefaultRetryPolicy = MaxRetries(3, 500*time.Millisecond)

// NoRetry never retries.
var NoRetry RetryPolicy = RetryPolicyFunc(func(int, int, error) (bool, time.Duration) { return false, 0 })

// outcome is one attempt's result as seen by the retry loop.
type outcome struct {
	status int
	err    error
}

func (c *Client) retry(ctx context.Context, fn func() outcome) outcome {
	policy := c.retryPolicy
	if policy == nil {
		return fn()
	}
	var attempt int
	for {
		out := fn()
		attempt++
		retry, delay := policy.ShouldRetry(attempt, out.status, out.err)
		if !retry || ctx.Err() != nil {
			return out
		}
		c.logger.Debugf("esclient: retrying attempt=%d status=%d err=%v", attempt, out.status, out.err)
		select {
		case <-ctx.Done():
			return outcome{status: out.status, err: ctx.Err()}
		case <-time.After(delay * time.Duration(attempt)):
		}
	}
}
