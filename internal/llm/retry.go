package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy decides whether and when a failed request is retried. It holds
// no state, so it can be tested without a network or a clock.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// RateLimitBase and RateLimitMax shape the backoff after a 429.
	RateLimitBase time.Duration
	RateLimitMax  time.Duration

	// TransportBase and TransportMax shape the backoff after other
	// retryable failures.
	TransportBase time.Duration
	TransportMax  time.Duration
}

// DefaultRetryPolicy returns the backoff schedule used for the hosted backend.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		RateLimitBase: 2 * time.Second,
		RateLimitMax:  30 * time.Second,
		TransportBase: time.Second,
		TransportMax:  10 * time.Second,
	}
}

// Retryable reports whether err is worth another attempt. Client errors
// other than 408 and 429 are not: the same request would fail again.
func (p RetryPolicy) Retryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if !errors.Is(err, ErrTransport) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode == http.StatusRequestTimeout
	}
	return true
}

// Delay returns the wait after the given zero-based failed attempt. A server
// retry hint takes precedence over the exponential schedule.
func (p RetryPolicy) Delay(attempt int, err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}
	if errors.Is(err, ErrRateLimited) {
		return exponential(p.RateLimitBase, p.RateLimitMax, attempt)
	}
	return exponential(p.TransportBase, p.TransportMax, attempt)
}

func exponential(base, ceiling time.Duration, attempt int) time.Duration {
	d := base
	for i := 0; i < attempt && d < ceiling; i++ {
		d *= 2
	}
	if ceiling > 0 && d > ceiling {
		return ceiling
	}
	return d
}

// policyBackOff adapts a RetryPolicy to backoff.BackOff. lastErr is set by
// the operation before each NextBackOff call.
type policyBackOff struct {
	policy  RetryPolicy
	attempt int
	lastErr error
}

func (b *policyBackOff) NextBackOff() time.Duration {
	if b.attempt+1 >= b.policy.MaxAttempts {
		return backoff.Stop
	}
	d := b.policy.Delay(b.attempt, b.lastErr)
	b.attempt++
	return d
}

func (b *policyBackOff) Reset() {
	b.attempt = 0
	b.lastErr = nil
}

// retry runs op under the client's policy. Non-retryable errors stop the
// loop at once; ctx cancellation interrupts any backoff sleep.
func (c *Client) retry(ctx context.Context, op func() error) error {
	pb := &policyBackOff{policy: c.cfg.Retry}

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		pb.lastErr = err
		if ctx.Err() != nil || !c.cfg.Retry.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		c.log.WithError(err).WithField("retry_in_ms", wait.Milliseconds()).Warn("llm request failed, retrying")
		if c.onRetry != nil {
			c.onRetry(err, wait)
		}
	}

	var timer backoff.Timer
	if c.newTimer != nil {
		timer = c.newTimer()
	}
	return backoff.RetryNotifyWithTimer(wrapped, backoff.WithContext(pb, ctx), notify, timer)
}
