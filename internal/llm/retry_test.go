package llm

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := DefaultRetryPolicy()
	rateLimited := &APIError{Kind: ErrRateLimited, StatusCode: 429}
	transport := &APIError{Kind: ErrTransport, StatusCode: 503}

	var limited, other []time.Duration
	for attempt := 0; attempt < 5; attempt++ {
		limited = append(limited, p.Delay(attempt, rateLimited))
		other = append(other, p.Delay(attempt, transport))
	}
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 30 * time.Second}, limited)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second}, other)
}

func TestRetryPolicy_DelayPrefersServerHint(t *testing.T) {
	p := DefaultRetryPolicy()
	err := fmt.Errorf("wrapped: %w", &APIError{Kind: ErrRateLimited, RetryAfter: 90 * time.Second})
	assert.Equal(t, 90*time.Second, p.Delay(0, err))
}

func TestRetryPolicy_Retryable(t *testing.T) {
	p := DefaultRetryPolicy()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &APIError{Kind: ErrRateLimited, StatusCode: 429}, true},
		{"server error", &APIError{Kind: ErrTransport, StatusCode: 502}, true},
		{"network", transportError("connection refused"), true},
		{"request timeout", &APIError{Kind: ErrTransport, StatusCode: http.StatusRequestTimeout}, true},
		{"bad request", &APIError{Kind: ErrTransport, StatusCode: 400}, false},
		{"unauthenticated", &APIError{Kind: ErrUnauthenticated, StatusCode: 401}, false},
		{"quota", &APIError{Kind: ErrQuotaExhausted, StatusCode: 402}, false},
		{"empty", &APIError{Kind: ErrEmptyResponse}, false},
		{"unclassified", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Retryable(tt.err))
		})
	}
}

func TestPolicyBackOff_StopsAtMaxAttempts(t *testing.T) {
	b := &policyBackOff{policy: DefaultRetryPolicy(), lastErr: transportError("x")}

	assert.Equal(t, time.Second, b.NextBackOff())
	assert.Equal(t, 2*time.Second, b.NextBackOff())
	assert.Equal(t, backoff.Stop, b.NextBackOff())

	b.Reset()
	assert.Equal(t, 0, b.attempt)
	assert.Nil(t, b.lastErr)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 5*time.Second, parseRetryAfter("5", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-3", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon", now))
	assert.Equal(t, 30*time.Second, parseRetryAfter(now.Add(30*time.Second).Format(http.TimeFormat), now))
	assert.Equal(t, time.Duration(0), parseRetryAfter(now.Add(-time.Minute).Format(http.TimeFormat), now))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Insufficient credits", errorMessage([]byte(`{"error":{"message":"Insufficient credits","code":402}}`)))
	assert.Equal(t, "plain text", errorMessage([]byte(" plain text \n")))
	assert.Equal(t, "no body", errorMessage(nil))
}
