package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Error kinds. Every error returned by the client matches exactly one of
// these with errors.Is.
var (
	// ErrRateLimited means the backend throttled us and retries ran out.
	ErrRateLimited = errors.New("llm: rate limited")
	// ErrUnauthenticated means the API key was rejected.
	ErrUnauthenticated = errors.New("llm: unauthenticated")
	// ErrQuotaExhausted means the account has no credits left.
	ErrQuotaExhausted = errors.New("llm: quota exhausted")
	// ErrTransport covers network failures, unexpected statuses and bodies
	// that cannot be decoded.
	ErrTransport = errors.New("llm: transport error")
	// ErrEmptyResponse means the backend answered without any content.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// APIError carries the details of a failed exchange with the backend.
type APIError struct {
	Kind       error
	StatusCode int
	Message    string
	// RetryAfter is the server's retry hint, zero when absent.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%v: status %d: %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// IsFatal reports whether err must not be retried.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrQuotaExhausted)
}

func transportError(format string, args ...any) *APIError {
	return &APIError{Kind: ErrTransport, Message: fmt.Sprintf(format, args...)}
}

// classifyStatus maps a non-2xx response to the error taxonomy.
func classifyStatus(resp *http.Response, body []byte, now time.Time) *APIError {
	e := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		e.Kind = ErrRateLimited
		e.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), now)
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Kind = ErrUnauthenticated
	case http.StatusPaymentRequired:
		e.Kind = ErrQuotaExhausted
	default:
		e.Kind = ErrTransport
	}
	return e
}

// errorMessage pulls error.message out of an OpenAI-style error body,
// falling back to the raw text.
func errorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "no body"
	}
	return msg
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
