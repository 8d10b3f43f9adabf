package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveQuery("department_breakdown", "structured")
	m.ObserveQuery("department_breakdown", "structured")
	m.ObserveQuery("default_overview", "fallback")
	m.ObserveFallback("rate_limited")
	m.ObserveRetry()
	m.ObserveRetry()
	m.ObserveLLM("ok", 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queriesTotal.WithLabelValues("department_breakdown", "structured")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queriesTotal.WithLabelValues("default_overview", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacksTotal.WithLabelValues("rate_limited")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.llmRetriesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequestsTotal.WithLabelValues("ok")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP("/api/analytics", "POST", 200, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `callcenter_insights_http_requests_total{method="POST",route="/api/analytics",status="200"} 1`)
	assert.Contains(t, body, "callcenter_insights_http_request_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}
