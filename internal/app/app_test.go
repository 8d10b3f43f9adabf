package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callcenter-insights-go/internal/config"
	"callcenter-insights-go/internal/llm"
	"callcenter-insights-go/internal/logger"
)

func baseConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Environment:    "test",
		AllowedOrigins: []string{"http://localhost:3000"},
		LLMMaxAttempts: 3,
		LLMTimeout:     5 * time.Second,
		HistoryLimit:   3,
	}
}

func post(t *testing.T, h http.Handler, body string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analytics", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestNew_WithoutAPIKeyFallsBack(t *testing.T) {
	a, err := New(baseConfig(), logger.Discard())
	require.NoError(t, err)

	env := post(t, a.Handler(), `{"query":"How are we doing?"}`)
	assert.Equal(t, "fallback", env["source"])
	assert.Equal(t, 1, a.History.Len())
}

func TestNew_WithAPIKeyUsesBackend(t *testing.T) {
	var auth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"model":"m","choices":[{"message":{"content":"Escalations are concentrated in Technical Support."}}]}`)
	}))
	defer backend.Close()

	cfg := baseConfig()
	cfg.OpenRouterAPIKey = "sk-live"
	cfg.OpenRouterBaseURL = backend.URL

	a, err := New(cfg, logger.Discard())
	require.NoError(t, err)

	env := post(t, a.Handler(), `{"query":"Where do escalations come from?"}`)
	assert.Equal(t, "model", env["source"])
	assert.Equal(t, "Escalations are concentrated in Technical Support.", env["textResponse"])
	assert.Equal(t, "Bearer sk-live", auth)
}

func TestNew_HistoryLimitFromConfig(t *testing.T) {
	a, err := New(baseConfig(), logger.Discard())
	require.NoError(t, err)

	for _, q := range []string{"department", "category", "priority", "performance"} {
		post(t, a.Handler(), fmt.Sprintf(`{"query":%q,"useStructuredData":true}`, q))
	}
	assert.Equal(t, 3, a.History.Len())

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `callcenter_insights_queries_total{intent="category_breakdown",source="structured"} 1`)
}

func TestNew_MissingWorkbook(t *testing.T) {
	cfg := baseConfig()
	cfg.RecordsPath = filepath.Join(t.TempDir(), "missing.xlsx")

	_, err := New(cfg, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open records")
}

func TestLLMConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.OpenRouterAPIKey = "k"
	cfg.OpenRouterModel = "openai/gpt-4o-mini"
	cfg.LLMMinInterval = 500 * time.Millisecond
	cfg.LLMMaxAttempts = 5

	got := LLMConfig(cfg)
	assert.Equal(t, "k", got.APIKey)
	assert.Equal(t, llm.DefaultBaseURL, got.BaseURL)
	assert.Equal(t, "openai/gpt-4o-mini", got.Model)
	assert.Equal(t, "Call Center Insights", got.AppTitle)
	assert.Equal(t, 500*time.Millisecond, got.MinInterval)
	assert.Equal(t, 5*time.Second, got.Timeout)
	assert.Equal(t, 5, got.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, got.Retry.RateLimitBase)
}
