package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "production", "info")

	log.WithComponent("assembler").WithError(errors.New("boom")).Warn("fallback")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fallback", entry["msg"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "assembler", entry["component"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNewWithOutput_Level(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "production", "warn")

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithRequest(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "production", "info")

	req := httptest.NewRequest("POST", "/api/analytics", nil)
	req.Header.Set("X-Request-ID", "req-42")
	log.WithRequest(req).Info("request")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["req_id"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/api/analytics", entry["path"])
}

func TestWithError_Nil(t *testing.T) {
	log := Discard()
	assert.Equal(t, log.Entry, log.WithError(nil))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"":        "info",
		"debug":   "debug",
		"warn":    "warning",
		"ERROR":   "error",
		"verbose": "info",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, parseLevel(in).String())
		})
	}
}

func TestNewWithOutput_LocalText(t *testing.T) {
	var buf bytes.Buffer
	NewWithOutput(&buf, "local", "info").Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.NotContains(t, buf.String(), "{")
}
