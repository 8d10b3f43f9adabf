package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	AllowedOrigins []string

	// RecordsPath points at a call record workbook. Empty serves the built-in fixture.
	RecordsPath string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	SiteURL           string
	AppTitle          string

	LLMMinInterval time.Duration
	LLMMaxAttempts int
	LLMTimeout     time.Duration

	HistoryLimit int
}

// ReasoningEnabled reports whether an API key is configured for the reasoning backend.
func (c *Config) ReasoningEnabled() bool {
	return c.OpenRouterAPIKey != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "local"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		RecordsPath:       os.Getenv("RECORDS_PATH"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: os.Getenv("OPENROUTER_BASE_URL"),
		OpenRouterModel:   os.Getenv("OPENROUTER_MODEL"),
		SiteURL:           os.Getenv("SITE_URL"),
		AppTitle:          os.Getenv("APP_TITLE"),
	}

	var err error
	if config.LLMMinInterval, err = getDuration("LLM_MIN_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if config.LLMTimeout, err = getDuration("LLM_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if config.LLMMaxAttempts, err = getPositiveInt("LLM_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if config.HistoryLimit, err = getPositiveInt("HISTORY_LIMIT", 10); err != nil {
		return nil, err
	}

	origins := config.AllowedOrigins[:0]
	for _, origin := range config.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	config.AllowedOrigins = origins

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go duration syntax ("1500ms") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("invalid %s: must not be negative", key)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid %s: must be at least 1", key)
	}
	return n, nil
}
