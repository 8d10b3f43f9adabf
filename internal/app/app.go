// Package app wires the service components together from configuration.
package app

import (
	"fmt"
	"net/http"
	"time"

	"callcenter-insights-go/internal/config"
	"callcenter-insights-go/internal/dataset"
	"callcenter-insights-go/internal/history"
	"callcenter-insights-go/internal/llm"
	"callcenter-insights-go/internal/logger"
	"callcenter-insights-go/internal/metrics"
	"callcenter-insights-go/internal/processor"
	"callcenter-insights-go/internal/server"
)

// App holds the long-lived components of one process.
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Metrics   *metrics.Metrics
	History   *history.Log
	Assembler *processor.Assembler
	Server    *server.Server
}

// New opens the record store and builds every component. The reasoning
// client is only created when an API key is configured.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	store, err := dataset.Open(cfg.RecordsPath)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	log.WithField("records", len(store.ListRecords())).WithField("path", cfg.RecordsPath).Info("call records loaded")

	m := metrics.New()
	hist := history.New(cfg.HistoryLimit)

	var reasoner processor.Reasoner
	if cfg.ReasoningEnabled() {
		client := llm.NewClient(LLMConfig(cfg),
			llm.WithLogger(log.WithComponent("llm")),
			llm.WithRetryHook(func(error, time.Duration) { m.ObserveRetry() }),
		)
		log.WithField("model", client.Model()).Info("reasoning backend enabled")
		reasoner = client
	} else {
		log.Warn("OPENROUTER_API_KEY not set, free-form queries use the local overview")
	}

	assembler := processor.NewAssembler(store, reasoner,
		processor.WithHistory(hist),
		processor.WithObserver(m),
		processor.WithLogger(log),
	)

	return &App{
		Config:    cfg,
		Log:       log,
		Metrics:   m,
		History:   hist,
		Assembler: assembler,
		Server:    server.New(assembler, m, log, cfg.AllowedOrigins),
	}, nil
}

// Handler returns the HTTP handler for the service.
func (a *App) Handler() http.Handler {
	return a.Server.Routes()
}

// LLMConfig maps service configuration onto the reasoning client settings.
func LLMConfig(cfg *config.Config) llm.Config {
	c := llm.DefaultConfig()
	c.APIKey = cfg.OpenRouterAPIKey
	if cfg.OpenRouterBaseURL != "" {
		c.BaseURL = cfg.OpenRouterBaseURL
	}
	if cfg.OpenRouterModel != "" {
		c.Model = cfg.OpenRouterModel
	}
	if cfg.SiteURL != "" {
		c.SiteURL = cfg.SiteURL
	}
	if cfg.AppTitle != "" {
		c.AppTitle = cfg.AppTitle
	}
	c.MinInterval = cfg.LLMMinInterval
	c.Timeout = cfg.LLMTimeout
	c.Retry.MaxAttempts = cfg.LLMMaxAttempts
	return c
}
