package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callcenter-insights-go/internal/app"
	"callcenter-insights-go/internal/config"
	"callcenter-insights-go/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Fatal("failed to load configuration")
	}

	log := logger.NewWithOutput(os.Stdout, cfg.Environment, cfg.LogLevel)
	log.WithField("service", "callcenter-insights").
		WithField("port", cfg.Port).
		WithField("allowed_origins", cfg.AllowedOrigins).
		Info("starting service")

	a, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise application")
	}

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     a.Handler(),
		ReadTimeout: 15 * time.Second,
		// streamed answers stay open for the whole reasoning timeout
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}
