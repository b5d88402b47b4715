package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/text/language"

	"pricequote/internal/app"
	"pricequote/internal/config"
	"pricequote/internal/metrics"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		app.NewLogger("pricequote", config.Default().Log).Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	logger := app.NewLogger("pricequote", cfg.Log)

	providers, err := app.NewProviders(cfg, logger)
	if err != nil {
		logger.Error("Failed to build providers", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.NewMetrics(reg)
	}

	engine := app.NewEngine(cfg.Engine, providers, logger, m)
	logger.Info("Quote engine ready",
		"strategy", engine.Strategy().String(),
		"ttl", engine.TTL(),
		"providers", engine.Providers(),
		"coalesce", cfg.Engine.Coalesce,
	)

	a := &api{
		engine:         engine,
		logger:         logger.Named("api"),
		metrics:        m,
		gatherer:       reg,
		maxPairs:       cfg.Server.MaxPairs,
		locale:         language.AmericanEnglish,
		requestTimeout: time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      a.requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Shutdown incomplete", "err", err)
	}
	logger.Info("Server stopped")
}
