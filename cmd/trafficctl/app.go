package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/event-traffic-controller/internal/adapter/backend"
	"github.com/couchcryptid/event-traffic-controller/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/event-traffic-controller/internal/adapter/kafka"
	"github.com/couchcryptid/event-traffic-controller/internal/config"
	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	"github.com/couchcryptid/event-traffic-controller/internal/observability"
	"github.com/couchcryptid/event-traffic-controller/internal/session"
)

// app holds the process-wide collaborators shared by every command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	client    *backend.Client
	baselines domain.BaselineSource
	writer    *kafkaadapter.Writer
}

// newApp loads configuration and wires the backend client, baseline cache and
// optional publisher. newLogger picks where logs go.
func newApp(newLogger func(*config.Config) *slog.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return nil, err
	}

	logger := newLogger(cfg)
	metrics := observability.NewMetrics()

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, metrics, logger)
	a := &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		client:    client,
		baselines: client,
	}

	if cfg.BaselineCacheSize > 0 {
		a.baselines = backend.NewCachedBaselines(client, cfg.BaselineCacheSize, metrics)
		logger.Info("baseline cache enabled", "size", cfg.BaselineCacheSize)
	}

	if cfg.PublishEnabled {
		a.writer = kafkaadapter.NewWriter(cfg, logger)
		logger.Info("simulation publishing enabled", "topic", cfg.KafkaSimulationTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("simulation publishing disabled")
	}

	logger.Info("backend configured", "url", cfg.BackendURL, "timeout", cfg.BackendTimeout)
	return a, nil
}

func (a *app) gateways() session.Gateways {
	gw := session.Gateways{
		Extraction: a.client,
		Simulation: a.client,
		Baselines:  a.baselines,
	}
	if a.writer != nil {
		gw.Publisher = a.writer
	}
	return gw
}

func (a *app) close() {
	if a.writer == nil {
		return
	}
	if err := a.writer.Close(); err != nil {
		a.logger.Error("kafka writer close error", "error", err)
	}
}

// runOpsServer serves health, readiness, metrics and, when status is set,
// session state until ctx is done, then drains within the shutdown timeout.
func (a *app) runOpsServer(ctx context.Context, status httpadapter.StatusFunc) <-chan struct{} {
	srv := httpadapter.NewServer(a.cfg.HTTPAddr, a.client, status, a.logger)
	done := make(chan struct{})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		defer close(done)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return done
}
