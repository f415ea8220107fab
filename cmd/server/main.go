// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomtom215/toolhub/internal/api"
	"github.com/tomtom215/toolhub/internal/config"
	"github.com/tomtom215/toolhub/internal/database"
	"github.com/tomtom215/toolhub/internal/logging"
	"github.com/tomtom215/toolhub/internal/middleware"
	"github.com/tomtom215/toolhub/internal/supervisor"
	"github.com/tomtom215/toolhub/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Err(err).Msg("Toolhub exited with error")
		os.Exit(1)
	}
}

//nolint:gocyclo // sequential component setup
func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("recommend_enabled", cfg.Recommend.Enabled).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("Starting Toolhub")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows every origin in production; set CORS_ORIGINS")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedDemo {
		if err := db.SeedDemoData(ctx); err != nil {
			return fmt.Errorf("seed demo catalog: %w", err)
		}
		logging.Info().Msg("Demo catalog seeded")
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})

	monitor := middleware.NewLatencyMonitor(0, 0)
	health := api.HealthDeps{DB: db, Monitor: monitor}
	var recommendHandler *api.RecommendHandler

	if cfg.Recommend.Enabled {
		rec, err := initRecommend(cfg, db, prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logging.Err(err).Msg("Error closing snapshot store")
			}
		}()

		evt, err := initEvents(ctx, cfg, rec.Engine)
		if err != nil {
			return err
		}
		defer func() {
			if err := evt.Close(); err != nil {
				logging.Err(err).Msg("Error closing event transport")
			}
		}()
		if evt != nil {
			tree.AddEventsService(evt.Service)
			health.EventsActive = evt.IsRunning
		}

		tree.AddModelService(services.NewTrainerService(rec.Engine, services.TrainerConfig{
			Restore:        cfg.Snapshot.Enabled,
			TrainOnStartup: cfg.Recommend.TrainOnStartup,
			Interval:       cfg.Recommend.TrainInterval,
			Timeout:        cfg.Recommend.TrainingTimeout,
		}, logging.WithComponent("trainer")))

		health.Engine = rec.Engine
		health.BreakerState = rec.Breaker.State
		recommendHandler = api.NewRecommendHandler(rec.Engine, cfg.Recommend.TrainingTimeout)
	}

	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security))
	router := api.NewRouter(recommendHandler, api.NewHealthHandler(health), mw, monitor)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Handler(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
		treeErr = <-errCh
	case treeErr = <-errCh:
		cancel()
	}

	var serveErr error
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		serveErr = fmt.Errorf("supervisor tree: %w", treeErr)
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Toolhub stopped")
	return serveErr
}
