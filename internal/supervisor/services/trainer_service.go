// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/toolhub/internal/logging"
	"github.com/tomtom215/toolhub/internal/metrics"
	"github.com/tomtom215/toolhub/internal/recommend"
)

// Trainer is the part of recommend.Engine the trainer service drives.
type Trainer interface {
	Train(ctx context.Context) (recommend.TrainResult, error)
	Restore(ctx context.Context) (bool, error)
}

// TrainerConfig controls the training schedule.
type TrainerConfig struct {
	// Restore loads the latest persisted snapshot before anything else.
	Restore bool

	// TrainOnStartup trains once when the service starts. Skipped when a
	// snapshot was restored; the first tick refreshes it.
	TrainOnStartup bool

	// Interval between scheduled runs. Zero disables the schedule.
	Interval time.Duration

	// Timeout bounds each run.
	Timeout time.Duration
}

// TrainerService owns the model lifecycle: warm start from a snapshot,
// startup training and periodic retraining.
type TrainerService struct {
	engine Trainer
	config TrainerConfig
	logger zerolog.Logger

	// started guards startup work so a supervisor restart goes straight
	// to the schedule.
	started bool
}

// NewTrainerService creates the service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTrainerService(engine Trainer, cfg TrainerConfig, logger zerolog.Logger) *TrainerService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &TrainerService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "trainer").Logger(),
	}
}

// Serve implements suture.Service.
func (s *TrainerService) Serve(ctx context.Context) error {
	if !s.started {
		s.started = true
		s.startup(ctx)
	}

	if s.config.Interval <= 0 {
		s.logger.Info().Msg("Periodic training disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.config.Interval).Msg("Trainer running")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Run(ctx, "interval")
		}
	}
}

func (s *TrainerService) startup(ctx context.Context) {
	restored := false
	if s.config.Restore {
		var err error
		restored, err = s.engine.Restore(ctx)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Msg("Snapshot restore failed, training from scratch")
		case restored:
			s.logger.Info().Msg("Model restored from snapshot")
		}
	}

	if s.config.TrainOnStartup && !restored {
		s.Run(ctx, "startup")
	}
}

// Run performs one training run tagged with trigger and records it.
// A run already in progress is skipped.
func (s *TrainerService) Run(ctx context.Context, trigger string) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	logger := s.logger.With().
		Str("trigger", trigger).
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Logger()

	start := time.Now()
	result, err := s.engine.Train(ctx)
	elapsed := time.Since(start)
	metrics.RecordTraining(trigger, metrics.TrainOutcome(result, err), elapsed)

	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		logger.Debug().Msg("Training skipped, run in progress")
	case err != nil:
		logger.Error().Err(err).Dur("duration", elapsed).Msg("Training failed")
	case !result.Trained:
		logger.Info().Msg("Catalog empty, model left untrained")
	default:
		logger.Info().
			Int("products", result.ProductsIndexed).
			Int("vocabulary", result.VocabularySize).
			Int("matrix_users", result.MatrixUsers).
			Int64("model_version", result.ModelVersion).
			Dur("duration", elapsed).
			Msg("Training complete")
	}
}

// String names the service in supervisor logs.
func (s *TrainerService) String() string {
	return "trainer"
}
