// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package events

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/toolhub/internal/config"
	"github.com/tomtom215/toolhub/internal/logging"
	"github.com/tomtom215/toolhub/internal/metrics"
)

const retryMaxInterval = 10 * time.Second

// Router consumes catalog and interaction events and drives the engine.
//
// Each handler is wrapped, outer to inner, by:
//  1. outcome: records the result and acknowledges messages that still
//     fail after all retries, so a poison message cannot loop forever
//  2. Recoverer: converts handler panics to errors
//  3. Retry: exponential backoff for transient failures
type Router struct {
	router  *message.Router
	logger  watermill.LoggerAdapter
	running atomic.Bool
}

// NewRouter wires the handlers to the catalog and interaction topics of sub.
func NewRouter(cfg *config.EventsConfig, sub message.Subscriber, handlers *Handlers, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}
	wmRouter.AddMiddleware(middleware.CorrelationID)

	r := &Router{router: wmRouter, logger: logger}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryCount,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     retryMaxInterval,
		Multiplier:      2.0,
		Logger:          logger,
	}

	routes := []struct {
		name    string
		topic   string
		handler message.NoPublishHandlerFunc
	}{
		{"catalog_changed", cfg.CatalogTopic, handlers.CatalogChanged},
		{"interaction_recorded", cfg.InteractionTopic, handlers.InteractionRecorded},
	}
	for _, route := range routes {
		h := wmRouter.AddConsumerHandler(route.name, route.topic, sub, route.handler)
		h.AddMiddleware(r.outcome(route.topic), middleware.Recoverer, retry.Middleware)
	}

	return r, nil
}

// outcome records each message's result and swallows the final error.
// Events are retrain hints; a dropped one is covered by periodic training.
// Handlers log through logging.Ctx and get the topic and message UUID.
func (r *Router) outcome(topic string) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			logger := logging.LoggerFromContext(msg.Context()).With().
				Str("topic", topic).
				Str("message_uuid", msg.UUID).
				Logger()
			msg.SetContext(logging.ContextWithLogger(msg.Context(), logger))

			produced, err := h(msg)

			if reason := msg.Metadata.Get(malformedKey); reason != "" {
				metrics.RecordEventProcessed(topic, ErrMalformedEvent)
				r.logger.Error("Dropping malformed event", ErrMalformedEvent, watermill.LogFields{
					"topic":        topic,
					"message_uuid": msg.UUID,
					"reason":       reason,
				})
				return produced, nil
			}

			metrics.RecordEventProcessed(topic, err)
			if err != nil {
				r.logger.Error("Dropping event after retries", err, watermill.LogFields{
					"topic":        topic,
					"message_uuid": msg.UUID,
				})
				return produced, nil
			}
			return produced, nil
		}
	}
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel that closes once every handler is subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether Run is active.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// Close stops the router, waiting up to CloseTimeout for in-flight messages.
func (r *Router) Close() error {
	return r.router.Close()
}
