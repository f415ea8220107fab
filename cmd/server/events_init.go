// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/toolhub/internal/config"
	"github.com/tomtom215/toolhub/internal/events"
	"github.com/tomtom215/toolhub/internal/logging"
	"github.com/tomtom215/toolhub/internal/supervisor/services"
)

// EventsComponents holds the event transport and the supervised router
// service.
type EventsComponents struct {
	Transport *events.Transport
	Service   *services.EventsService
}

// IsRunning reports whether the event router is consuming. Safe on nil.
func (c *EventsComponents) IsRunning() bool {
	if c == nil || c.Service == nil {
		return false
	}
	return c.Service.IsRunning()
}

// Close shuts the transport down. Safe on nil.
func (c *EventsComponents) Close() error {
	if c == nil || c.Transport == nil {
		return nil
	}
	return c.Transport.Close()
}

// initEvents opens the configured transport and returns a service that
// routes catalog and interaction events into engine. It returns nil when
// events are disabled.
func initEvents(ctx context.Context, cfg *config.Config, engine events.Engine) (*EventsComponents, error) {
	if !cfg.Events.Enabled {
		logging.Info().Msg("Event transport disabled")
		return nil, nil
	}

	adapter := logging.NewWatermillAdapter(logging.WithComponent("events"))
	transport, err := events.NewTransport(ctx, &cfg.Events, adapter)
	if err != nil {
		return nil, fmt.Errorf("open %s event transport: %w", cfg.Events.Transport, err)
	}

	handlers := events.NewHandlers(engine, cfg.Recommend.TrainingTimeout, cfg.Events.MatrixDebounce)
	svc := services.NewEventsService(func() (services.EventRouter, error) {
		router, err := events.NewRouter(&cfg.Events, transport.Subscriber, handlers, adapter)
		if err != nil {
			return nil, err
		}
		return router, nil
	})

	logging.Info().
		Str("transport", transport.Kind()).
		Str("catalog_topic", cfg.Events.CatalogTopic).
		Str("interaction_topic", cfg.Events.InteractionTopic).
		Msg("Event transport initialized")

	return &EventsComponents{Transport: transport, Service: svc}, nil
}
