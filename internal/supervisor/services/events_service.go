// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

var errRouterStopped = errors.New("event router stopped unexpectedly")

// EventRouter is the lifecycle of events.Router.
type EventRouter interface {
	Run(ctx context.Context) error
}

// RouterFactory builds a fresh router. A Watermill router cannot be run
// twice, so every restart gets a new one.
type RouterFactory func() (EventRouter, error)

// EventsService runs the event router under suture.
type EventsService struct {
	newRouter RouterFactory
	running   atomic.Bool
}

// NewEventsService creates the service.
func NewEventsService(factory RouterFactory) *EventsService {
	return &EventsService{newRouter: factory}
}

// Serve implements suture.Service.
func (s *EventsService) Serve(ctx context.Context) error {
	router, err := s.newRouter()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}

	s.running.Store(true)
	defer s.running.Store(false)

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	// The router stopped on its own; let the supervisor restart it.
	return errRouterStopped
}

// IsRunning reports whether a router is active. Used by the readiness probe.
func (s *EventsService) IsRunning() bool {
	return s.running.Load()
}

// String names the service in supervisor logs.
func (s *EventsService) String() string {
	return "event-router"
}
