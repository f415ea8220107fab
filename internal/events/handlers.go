// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package events

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/toolhub/internal/logging"
	"github.com/tomtom215/toolhub/internal/metrics"
	"github.com/tomtom215/toolhub/internal/recommend"
)

// malformedKey is set on a message whose payload could not be decoded.
// The message is acknowledged without a retry.
const malformedKey = "toolhub_malformed"

// Engine is the part of recommend.Engine the event handlers drive.
type Engine interface {
	Train(ctx context.Context) (recommend.TrainResult, error)
	InvalidateMatrix()
	InvalidateUser(userID string)
}

// Handlers turns catalog and interaction events into engine calls.
type Handlers struct {
	engine       Engine
	trainTimeout time.Duration
	debounce     time.Duration

	// Unix nanos of the last matrix invalidation
	lastInvalidate atomic.Int64

	now func() time.Time
}

// NewHandlers creates the handlers. Training runs started by an event are
// bounded by trainTimeout; matrix invalidations are at least debounce apart.
func NewHandlers(engine Engine, trainTimeout, debounce time.Duration) *Handlers {
	return &Handlers{
		engine:       engine,
		trainTimeout: trainTimeout,
		debounce:     debounce,
		now:          time.Now,
	}
}

// CatalogChanged retrains the engine. A run already in progress is
// returned as an error so the retry middleware tries again after it ends.
func (h *Handlers) CatalogChanged(msg *message.Message) error {
	event, err := DecodeCatalogChanged(msg.Payload)
	if err != nil {
		markMalformed(msg, err)
		return nil
	}

	ctx := logging.ContextWithCorrelationID(msg.Context(), logging.GenerateCorrelationID())
	if h.trainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.trainTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := h.engine.Train(ctx)
	outcome := metrics.TrainOutcome(result, err)
	metrics.RecordTraining("event", outcome, time.Since(start))

	logger := logging.Ctx(ctx)
	if err != nil {
		if errors.Is(err, recommend.ErrTrainingInProgress) {
			logger.Debug().Str("event_id", event.EventID).Msg("Training busy, catalog change will be retried")
		}
		return err
	}

	logger.Info().
		Str("event_id", event.EventID).
		Str("reason", event.Reason).
		Int("changed_products", len(event.ProductIDs)).
		Bool("trained", result.Trained).
		Int("products_indexed", result.ProductsIndexed).
		Msg("Retrained after catalog change")
	return nil
}

// InteractionRecorded drops the user's cached response so their next
// request sees fresh seeds, and marks the interaction matrix stale.
func (h *Handlers) InteractionRecorded(msg *message.Message) error {
	event, err := DecodeInteractionRecorded(msg.Payload)
	if err != nil {
		markMalformed(msg, err)
		return nil
	}

	h.engine.InvalidateUser(event.UserID)

	now := h.now().UnixNano()
	last := h.lastInvalidate.Load()
	if now-last >= h.debounce.Nanoseconds() && h.lastInvalidate.CompareAndSwap(last, now) {
		h.engine.InvalidateMatrix()
	}

	logging.Ctx(msg.Context()).Debug().
		Str("user_id", event.UserID).
		Str("kind", event.Kind.String()).
		Str("product_id", event.ProductID).
		Msg("Interaction recorded")
	return nil
}

func markMalformed(msg *message.Message, err error) {
	msg.Metadata.Set(malformedKey, err.Error())
}
