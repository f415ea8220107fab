// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/toolhub/internal/models"
)

// Default topic names. Deployments override them through EventsConfig.
const (
	DefaultCatalogTopic     = "catalog.changed"
	DefaultInteractionTopic = "interaction.recorded"
)

// ErrMalformedEvent marks a payload that can never be processed. Handlers
// drop such messages instead of retrying them.
var ErrMalformedEvent = errors.New("malformed event")

// CatalogChanged announces that products or categories were created,
// updated or removed. Any catalog change retrains the content model.
type CatalogChanged struct {
	EventID    string    `json:"event_id"`
	ProductIDs []string  `json:"product_ids,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Validate checks the required fields.
func (e *CatalogChanged) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: event_id is required", ErrMalformedEvent)
	}
	return nil
}

// InteractionRecorded announces one behavioral fact written by the
// storefront (search, view, cart addition or completed order line).
type InteractionRecorded struct {
	EventID    string            `json:"event_id"`
	UserID     string            `json:"user_id"`
	Kind       models.SourceKind `json:"kind"`
	ProductID  string            `json:"product_id,omitempty"`
	Query      string            `json:"query,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Validate checks the required fields.
func (e *InteractionRecorded) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: event_id is required", ErrMalformedEvent)
	case e.UserID == "":
		return fmt.Errorf("%w: user_id is required", ErrMalformedEvent)
	case e.Kind != models.SourceSearchText && e.ProductID == "":
		return fmt.Errorf("%w: product_id is required for %s", ErrMalformedEvent, e.Kind)
	}
	return nil
}

type validatable interface {
	Validate() error
}

// NewMessage encodes an event as a Watermill message. The message UUID is
// the event id so JetStream can deduplicate redelivered publishes.
func NewMessage(event validatable) (*message.Message, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	var id string
	switch e := event.(type) {
	case *CatalogChanged:
		id = e.EventID
	case *InteractionRecorded:
		id = e.EventID
	}
	if id == "" {
		id = uuid.NewString()
	}

	msg := message.NewMessage(id, data)
	msg.Metadata.Set("content_type", "application/json")
	return msg, nil
}

// NewCatalogChanged builds a catalog change event with a fresh id.
func NewCatalogChanged(reason string, productIDs ...string) *CatalogChanged {
	return &CatalogChanged{
		EventID:    uuid.NewString(),
		ProductIDs: productIDs,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}

// NewInteractionRecorded builds an interaction event with a fresh id.
func NewInteractionRecorded(userID string, kind models.SourceKind, productID string) *InteractionRecorded {
	return &InteractionRecorded{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Kind:       kind,
		ProductID:  productID,
		OccurredAt: time.Now().UTC(),
	}
}

// decode unmarshals and validates a payload. Every failure wraps
// ErrMalformedEvent.
func decode[T any, PT interface {
	*T
	validatable
}](payload []byte) (*T, error) {
	var event T
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := PT(&event).Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}

// DecodeCatalogChanged parses a catalog.changed payload.
func DecodeCatalogChanged(payload []byte) (*CatalogChanged, error) {
	return decode[CatalogChanged](payload)
}

// DecodeInteractionRecorded parses an interaction.recorded payload.
func DecodeInteractionRecorded(payload []byte) (*InteractionRecorded, error) {
	return decode[InteractionRecorded](payload)
}
