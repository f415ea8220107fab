// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package events

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/toolhub/internal/models"
)

func TestInteractionRecorded_Validate(t *testing.T) {
	t.Parallel()

	valid := func() InteractionRecorded {
		return InteractionRecorded{
			EventID:    "e1",
			UserID:     "alice",
			Kind:       models.SourceCartAdd,
			ProductID:  "p1",
			OccurredAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	tests := []struct {
		name    string
		mutate  func(e *InteractionRecorded)
		wantErr bool
	}{
		{"valid", func(*InteractionRecorded) {}, false},
		{"free text search needs no product", func(e *InteractionRecorded) {
			e.Kind = models.SourceSearchText
			e.ProductID = ""
			e.Query = "cordless drill"
		}, false},
		{"missing event id", func(e *InteractionRecorded) { e.EventID = "" }, true},
		{"missing user", func(e *InteractionRecorded) { e.UserID = "" }, true},
		{"view without product", func(e *InteractionRecorded) {
			e.Kind = models.SourceProductView
			e.ProductID = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := valid()
			tt.mutate(&e)
			err := e.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedEvent) {
				t.Errorf("error %v does not wrap ErrMalformedEvent", err)
			}
		})
	}
}

func TestNewMessage(t *testing.T) {
	t.Parallel()

	event := NewInteractionRecorded("bob", models.SourceOrderComplete, "p-saw-blades")
	msg, err := NewMessage(event)
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}
	if msg.UUID != event.EventID {
		t.Errorf("UUID = %q, want event id %q", msg.UUID, event.EventID)
	}
	if !strings.Contains(string(msg.Payload), `"kind":"order_complete"`) {
		t.Errorf("payload %s does not carry the kind name", msg.Payload)
	}

	decoded, err := DecodeInteractionRecorded(msg.Payload)
	if err != nil {
		t.Fatalf("DecodeInteractionRecorded() error = %v", err)
	}
	if decoded.Kind != models.SourceOrderComplete || decoded.ProductID != "p-saw-blades" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestNewMessage_RejectsInvalid(t *testing.T) {
	t.Parallel()

	if _, err := NewMessage(&CatalogChanged{}); !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("NewMessage(empty) error = %v, want ErrMalformedEvent", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "retrain please"},
		{"unknown kind", `{"event_id":"e1","user_id":"u","kind":"wishlist","product_id":"p1"}`},
		{"missing user", `{"event_id":"e1","kind":"cart_add","product_id":"p1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeInteractionRecorded([]byte(tt.payload)); !errors.Is(err, ErrMalformedEvent) {
				t.Errorf("error = %v, want ErrMalformedEvent", err)
			}
		})
	}

	if _, err := DecodeCatalogChanged([]byte(`{"reason":"import"}`)); !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("catalog without id: error = %v, want ErrMalformedEvent", err)
	}
}
