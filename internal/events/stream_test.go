// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// fakeJetStream records stream provisioning calls.
type fakeJetStream struct {
	lookupErr error
	created   *jetstream.StreamConfig
	updated   *jetstream.StreamConfig
}

func (f *fakeJetStream) Stream(context.Context, string) (jetstream.Stream, error) {
	return nil, f.lookupErr
}

func (f *fakeJetStream) CreateStream(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	f.created = &cfg
	return nil, nil
}

func (f *fakeJetStream) UpdateStream(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	f.updated = &cfg
	return nil, nil
}

func TestEnsureStream(t *testing.T) {
	t.Parallel()

	subjects := []string{DefaultCatalogTopic, DefaultInteractionTopic}

	t.Run("creates missing stream", func(t *testing.T) {
		t.Parallel()
		js := &fakeJetStream{lookupErr: jetstream.ErrStreamNotFound}
		if _, err := EnsureStream(context.Background(), js, subjects); err != nil {
			t.Fatalf("EnsureStream() error = %v", err)
		}
		if js.created == nil || js.updated != nil {
			t.Fatalf("created=%v updated=%v, want create only", js.created, js.updated)
		}
		if js.created.Name != StreamName || len(js.created.Subjects) != 2 {
			t.Errorf("stream config = %+v", js.created)
		}
		if js.created.MaxAge != 24*time.Hour || js.created.Duplicates != 2*time.Minute {
			t.Errorf("retention = %v, duplicates window = %v", js.created.MaxAge, js.created.Duplicates)
		}
	})

	t.Run("updates existing stream", func(t *testing.T) {
		t.Parallel()
		js := &fakeJetStream{}
		if _, err := EnsureStream(context.Background(), js, subjects); err != nil {
			t.Fatalf("EnsureStream() error = %v", err)
		}
		if js.updated == nil || js.created != nil {
			t.Errorf("created=%v updated=%v, want update only", js.created, js.updated)
		}
	})

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()
		down := errors.New("nats: timeout")
		js := &fakeJetStream{lookupErr: down}
		if _, err := EnsureStream(context.Background(), js, subjects); !errors.Is(err, down) {
			t.Errorf("EnsureStream() error = %v, want wrapped %v", err, down)
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		t.Parallel()
		if _, err := EnsureStream(context.Background(), nil, subjects); err == nil {
			t.Error("EnsureStream(nil js) succeeded")
		}
		if _, err := EnsureStream(context.Background(), &fakeJetStream{}, nil); err == nil {
			t.Error("EnsureStream(no subjects) succeeded")
		}
	})
}
