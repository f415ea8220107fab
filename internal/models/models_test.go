// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestParseSourceKind(t *testing.T) {
	t.Parallel()

	for _, kind := range AllSourceKinds() {
		got, ok := ParseSourceKind(kind.String())
		if !ok || got != kind {
			t.Errorf("ParseSourceKind(%q) = %v, %v; want %v", kind.String(), got, ok, kind)
		}
	}

	if _, ok := ParseSourceKind("wishlist"); ok {
		t.Error("ParseSourceKind(wishlist) succeeded")
	}
	if got := SourceKind(99).String(); got != "unknown" {
		t.Errorf("SourceKind(99).String() = %q, want unknown", got)
	}
}

func TestInteractionEvent_KindAsText(t *testing.T) {
	t.Parallel()

	event := InteractionEvent{UserID: "alice", ProductID: "p1", Kind: SourceOrderComplete}
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded InteractionEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", data, err)
	}
	if decoded.Kind != SourceOrderComplete {
		t.Errorf("Kind = %v, want order_complete (payload %s)", decoded.Kind, data)
	}

	if err := json.Unmarshal([]byte(`{"user_id":"a","kind":"wishlist"}`), &decoded); err == nil {
		t.Error("Unmarshal accepted unknown kind")
	}
}

func TestProduct_Text(t *testing.T) {
	t.Parallel()

	p := Product{
		Name:          "Cordless Drill",
		Description:   "Compact driver",
		Specification: "18V",
		Label:         LabelHot,
	}
	if got, want := p.LexicalText(), "Cordless Drill Compact driver"; got != want {
		t.Errorf("LexicalText() = %q, want %q", got, want)
	}
	if got, want := p.FeatureText(), "Cordless Drill Compact driver 18V Hot"; got != want {
		t.Errorf("FeatureText() = %q, want %q", got, want)
	}
	if got := NormalizeName("  Cordless DRILL "); got != "cordless drill" {
		t.Errorf("NormalizeName() = %q", got)
	}
}

func TestProduct_NewerThan(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		a, b Product
		want bool
	}{
		{"newer wins", Product{ID: "b", CreatedAt: base.Add(time.Hour)}, Product{ID: "a", CreatedAt: base}, true},
		{"older loses", Product{ID: "a", CreatedAt: base}, Product{ID: "b", CreatedAt: base.Add(time.Hour)}, false},
		{"same instant lower id first", Product{ID: "a", CreatedAt: base}, Product{ID: "b", CreatedAt: base}, true},
		{"same instant higher id second", Product{ID: "b", CreatedAt: base}, Product{ID: "a", CreatedAt: base}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.NewerThan(&tt.b); got != tt.want {
				t.Errorf("NewerThan() = %v, want %v", got, tt.want)
			}
		})
	}
}
