// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package algorithms

import (
	"context"
	"reflect"
	"testing"

	"github.com/tomtom215/toolhub/internal/models"
	"github.com/tomtom215/toolhub/internal/recommend/similarity"
)

func toolProducts() []models.Product {
	return []models.Product{
		{ID: "A", Name: "drill power tool"},
		{ID: "B", Name: "hand saw tool"},
		{ID: "C", Name: "drill bit set"},
	}
}

func TestBuildFeatureSpace(t *testing.T) {
	t.Parallel()

	fs, err := BuildFeatureSpace(context.Background(), toolProducts(), similarity.TFIDFOptions{})
	if err != nil {
		t.Fatalf("BuildFeatureSpace() error = %v", err)
	}
	if fs.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", fs.Len())
	}

	// k=10 is clamped to the two other products; equal distances tie-break by key.
	neighbors := fs.Neighbors("A", 10)
	if got := neighborKeys(neighbors); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Errorf("Neighbors(A) = %v, want [B C]", got)
	}

	if got := fs.Neighbors("missing", 2); len(got) != 0 {
		t.Errorf("Neighbors(missing) = %v, want empty", got)
	}

	sim, ok := fs.Similarity("B", "C")
	if !ok || sim != 0 {
		t.Errorf("Similarity(B, C) = %v, %v; want 0, true", sim, ok)
	}
}

func TestFeatureSpaceNearestToText(t *testing.T) {
	t.Parallel()

	fs, err := BuildFeatureSpace(context.Background(), toolProducts(), similarity.TFIDFOptions{})
	if err != nil {
		t.Fatalf("BuildFeatureSpace() error = %v", err)
	}

	best, ok := fs.NearestToText("Bit")
	if !ok || best.Key != "C" {
		t.Errorf("NearestToText(Bit) = %+v, %v; want C", best, ok)
	}
	if best.Distance <= 0 || best.Distance >= 1 {
		t.Errorf("distance = %v, want in (0,1)", best.Distance)
	}

	if _, ok := fs.NearestToText("screwdriver"); ok {
		t.Error("NearestToText with no known terms should fail")
	}
}

func TestFeatureSpaceEmpty(t *testing.T) {
	t.Parallel()

	fs, err := BuildFeatureSpace(context.Background(), nil, similarity.TFIDFOptions{})
	if err != nil {
		t.Fatalf("BuildFeatureSpace() error = %v", err)
	}
	if !fs.IsEmpty() {
		t.Error("expected empty feature space")
	}
	if _, ok := fs.NearestToText("drill"); ok {
		t.Error("NearestToText on empty space should fail")
	}

	var nilSpace *FeatureSpace
	if !nilSpace.IsEmpty() || nilSpace.Has("A") || len(nilSpace.Neighbors("A", 1)) != 0 {
		t.Error("nil feature space should behave as empty")
	}
}

func TestFeatureSpaceStateRoundTrip(t *testing.T) {
	t.Parallel()

	fs, err := BuildFeatureSpace(context.Background(), toolProducts(), similarity.TFIDFOptions{})
	if err != nil {
		t.Fatalf("BuildFeatureSpace() error = %v", err)
	}

	restored := FeatureSpaceFromState(fs.State())
	if restored.Len() != fs.Len() {
		t.Fatalf("restored Len() = %d, want %d", restored.Len(), fs.Len())
	}
	if !reflect.DeepEqual(neighborKeys(restored.Neighbors("C", 2)), neighborKeys(fs.Neighbors("C", 2))) {
		t.Error("restored neighbors differ from original")
	}
	if best, ok := restored.NearestToText("saw"); !ok || best.Key != "B" {
		t.Errorf("restored NearestToText(saw) = %+v, %v; want B", best, ok)
	}
}

func TestBuildFeatureSpaceCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := BuildFeatureSpace(ctx, toolProducts(), similarity.TFIDFOptions{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestVectorIndex_Nearest(t *testing.T) {
	t.Parallel()

	ix := NewVectorIndex(map[string]similarity.Vector{
		"x": {"a": 1},
		"y": {"a": 1, "b": 1},
		"z": {"c": 1},
	})
	if ix.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ix.Len())
	}

	got := ix.Nearest(similarity.Vector{"a": 1}, 10)
	if len(got) != 3 {
		t.Fatalf("Nearest() returned %d, want 3 (k clamped)", len(got))
	}
	want := []string{"x", "y", "z"}
	for i, key := range want {
		if got[i].Key != key {
			t.Errorf("Nearest()[%d] = %s, want %s", i, got[i].Key, key)
		}
	}
}
