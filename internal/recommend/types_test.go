// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package recommend

import (
	"testing"

	"github.com/tomtom215/toolhub/internal/models"
)

func TestSeedSet_Add(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		adds       []Seed
		wantWeight map[string]float64
	}{
		{
			name:       "keeps maximum weight",
			adds:       []Seed{{"A", 1.0, models.SourceSearchMatch}, {"A", 2.0, models.SourceCartAdd}, {"A", 1.5, models.SourceProductView}},
			wantWeight: map[string]float64{"A": 2.0},
		},
		{
			name:       "ignores non-positive weights",
			adds:       []Seed{{"A", 0, models.SourceSearchText}, {"B", -1, models.SourceSearchText}},
			wantWeight: map[string]float64{},
		},
		{
			name:       "ignores empty id",
			adds:       []Seed{{"", 2.0, models.SourceCartAdd}},
			wantWeight: map[string]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			set := SeedSet{}
			for _, s := range tt.adds {
				set.Add(s.ProductID, s.Weight, s.Source)
			}
			if len(set) != len(tt.wantWeight) {
				t.Fatalf("len = %d, want %d", len(set), len(tt.wantWeight))
			}
			for id, w := range tt.wantWeight {
				if set[id].Weight != w {
					t.Errorf("weight[%s] = %v, want %v", id, set[id].Weight, w)
				}
			}
		})
	}
}

func TestSeedSet_Sorted(t *testing.T) {
	t.Parallel()

	set := SeedSet{}
	set.Add("B", 1.5, models.SourceProductView)
	set.Add("C", 2.0, models.SourceCartAdd)
	set.Add("A", 1.5, models.SourceProductView)

	sorted := set.Sorted()
	want := []string{"C", "A", "B"}
	for i, id := range want {
		if sorted[i].ProductID != id {
			t.Errorf("Sorted()[%d] = %s, want %s", i, sorted[i].ProductID, id)
		}
	}
}

func TestAllTiers(t *testing.T) {
	t.Parallel()

	seen := make(map[Tier]bool)
	for _, tier := range AllTiers() {
		if seen[tier] {
			t.Errorf("duplicate tier %q", tier)
		}
		seen[tier] = true
	}
	for _, tier := range []Tier{TierHybrid, TierContent, TierColdStart, TierAnonymous, TierSimilar, TierCategory, TierNewest, TierEmpty} {
		if !seen[tier] {
			t.Errorf("AllTiers() missing %q", tier)
		}
	}
}
