// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package recommend

import (
	"sort"
)

// scoredProduct is a candidate with its fused score.
type scoredProduct struct {
	id    string
	score float64
}

// candidatePool is the set of products the ranker scores.
type candidatePool struct {
	ids []string

	// collaborative is false when the pool fell back to the full catalog.
	collaborative bool

	// popularity is true when the user index had too few users and the
	// popularity ranking stood in for neighbor recommendations.
	popularity bool
}

// buildCandidatePool unions the user-based neighbor recommendations with
// the item neighbors of every seed. When that yields nothing the whole
// catalog is used. Exclusions and products outside the catalog are removed
// in both cases. Seeds that reach the pool are scored like any other
// candidate.
func buildCandidatePool(snap *model, userID string, seeds []Seed, excluded map[string]struct{}, k, topN int) candidatePool {
	eligible := func(id string) bool {
		if _, ok := snap.product(id); !ok {
			return false
		}
		_, isExcluded := excluded[id]
		return !isExcluded
	}

	pool := candidatePool{}
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, dup := seen[id]; dup || !eligible(id) {
			return
		}
		seen[id] = struct{}{}
		pool.ids = append(pool.ids, id)
	}

	collab := snap.users.Recommend(userID, k, topN*2)
	pool.popularity = collab.Popularity
	for _, id := range collab.ProductIDs {
		add(id)
	}
	for _, s := range seeds {
		for _, nb := range snap.items.Query(s.ProductID, k) {
			add(nb.Key)
		}
	}

	if len(pool.ids) > 0 {
		pool.collaborative = true
		sort.Strings(pool.ids)
		return pool
	}

	for i := range snap.products {
		add(snap.products[i].ID)
	}
	return pool
}

// scoreCandidates scores each candidate as the best evidence over all
// seeds: max over seeds of weight x max(content, item-item cosine).
// Candidates without evidence are dropped and left to recency padding.
func scoreCandidates(snap *model, seeds []Seed, candidates []string) []scoredProduct {
	scored := make([]scoredProduct, 0, len(candidates))
	for _, cand := range candidates {
		var best float64
		for _, s := range seeds {
			sim := max(snap.contentSimilarity(s.ProductID, cand), snap.itemSimilarity(s.ProductID, cand))
			if score := s.Weight * sim; score > best {
				best = score
			}
		}
		if best > 0 {
			scored = append(scored, scoredProduct{id: cand, score: best})
		}
	}
	return scored
}

// rankScored sorts by score descending with the configured tie-break.
func rankScored(snap *model, scored []scoredProduct, tieBreak TieBreak) []string {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if tieBreak == TieBreakRecency {
			pi, _ := snap.product(scored[i].id)
			pj, _ := snap.product(scored[j].id)
			return pi.NewerThan(pj)
		}
		return scored[i].id < scored[j].id
	})

	ids := make([]string, len(scored))
	for i, s := range scored {
		ids[i] = s.id
	}
	return ids
}

// padNewest truncates ids to topN and fills the remainder with the newest
// catalog products that are neither chosen nor excluded. It returns the
// final list and the number of padded products.
func padNewest(snap *model, ids []string, excluded map[string]struct{}, topN int) ([]string, int) {
	if len(ids) > topN {
		ids = ids[:topN]
	}
	if len(ids) == topN {
		return ids, 0
	}

	skip := make(map[string]struct{}, len(excluded)+len(ids))
	for id := range excluded {
		skip[id] = struct{}{}
	}
	for _, id := range ids {
		skip[id] = struct{}{}
	}

	padding := snap.newest(topN-len(ids), skip)
	return append(ids, padding...), len(padding)
}

// toSet converts ids to a set.
func toSet(ids ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range ids {
		for _, id := range list {
			set[id] = struct{}{}
		}
	}
	return set
}
