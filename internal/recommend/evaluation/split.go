// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package evaluation

import (
	"math"
	"math/rand"
	"sort"
)

// Sample is one labeled document.
type Sample struct {
	ID    string
	Text  string
	Label string
}

// Split partitions samples into train and test sets. The test set holds
// ceil(len*fraction) samples, clamped so neither side is empty.
//
// The split is stratified by label when every label has at least two
// samples; otherwise it is a plain shuffle. Output order is deterministic
// for a given seed.
func Split(samples []Sample, fraction float64, seed int64) (train, test []Sample, stratified bool) {
	n := len(samples)
	if n < 2 {
		return append([]Sample(nil), samples...), nil, false
	}

	nTest := int(math.Ceil(float64(n) * fraction))
	nTest = max(1, min(nTest, n-1))

	//nolint:gosec // G404: math/rand is acceptable for a reproducible evaluation split
	rng := rand.New(rand.NewSource(seed))

	groups := groupByLabel(samples)
	if canStratify(groups) {
		train, test = stratifiedSplit(groups, nTest, rng)
		return train, test, true
	}

	order := rng.Perm(n)
	for i, idx := range order {
		if i < nTest {
			test = append(test, samples[idx])
		} else {
			train = append(train, samples[idx])
		}
	}
	return train, test, false
}

type labelGroup struct {
	label   string
	samples []Sample
}

// groupByLabel groups samples by label, labels sorted.
func groupByLabel(samples []Sample) []labelGroup {
	byLabel := make(map[string][]Sample)
	for _, s := range samples {
		byLabel[s.Label] = append(byLabel[s.Label], s)
	}

	groups := make([]labelGroup, 0, len(byLabel))
	for label, members := range byLabel {
		groups = append(groups, labelGroup{label: label, samples: members})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].label < groups[j].label })
	return groups
}

func canStratify(groups []labelGroup) bool {
	if len(groups) < 2 {
		return false
	}
	for _, g := range groups {
		if len(g.samples) < 2 {
			return false
		}
	}
	return true
}

// stratifiedSplit allocates nTest across labels proportionally to their
// size. Whole shares are assigned first; the remainder goes to the labels
// with the largest fractional share, ties by label. Every label keeps at
// least one training sample.
func stratifiedSplit(groups []labelGroup, nTest int, rng *rand.Rand) (train, test []Sample) {
	total := 0
	for _, g := range groups {
		total += len(g.samples)
	}

	type share struct {
		idx   int
		whole int
		frac  float64
	}
	shares := make([]share, len(groups))
	assigned := 0
	for i, g := range groups {
		exact := float64(len(g.samples)) * float64(nTest) / float64(total)
		whole := min(int(exact), len(g.samples)-1)
		shares[i] = share{idx: i, whole: whole, frac: exact - float64(whole)}
		assigned += whole
	}

	order := make([]share, len(shares))
	copy(order, shares)
	sort.SliceStable(order, func(i, j int) bool { return order[i].frac > order[j].frac })
	for _, s := range order {
		if assigned >= nTest {
			break
		}
		if shares[s.idx].whole < len(groups[s.idx].samples)-1 {
			shares[s.idx].whole++
			assigned++
		}
	}

	for i, g := range groups {
		perm := rng.Perm(len(g.samples))
		for j, idx := range perm {
			if j < shares[i].whole {
				test = append(test, g.samples[idx])
			} else {
				train = append(train, g.samples[idx])
			}
		}
	}
	return train, test
}
