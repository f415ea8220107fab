// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package evaluation

import (
	"sort"
)

// ClassMetrics are the scores of a single label.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Scores are support-weighted averages over every label. A ratio with a
// zero denominator counts as 0.
type Scores struct {
	Precision float64        `json:"precision"`
	Recall    float64        `json:"recall"`
	F1        float64        `json:"f1"`
	Classes   []ClassMetrics `json:"classes"`
}

// WeightedScores compares predicted labels with the true ones. Both slices
// must have the same length.
func WeightedScores(truth, predicted []string) Scores {
	type counts struct{ tp, fp, fn, support int }
	byLabel := make(map[string]*counts)
	get := func(label string) *counts {
		c, ok := byLabel[label]
		if !ok {
			c = &counts{}
			byLabel[label] = c
		}
		return c
	}

	for i := range truth {
		t, p := truth[i], predicted[i]
		get(t).support++
		if t == p {
			get(t).tp++
			continue
		}
		get(t).fn++
		get(p).fp++
	}

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var s Scores
	totalSupport := 0
	for _, label := range labels {
		c := byLabel[label]
		precision := ratio(c.tp, c.tp+c.fp)
		recall := ratio(c.tp, c.tp+c.fn)
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		s.Classes = append(s.Classes, ClassMetrics{
			Label:     label,
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   c.support,
		})
		s.Precision += precision * float64(c.support)
		s.Recall += recall * float64(c.support)
		s.F1 += f1 * float64(c.support)
		totalSupport += c.support
	}

	if totalSupport > 0 {
		s.Precision /= float64(totalSupport)
		s.Recall /= float64(totalSupport)
		s.F1 /= float64(totalSupport)
	}
	return s
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// ConfusionMatrix counts (true, predicted) pairs. Rows and columns follow
// labels; pairs involving a label outside labels are ignored.
func ConfusionMatrix(truth, predicted, labels []string) [][]int {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	m := make([][]int, len(labels))
	for i := range m {
		m[i] = make([]int, len(labels))
	}
	for i := range truth {
		ti, okT := index[truth[i]]
		pi, okP := index[predicted[i]]
		if okT && okP {
			m[ti][pi]++
		}
	}
	return m
}
