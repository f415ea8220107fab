// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package similarity

// Jaccard returns the Jaccard index of the whitespace token sets of a and b.
// Two texts without any tokens have similarity 0.
func Jaccard(a, b string) float64 {
	return JaccardSets(TokenSet(a), TokenSet(b))
}

// JaccardSets computes |a ∩ b| / |a ∪ b| for precomputed token sets.
func JaccardSets(a, b map[string]struct{}) float64 {
	small, large := a, b
	if len(large) < len(small) {
		small, large = large, small
	}

	intersection := 0
	for t := range small {
		if _, ok := large[t]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// JaccardScorer scores texts by Jaccard index over whitespace tokens.
// Token sets of the corpus it was built with are cached.
type JaccardScorer struct {
	sets map[string]map[string]struct{}
}

// NewJaccardScorer creates a Jaccard scorer with token sets precomputed for corpus.
func NewJaccardScorer(corpus []string) *JaccardScorer {
	sets := make(map[string]map[string]struct{}, len(corpus))
	for _, doc := range corpus {
		if _, ok := sets[doc]; !ok {
			sets[doc] = TokenSet(doc)
		}
	}
	return &JaccardScorer{sets: sets}
}

// Name returns the scorer identifier.
func (j *JaccardScorer) Name() string {
	return NameJaccard
}

// Similarity returns the Jaccard index of a and b.
func (j *JaccardScorer) Similarity(a, b string) float64 {
	return JaccardSets(j.tokenSet(a), j.tokenSet(b))
}

func (j *JaccardScorer) tokenSet(text string) map[string]struct{} {
	if set, ok := j.sets[text]; ok {
		return set
	}
	return TokenSet(text)
}
