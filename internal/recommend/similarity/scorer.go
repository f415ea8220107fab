// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package similarity

import "fmt"

// Scorer names accepted by New.
const (
	NameJaccard = "jaccard"
	NameTFIDF   = "tfidf"
)

// Scorer computes a symmetric similarity in [0, 1] between two texts.
// Implementations are safe for concurrent use.
type Scorer interface {
	// Name returns the scorer identifier.
	Name() string

	// Similarity returns the similarity between a and b.
	Similarity(a, b string) float64
}

// New returns the scorer registered under name, prepared for corpus.
func New(name string, corpus []string, opts TFIDFOptions) (Scorer, error) {
	switch name {
	case NameJaccard, "":
		return NewJaccardScorer(corpus), nil
	case NameTFIDF:
		return NewTFIDFScorer(corpus, opts), nil
	default:
		return nil, fmt.Errorf("unknown similarity scorer %q", name)
	}
}

// ValidName reports whether name selects a known scorer.
func ValidName(name string) bool {
	return name == NameJaccard || name == NameTFIDF
}

var (
	_ Scorer = (*JaccardScorer)(nil)
	_ Scorer = (*TFIDFScorer)(nil)
)
