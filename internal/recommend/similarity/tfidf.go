// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package similarity

import (
	"math"
	"sort"
)

// TFIDFOptions configures a Vectorizer.
type TFIDFOptions struct {
	// StopWords removes common English words before counting terms.
	StopWords bool

	// MaxFeatures keeps only the most frequent terms across the corpus.
	// Zero keeps every term.
	MaxFeatures int
}

// Vectorizer turns text into L2-normalized TF-IDF vectors.
//
// Term frequency is the raw count of a term in the document. Inverse
// document frequency is smoothed: idf(t) = ln((1+n)/(1+df(t))) + 1, so terms
// present in every document still carry a small positive weight.
//
// A Vectorizer is immutable after Fit and safe for concurrent use.
type Vectorizer struct {
	options TFIDFOptions
	idf     map[string]float64
	docs    int
}

// FitVectorizer learns the vocabulary and idf weights from corpus.
func FitVectorizer(corpus []string, opts TFIDFOptions) *Vectorizer {
	v := &Vectorizer{
		options: opts,
		idf:     make(map[string]float64),
		docs:    len(corpus),
	}

	docFreq := make(map[string]int)
	termFreq := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, term := range v.analyze(doc) {
			termFreq[term]++
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			docFreq[term]++
		}
	}

	vocabulary := make([]string, 0, len(docFreq))
	for term := range docFreq {
		vocabulary = append(vocabulary, term)
	}

	if opts.MaxFeatures > 0 && len(vocabulary) > opts.MaxFeatures {
		sort.Slice(vocabulary, func(i, j int) bool {
			if termFreq[vocabulary[i]] != termFreq[vocabulary[j]] {
				return termFreq[vocabulary[i]] > termFreq[vocabulary[j]]
			}
			return vocabulary[i] < vocabulary[j]
		})
		vocabulary = vocabulary[:opts.MaxFeatures]
	}

	n := float64(len(corpus))
	for _, term := range vocabulary {
		v.idf[term] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return v
}

// NewVectorizerFromIDF rebuilds a fitted vectorizer from persisted weights.
func NewVectorizerFromIDF(idf map[string]float64, docs int, opts TFIDFOptions) *Vectorizer {
	copied := make(map[string]float64, len(idf))
	for term, w := range idf {
		copied[term] = w
	}
	return &Vectorizer{options: opts, idf: copied, docs: docs}
}

// Transform returns the normalized TF-IDF vector of text.
// Terms outside the fitted vocabulary are ignored.
func (v *Vectorizer) Transform(text string) Vector {
	counts := make(map[string]float64)
	for _, term := range v.analyze(text) {
		if _, ok := v.idf[term]; ok {
			counts[term]++
		}
	}

	vec := make(Vector, len(counts))
	for term, tf := range counts {
		vec[term] = tf * v.idf[term]
	}

	norm := vec.Norm()
	if norm == 0 {
		return vec
	}
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}

// VocabularySize returns the number of terms in the fitted vocabulary.
func (v *Vectorizer) VocabularySize() int {
	return len(v.idf)
}

// Documents returns the number of documents the vectorizer was fitted on.
func (v *Vectorizer) Documents() int {
	return v.docs
}

// IDF returns a copy of the idf weight table.
func (v *Vectorizer) IDF() map[string]float64 {
	out := make(map[string]float64, len(v.idf))
	for term, w := range v.idf {
		out[term] = w
	}
	return out
}

// Options returns the options the vectorizer was built with.
func (v *Vectorizer) Options() TFIDFOptions {
	return v.options
}

func (v *Vectorizer) analyze(text string) []string {
	tokens := TokenizeWords(text)
	if !v.options.StopWords {
		return tokens
	}

	kept := tokens[:0]
	for _, t := range tokens {
		if !IsStopWord(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

// TFIDFScorer scores texts by cosine similarity of their TF-IDF vectors.
// Vectors of the corpus it was fitted on are cached.
type TFIDFScorer struct {
	vectorizer *Vectorizer
	vectors    map[string]Vector
}

// NewTFIDFScorer fits a vectorizer on corpus and caches each document's vector.
func NewTFIDFScorer(corpus []string, opts TFIDFOptions) *TFIDFScorer {
	return NewTFIDFScorerWith(FitVectorizer(corpus, opts), corpus)
}

// NewTFIDFScorerWith wraps an already fitted vectorizer, caching vectors for corpus.
func NewTFIDFScorerWith(v *Vectorizer, corpus []string) *TFIDFScorer {
	vectors := make(map[string]Vector, len(corpus))
	for _, doc := range corpus {
		if _, ok := vectors[doc]; !ok {
			vectors[doc] = v.Transform(doc)
		}
	}
	return &TFIDFScorer{vectorizer: v, vectors: vectors}
}

// Name returns the scorer identifier.
func (s *TFIDFScorer) Name() string {
	return NameTFIDF
}

// Similarity returns the cosine similarity of the TF-IDF vectors of a and b.
func (s *TFIDFScorer) Similarity(a, b string) float64 {
	// Vectors are unit length (or empty), so the dot product is the cosine.
	sim := s.vector(a).Dot(s.vector(b))
	if sim > 1 {
		return 1
	}
	return sim
}

// Vectorizer returns the underlying fitted vectorizer.
func (s *TFIDFScorer) Vectorizer() *Vectorizer {
	return s.vectorizer
}

func (s *TFIDFScorer) vector(text string) Vector {
	if vec, ok := s.vectors[text]; ok {
		return vec
	}
	return s.vectorizer.Transform(text)
}
