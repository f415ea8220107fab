// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tomtom215/toolhub/internal/models"
	"github.com/tomtom215/toolhub/internal/recommend/algorithms"
	"github.com/tomtom215/toolhub/internal/recommend/similarity"
)

// MinProducts is the smallest catalog that can be evaluated.
const MinProducts = 4

// ErrTooFewProducts is returned for catalogs smaller than MinProducts.
var ErrTooFewProducts = errors.New("not enough products to evaluate")

// Options configures an evaluation run.
type Options struct {
	// TestFraction is the share of samples held out. Default: 0.25.
	TestFraction float64 `json:"test_fraction"`

	// Seed makes the split reproducible. Default: 42.
	Seed int64 `json:"seed"`

	// K is the number of neighbors voting on a label. Default: 5.
	K int `json:"k"`

	// MaxFeatures caps the TF-IDF vocabulary. Default: 2000.
	MaxFeatures int `json:"max_features"`

	// StopWords removes English stop words. Default: true.
	StopWords bool `json:"stop_words"`
}

// DefaultOptions returns the standard evaluation settings.
func DefaultOptions() Options {
	return Options{
		TestFraction: 0.25,
		Seed:         42,
		K:            5,
		MaxFeatures:  2000,
		StopWords:    true,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.TestFraction <= 0 || o.TestFraction >= 1 {
		return fmt.Errorf("test fraction must be in (0, 1), got %f", o.TestFraction)
	}
	if o.K < 1 {
		return fmt.Errorf("k must be positive, got %d", o.K)
	}
	if o.MaxFeatures < 0 {
		return fmt.Errorf("max features must be non-negative, got %d", o.MaxFeatures)
	}
	return nil
}

// Report is the outcome of an evaluation run.
type Report struct {
	Products      int           `json:"products"`
	TrainSamples  int           `json:"train_samples"`
	TestSamples   int           `json:"test_samples"`
	Labels        []string      `json:"labels"`
	Stratified    bool          `json:"stratified"`
	K             int           `json:"k"`
	Scores        Scores        `json:"scores"`
	Confusion     [][]int       `json:"confusion"`
	QueryDuration time.Duration `json:"query_duration"`
}

// Samples turns products into labeled documents. The label is the category
// id, falling back to the category name.
func Samples(products []models.Product) []Sample {
	samples := make([]Sample, len(products))
	for i := range products {
		p := &products[i]
		label := p.CategoryID
		if label == "" {
			label = p.Category
		}
		samples[i] = Sample{
			ID:    p.ID,
			Text:  strings.Join([]string{p.Name, p.Description, p.Specification, label}, " "),
			Label: label,
		}
	}
	return samples
}

// Evaluate runs the holdout evaluation over products.
func Evaluate(ctx context.Context, products []models.Product, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(products) < MinProducts {
		return nil, fmt.Errorf("%w: have %d, need at least %d", ErrTooFewProducts, len(products), MinProducts)
	}

	samples := Samples(products)

	corpus := make([]string, len(samples))
	for i, s := range samples {
		corpus[i] = s.Text
	}
	vectorizer := similarity.FitVectorizer(corpus, similarity.TFIDFOptions{
		StopWords:   opts.StopWords,
		MaxFeatures: opts.MaxFeatures,
	})

	train, test, stratified := Split(samples, opts.TestFraction, opts.Seed)

	trainVectors := make(map[string]similarity.Vector, len(train))
	trainLabels := make(map[string]string, len(train))
	for _, s := range train {
		trainVectors[s.ID] = vectorizer.Transform(s.Text)
		trainLabels[s.ID] = s.Label
	}
	index := algorithms.NewVectorIndex(trainVectors)

	truth := make([]string, 0, len(test))
	predicted := make([]string, 0, len(test))

	start := time.Now()
	for i, s := range test {
		if i%64 == 0 && algorithms.ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		neighbors := index.Nearest(vectorizer.Transform(s.Text), opts.K)
		truth = append(truth, s.Label)
		predicted = append(predicted, majorityLabel(neighbors, trainLabels))
	}
	elapsed := time.Since(start)

	labels := distinctLabels(samples)
	return &Report{
		Products:      len(products),
		TrainSamples:  len(train),
		TestSamples:   len(test),
		Labels:        labels,
		Stratified:    stratified,
		K:             min(opts.K, len(train)),
		Scores:        WeightedScores(truth, predicted),
		Confusion:     ConfusionMatrix(truth, predicted, labels),
		QueryDuration: elapsed,
	}, nil
}

// majorityLabel returns the most frequent label among neighbors. A tie goes
// to the label seen first, neighbors being ordered by ascending distance.
func majorityLabel(neighbors []algorithms.Neighbor, labels map[string]string) string {
	counts := make(map[string]int, len(neighbors))
	order := make([]string, 0, len(neighbors))
	for _, nb := range neighbors {
		label := labels[nb.Key]
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	var (
		best      string
		bestCount int
	)
	for _, label := range order {
		if counts[label] > bestCount {
			best, bestCount = label, counts[label]
		}
	}
	return best
}

func distinctLabels(samples []Sample) []string {
	seen := make(map[string]struct{})
	labels := make([]string, 0)
	for _, s := range samples {
		if _, ok := seen[s.Label]; ok {
			continue
		}
		seen[s.Label] = struct{}{}
		labels = append(labels, s.Label)
	}
	sort.Strings(labels)
	return labels
}

// WriteText renders the report as aligned plain text.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "=== KNN Evaluation Results ===")
	fmt.Fprintf(tw, "Products total\t%d\n", r.Products)
	fmt.Fprintf(tw, "Train samples\t%d\n", r.TrainSamples)
	fmt.Fprintf(tw, "Test samples\t%d\n", r.TestSamples)
	fmt.Fprintf(tw, "Stratified split\t%t\n", r.Stratified)
	fmt.Fprintf(tw, "K (neighbors)\t%d\n", r.K)
	fmt.Fprintf(tw, "Precision (weighted)\t%.4f\n", r.Scores.Precision)
	fmt.Fprintf(tw, "Recall (weighted)\t%.4f\n", r.Scores.Recall)
	fmt.Fprintf(tw, "F1-score (weighted)\t%.4f\n", r.Scores.F1)
	fmt.Fprintf(tw, "Query time\t%s\n", r.QueryDuration)

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Label\tPrecision\tRecall\tF1\tSupport")
	for _, c := range r.Scores.Classes {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%d\n", displayLabel(c.Label), c.Precision, c.Recall, c.F1, c.Support)
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Confusion matrix (rows: true, columns: predicted)")
	header := make([]string, 0, len(r.Labels)+1)
	header = append(header, "")
	for _, l := range r.Labels {
		header = append(header, displayLabel(l))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for i, row := range r.Confusion {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, displayLabel(r.Labels[i]))
		for _, n := range row {
			cells = append(cells, fmt.Sprint(n))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

func displayLabel(label string) string {
	if label == "" {
		return "(none)"
	}
	return label
}
