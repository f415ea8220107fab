// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package evaluation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/toolhub/internal/models"
	"github.com/tomtom215/toolhub/internal/recommend/algorithms"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}

func catalog() []models.Product {
	var products []models.Product
	power := []string{"cordless drill", "impact driver", "angle grinder", "rotary hammer drill"}
	garden := []string{"garden hose", "hose reel", "lawn sprinkler", "watering can"}
	for i, name := range power {
		products = append(products, models.Product{
			ID: fmt.Sprintf("p%d", i), Name: name, Description: "power tool battery motor", CategoryID: "power",
		})
	}
	for i, name := range garden {
		products = append(products, models.Product{
			ID: fmt.Sprintf("g%d", i), Name: name, Description: "garden water outdoor", CategoryID: "garden",
		})
	}
	return products
}

func TestWeightedScores(t *testing.T) {
	t.Parallel()

	truth := []string{"a", "a", "b", "b"}
	predicted := []string{"a", "b", "b", "b"}

	s := WeightedScores(truth, predicted)
	if !approxEqual(s.Precision, 0.8333) {
		t.Errorf("Precision = %.4f, want 0.8333", s.Precision)
	}
	if !approxEqual(s.Recall, 0.75) {
		t.Errorf("Recall = %.4f, want 0.75", s.Recall)
	}
	if !approxEqual(s.F1, 0.7333) {
		t.Errorf("F1 = %.4f, want 0.7333", s.F1)
	}
	if len(s.Classes) != 2 || s.Classes[0].Label != "a" || s.Classes[0].Support != 2 {
		t.Errorf("Classes = %+v", s.Classes)
	}
}

func TestWeightedScores_ZeroDivision(t *testing.T) {
	t.Parallel()

	// "c" is predicted but never true: zero support, no contribution.
	s := WeightedScores([]string{"a", "b"}, []string{"c", "c"})
	if s.Precision != 0 || s.Recall != 0 || s.F1 != 0 {
		t.Errorf("scores = %+v, want all zero", s)
	}

	empty := WeightedScores(nil, nil)
	if empty.Precision != 0 || len(empty.Classes) != 0 {
		t.Errorf("empty scores = %+v", empty)
	}
}

func TestConfusionMatrix(t *testing.T) {
	t.Parallel()

	got := ConfusionMatrix(
		[]string{"a", "a", "b", "b"},
		[]string{"a", "b", "b", "x"},
		[]string{"a", "b"},
	)
	want := [][]int{{1, 1}, {0, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ConfusionMatrix() = %v, want %v", got, want)
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	samples := Samples(catalog())

	t.Run("stratified", func(t *testing.T) {
		t.Parallel()
		train, test, stratified := Split(samples, 0.25, 42)
		if !stratified {
			t.Error("expected stratified split")
		}
		if len(test) != 2 || len(train) != 6 {
			t.Fatalf("split sizes = %d/%d, want 6/2", len(train), len(test))
		}
		perLabel := map[string]int{}
		for _, s := range test {
			perLabel[s.Label]++
		}
		if perLabel["power"] != 1 || perLabel["garden"] != 1 {
			t.Errorf("test labels = %v, want one per label", perLabel)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		_, a, _ := Split(samples, 0.25, 7)
		_, b, _ := Split(samples, 0.25, 7)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("same seed produced different splits: %v vs %v", a, b)
		}
	})

	t.Run("random when a label is a singleton", func(t *testing.T) {
		t.Parallel()
		withSingleton := append(append([]Sample(nil), samples...), Sample{ID: "x", Label: "misc"})
		train, test, stratified := Split(withSingleton, 0.25, 42)
		if stratified {
			t.Error("singleton label must disable stratification")
		}
		if len(train)+len(test) != len(withSingleton) || len(test) != 3 {
			t.Errorf("split sizes = %d/%d", len(train), len(test))
		}
	})

	t.Run("never empties a side", func(t *testing.T) {
		t.Parallel()
		train, test, _ := Split(samples[:4], 0.99, 1)
		if len(train) == 0 || len(test) == 0 {
			t.Errorf("split sizes = %d/%d", len(train), len(test))
		}
	})
}

func TestMajorityLabel_TieGoesToNearest(t *testing.T) {
	t.Parallel()

	labels := map[string]string{"n1": "b", "n2": "a", "n3": "a", "n4": "b"}
	got := majorityLabel(neighbors("n1", "n2", "n3", "n4"), labels)
	if got != "b" {
		t.Errorf("majorityLabel() = %q, want b (first seen among tied labels)", got)
	}

	got = majorityLabel(neighbors("n1", "n2", "n3"), labels)
	if got != "a" {
		t.Errorf("majorityLabel() = %q, want a", got)
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	report, err := Evaluate(context.Background(), catalog(), DefaultOptions())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if report.Products != 8 || report.TestSamples != 2 || report.TrainSamples != 6 {
		t.Errorf("report sizes = %+v", report)
	}
	if !reflect.DeepEqual(report.Labels, []string{"garden", "power"}) {
		t.Errorf("Labels = %v", report.Labels)
	}
	if report.Scores.F1 != 1 {
		t.Errorf("F1 = %v, want 1 on a separable catalog", report.Scores.F1)
	}

	var buf bytes.Buffer
	if err := report.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	if !strings.Contains(buf.String(), "F1-score (weighted)") {
		t.Errorf("WriteText() output missing scores:\n%s", buf.String())
	}
}

func TestEvaluate_Errors(t *testing.T) {
	t.Parallel()

	_, err := Evaluate(context.Background(), catalog()[:3], DefaultOptions())
	if !errors.Is(err, ErrTooFewProducts) {
		t.Errorf("Evaluate(3 products) error = %v, want ErrTooFewProducts", err)
	}

	opts := DefaultOptions()
	opts.K = 0
	if _, err := Evaluate(context.Background(), catalog(), opts); err == nil {
		t.Error("Evaluate() accepted k = 0")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Evaluate(ctx, catalog(), DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("Evaluate(cancelled) error = %v, want context.Canceled", err)
	}
}

func neighbors(keys ...string) []algorithms.Neighbor {
	out := make([]algorithms.Neighbor, len(keys))
	for i, k := range keys {
		out[i] = algorithms.Neighbor{Key: k, Distance: float64(i) / 10}
	}
	return out
}
