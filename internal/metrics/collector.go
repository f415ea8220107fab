// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomtom215/toolhub/internal/recommend"
)

// EngineStats is the read side of the recommendation engine that the
// collector scrapes.
type EngineStats interface {
	GetMetrics() recommend.Metrics
	GetStatus() recommend.TrainingStatus
}

// EngineCollector exports the engine's internal counters at scrape time.
// The engine keeps its own atomic counters so it has no dependency on
// Prometheus; this collector is the only bridge.
type EngineCollector struct {
	engine EngineStats

	requests        *prometheus.Desc
	cacheHits       *prometheus.Desc
	cacheMisses     *prometheus.Desc
	errors          *prometheus.Desc
	trainings       *prometheus.Desc
	matrixRefreshes *prometheus.Desc
	productsIndexed *prometheus.Desc
	modelVersion    *prometheus.Desc
	lastTraining    *prometheus.Desc
	training        *prometheus.Desc
	trained         *prometheus.Desc
	matrixUsers     *prometheus.Desc
	matrixProducts  *prometheus.Desc
}

// NewEngineCollector creates a collector for engine.
func NewEngineCollector(engine EngineStats) *EngineCollector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc("toolhub_recommend_"+name, help, labels, nil)
	}
	return &EngineCollector{
		engine:          engine,
		requests:        desc("requests_total", "Recommendation responses by serving tier", "tier"),
		cacheHits:       desc("cache_hits_total", "Responses served from the response cache"),
		cacheMisses:     desc("cache_misses_total", "Responses computed because the cache had no entry"),
		errors:          desc("errors_total", "Engine calls that returned an error"),
		trainings:       desc("trainings_total", "Completed training runs"),
		matrixRefreshes: desc("matrix_refreshes_total", "Lazy interaction matrix rebuilds"),
		productsIndexed: desc("products_indexed", "Products in the served feature space"),
		modelVersion:    desc("model_version", "Version of the served model snapshot"),
		lastTraining:    desc("last_training_duration_seconds", "Duration of the last training run"),
		training:        desc("training_in_progress", "1 while a training run holds the lock"),
		trained:         desc("trained", "1 when a non-empty model is being served"),
		matrixUsers:     desc("matrix_users", "Users in the interaction matrix"),
		matrixProducts:  desc("matrix_products", "Products in the interaction matrix"),
	}
}

// Describe implements prometheus.Collector.
func (c *EngineCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.requests, c.cacheHits, c.cacheMisses, c.errors, c.trainings, c.matrixRefreshes,
		c.productsIndexed, c.modelVersion, c.lastTraining, c.training, c.trained,
		c.matrixUsers, c.matrixProducts,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *EngineCollector) Collect(ch chan<- prometheus.Metric) {
	m := c.engine.GetMetrics()
	s := c.engine.GetStatus()

	for _, tier := range recommend.AllTiers() {
		ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(m.TierCounts[tier]), string(tier))
	}
	ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(m.CacheHits))
	ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(m.CacheMisses))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(m.ErrorCount))
	ch <- prometheus.MustNewConstMetric(c.trainings, prometheus.CounterValue, float64(m.TrainingCount))
	ch <- prometheus.MustNewConstMetric(c.matrixRefreshes, prometheus.CounterValue, float64(m.MatrixRefreshes))
	ch <- prometheus.MustNewConstMetric(c.productsIndexed, prometheus.GaugeValue, float64(m.ProductsIndexed))
	ch <- prometheus.MustNewConstMetric(c.modelVersion, prometheus.GaugeValue, float64(m.ModelVersion))
	ch <- prometheus.MustNewConstMetric(c.lastTraining, prometheus.GaugeValue, float64(m.LastTrainingDurationMS)/1000)
	ch <- prometheus.MustNewConstMetric(c.training, prometheus.GaugeValue, boolToFloat(s.IsTraining))
	ch <- prometheus.MustNewConstMetric(c.trained, prometheus.GaugeValue, boolToFloat(s.Trained))
	ch <- prometheus.MustNewConstMetric(c.matrixUsers, prometheus.GaugeValue, float64(s.MatrixUsers))
	ch <- prometheus.MustNewConstMetric(c.matrixProducts, prometheus.GaugeValue, float64(s.MatrixProducts))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
