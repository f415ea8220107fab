// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/toolhub/internal/logging"
)

// DefaultSlowThreshold is the latency above which a request is logged.
const DefaultSlowThreshold = 500 * time.Millisecond

// RequestSample is one observed request.
type RequestSample struct {
	Route      string
	Method     string
	Duration   time.Duration
	StatusCode int
	Timestamp  time.Time
}

// RouteStats aggregates the samples of one method and route.
type RouteStats struct {
	Route        string  `json:"route"`
	RequestCount int     `json:"request_count"`
	ErrorCount   int     `json:"error_count"`
	AvgMS        float64 `json:"avg_ms"`
	P50MS        float64 `json:"p50_ms"`
	P95MS        float64 `json:"p95_ms"`
	P99MS        float64 `json:"p99_ms"`
	MaxMS        float64 `json:"max_ms"`
}

// LatencyMonitor keeps a sliding window of recent requests for the
// latency report and logs requests slower than its threshold.
type LatencyMonitor struct {
	mu        sync.RWMutex
	samples   []RequestSample
	capacity  int
	threshold time.Duration
	now       func() time.Time
}

// NewLatencyMonitor returns a monitor holding up to capacity samples.
// A threshold <= 0 uses DefaultSlowThreshold.
func NewLatencyMonitor(capacity int, threshold time.Duration) *LatencyMonitor {
	if capacity <= 0 {
		capacity = 1000
	}
	if threshold <= 0 {
		threshold = DefaultSlowThreshold
	}
	return &LatencyMonitor{
		samples:   make([]RequestSample, 0, capacity),
		capacity:  capacity,
		threshold: threshold,
		now:       time.Now,
	}
}

// Record adds a sample, evicting the oldest when the window is full.
func (m *LatencyMonitor) Record(s RequestSample) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.samples) == m.capacity {
		copy(m.samples, m.samples[1:])
		m.samples = m.samples[:len(m.samples)-1]
	}
	m.samples = append(m.samples, s)
}

// Stats returns per-route statistics, busiest route first.
func (m *LatencyMonitor) Stats() []RouteStats {
	m.mu.RLock()
	byRoute := make(map[string][]RequestSample)
	for _, s := range m.samples {
		key := s.Method + " " + s.Route
		byRoute[key] = append(byRoute[key], s)
	}
	m.mu.RUnlock()

	stats := make([]RouteStats, 0, len(byRoute))
	for route, samples := range byRoute {
		durations := make([]time.Duration, len(samples))
		var sum time.Duration
		errs := 0
		for i, s := range samples {
			durations[i] = s.Duration
			sum += s.Duration
			if s.StatusCode >= http.StatusInternalServerError {
				errs++
			}
		}
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		stats = append(stats, RouteStats{
			Route:        route,
			RequestCount: len(samples),
			ErrorCount:   errs,
			AvgMS:        ms(sum / time.Duration(len(samples))),
			P50MS:        ms(percentile(durations, 0.50)),
			P95MS:        ms(percentile(durations, 0.95)),
			P99MS:        ms(percentile(durations, 0.99)),
			MaxMS:        ms(durations[len(durations)-1]),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Route < stats[j].Route
	})
	return stats
}

// Middleware records every request and warns about slow ones.
func (m *LatencyMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := m.now()
		rw := newStatusWriter(w)

		next.ServeHTTP(rw, r)

		elapsed := m.now().Sub(start)
		route := RoutePattern(r)
		m.Record(RequestSample{
			Route:      route,
			Method:     r.Method,
			Duration:   elapsed,
			StatusCode: rw.status,
			Timestamp:  start,
		})

		if elapsed > m.threshold {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("route", route).
				Int("status", rw.status).
				Dur("duration", elapsed).
				Dur("threshold", m.threshold).
				Msg("Slow request")
		}
	})
}

// percentile uses nearest-rank on an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
