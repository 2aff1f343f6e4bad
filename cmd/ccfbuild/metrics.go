// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kraklabs/ccf/pkg/pipeline"
)

// buildMetrics is the small set of Prometheus series --metrics-addr
// promises (spec §6 / SPEC_FULL.md's optional CLI telemetry): how many
// files the build runs in this process have processed, broken down by
// outcome, and the semantic cache's hits, misses, and most recent hit rate. Registered on a dedicated registry rather
// than the global default so repeated CLI invocations within the same
// process (e.g. --watch) never panic on a duplicate registration.
type buildMetrics struct {
	registry       *prometheus.Registry
	filesProcessed *prometheus.CounterVec
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheHitRatio  prometheus.Gauge
}

func newBuildMetrics() *buildMetrics {
	reg := prometheus.NewRegistry()
	m := &buildMetrics{
		registry: reg,
		filesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ccfbuild",
			Name:      "files_processed_total",
			Help:      "Files processed by the build orchestrator, by outcome status.",
		}, []string{"status"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ccfbuild",
			Name:      "cache_hits_total",
			Help:      "Semantic cache hits across all build runs in this process.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ccfbuild",
			Name:      "cache_misses_total",
			Help:      "Semantic cache misses across all build runs in this process.",
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ccfbuild",
			Name:      "cache_hit_ratio",
			Help:      "Hits / (hits + misses) over the most recent build run.",
		}),
	}
	reg.MustRegister(m.filesProcessed, m.cacheHits, m.cacheMisses, m.cacheHitRatio)
	return m
}

// record folds one orchestrator Result into the running series.
func (m *buildMetrics) record(result *pipeline.Result) {
	if m == nil || result == nil {
		return
	}
	for _, status := range result.FileStatuses {
		m.filesProcessed.WithLabelValues(string(status)).Inc()
	}

	hits, misses := result.CacheStats.Hits, result.CacheStats.Misses
	m.cacheHits.Add(float64(hits))
	m.cacheMisses.Add(float64(misses))
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}
