// Package metrics exposes Prometheus collectors for searches and catalog loads.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ti4lookup"

var (
	registerOnce sync.Once

	searchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Total number of searches by mode",
	}, []string{"mode"})
	searchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_errors_total",
		Help:      "Total number of failed searches by mode",
	}, []string{"mode"})
	searchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Histogram of search durations in seconds by mode",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms up to ~1s
	}, []string{"mode"})
	indexBuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "index_builds_total",
		Help:      "Total number of search indexes built for a visibility selection",
	})

	cardsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cards_total",
		Help:      "Number of cards in the loaded catalog",
	})
	reloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_reloads_total",
		Help:      "Total number of catalog reloads by result",
	}, []string{"result"})
)

// Register registers the collectors with the global Prometheus registry (idempotent).
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(searchesTotal, searchErrors, searchDuration, indexBuilds, cardsGauge, reloadsTotal)
	})
}

// Search helpers
func IncSearch(mode string)      { searchesTotal.WithLabelValues(mode).Inc() }
func IncSearchError(mode string) { searchErrors.WithLabelValues(mode).Inc() }
func ObserveSearchDuration(mode string, d time.Duration) {
	searchDuration.WithLabelValues(mode).Observe(d.Seconds())
}
func IncIndexBuild() { indexBuilds.Inc() }

// Catalog helpers
func SetCards(n int) { cardsGauge.Set(float64(n)) }
func IncReload(ok bool) {
	if ok {
		reloadsTotal.WithLabelValues("ok").Inc()
		return
	}
	reloadsTotal.WithLabelValues("error").Inc()
}
