// Package metrics provides Prometheus metrics for the collection manager.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtgssm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mtgssm_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Catalog Metrics
	CatalogCards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtgssm_catalog_cards",
			Help: "Number of cards in the loaded catalog index",
		},
	)

	CatalogKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtgssm_catalog_index_keys",
			Help: "Number of distinct lookup keys in the catalog index",
		},
	)

	// Legacy Resolution Metrics
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtgssm_legacy_resolutions_total",
			Help: "Legacy card resolutions by result",
		},
		[]string{"result"}, // "matched", "ambiguous", "no_match"
	)

	ResolveCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtgssm_resolve_cache_hits_total",
			Help: "Resolve endpoint cache hit count",
		},
	)

	ResolveCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtgssm_resolve_cache_misses_total",
			Help: "Resolve endpoint cache miss count",
		},
	)

	// Import Metrics
	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtgssm_import_rows_total",
			Help: "Imported collection rows by outcome",
		},
		[]string{"outcome"}, // "imported", "skipped", "failed"
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtgssm_import_duration_seconds",
			Help:    "Time taken to coerce an imported batch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
	)

	// Collection Metrics
	CollectionCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtgssm_collection_cards_total",
			Help: "Total number of cards in collection",
		},
	)

	CollectionUniqueCards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtgssm_collection_unique_cards",
			Help: "Number of distinct printings in collection",
		},
	)
)
