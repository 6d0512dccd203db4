// Package metrics defines Prometheus metrics for flyer-price-tracker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fpt"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last /healthz probe succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last /readyz probe succeeded, 0 otherwise.",
	})
)

// Normalization metrics.
var (
	NormalizeItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "normalize_items_total",
		Help:      "Total number of raw items received for normalization.",
	})

	NormalizeDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "normalize_dropped_total",
		Help:      "Total number of raw items dropped during normalization, by reason.",
	}, []string{"reason"})

	NormalizeQuantityRuleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "normalize_quantity_rule_total",
		Help:      "Total number of quantities extracted, by matching rule.",
	}, []string{"rule"})

	NormalizeMissingUnitPriceTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "normalize_missing_unit_price_total",
		Help:      "Total number of products normalized without a unit price.",
	})
)

// Catalog metrics.
var (
	CatalogProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_products",
		Help:      "Number of products in the current catalog snapshot.",
	})

	CatalogGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_generation",
		Help:      "Generation number of the current catalog snapshot.",
	})

	CatalogLastRefreshTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_last_refresh_timestamp_seconds",
		Help:      "Unix timestamp of the last successful catalog refresh.",
	})
)

// Search metrics.
var (
	SearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_requests_total",
		Help:      "Total number of searches, by sort criterion.",
	}, []string{"sort_by"})

	SearchEmptyResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_empty_results_total",
		Help:      "Total number of searches that matched no products.",
	})

	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Duration of catalog searches in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	SearchCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_cache_total",
		Help:      "Search cache lookups, by result (hit, miss, error).",
	}, []string{"result"})
)

// Refresh metrics.
var (
	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "refresh_duration_seconds",
		Help:      "Duration of catalog refresh cycles in seconds.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	RefreshErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_errors_total",
		Help:      "Total number of failed catalog refreshes.",
	})

	RefreshFlyerErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_flyer_errors_total",
		Help:      "Total number of flyers skipped because their items could not be fetched.",
	})
)

// Flipp API metrics.
var (
	FlippAPICallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flipp_api_calls_total",
		Help:      "Total Flipp API calls, by endpoint.",
	}, []string{"endpoint"})

	FlippAPIErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flipp_api_errors_total",
		Help:      "Total failed Flipp API calls, by endpoint.",
	}, []string{"endpoint"})
)

// Notification metrics.
var (
	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_total",
		Help:      "Deal alerts, by result (sent counts deals, error counts failed watches).",
	}, []string{"result"})

	NotificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of webhook deliveries in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)
