// Package metrics provides Prometheus metrics collection for the products
// API. Besides the standard HTTP request metrics it tracks the catalog
// refresh pipeline:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - catalog_products_total: Gauge for the loaded catalog size
//   - catalog_refresh_duration_seconds: Histogram for feed refresh runs
//   - catalog_refresh_failures_total: Counter for failed refresh attempts
//
// All metrics are automatically registered with the Prometheus default
// registry during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	CatalogProductsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products_total",
			Help: "Number of products in the loaded catalog snapshot",
		},
	)

	CatalogRefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_refresh_duration_seconds",
			Help:    "Duration of catalog feed refresh runs",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	CatalogRefreshFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_refresh_failures_total",
			Help: "Total failed catalog refresh attempts",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(CatalogProductsTotal)
	prometheus.MustRegister(CatalogRefreshDuration)
	prometheus.MustRegister(CatalogRefreshFailures)
}
