// Package metrics exposes Prometheus metrics for scans, the catalog and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts finished scans by final status.
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_scans_total",
			Help: "Total number of media scans by status",
		},
		[]string{"status"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidshelf_scan_duration_seconds",
			Help:    "Duration of media scans in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// ScanChangesTotal counts catalog rows added or removed by scans.
	ScanChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_scan_changes_total",
			Help: "Catalog rows added or removed by scans",
		},
		[]string{"kind", "change"},
	)

	ScanRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidshelf_scan_running",
			Help: "1 while a media scan is in progress",
		},
	)

	// CatalogItems is the current size of the catalog by kind.
	CatalogItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vidshelf_catalog_items",
			Help: "Number of catalog entries by kind",
		},
		[]string{"kind"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidshelf_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordScan records the outcome of one scan.
func RecordScan(status string, duration time.Duration) {
	ScansTotal.WithLabelValues(status).Inc()
	ScanDuration.Observe(duration.Seconds())
}

// RecordScanChanges adds n to the change counter when n is positive.
func RecordScanChanges(kind, change string, n int) {
	if n <= 0 {
		return
	}
	ScanChangesTotal.WithLabelValues(kind, change).Add(float64(n))
}

func SetScanRunning(running bool) {
	if running {
		ScanRunning.Set(1)
		return
	}
	ScanRunning.Set(0)
}

func SetCatalogItems(kind string, n int) {
	CatalogItems.WithLabelValues(kind).Set(float64(n))
}

// RecordHTTPRequest records a served request. route should be the router
// pattern, not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
