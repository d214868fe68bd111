// Package metrics exposes Prometheus collectors for the clubs crawler.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Club outcome and download result labels.
const (
	StatusComplete = "complete"
	StatusPartial  = "partial"

	DownloadOK      = "ok"
	DownloadFailed  = "failed"
	DownloadSkipped = "skipped"
)

var (
	crawlerClubsTotal               *prometheus.CounterVec
	crawlerEnrichmentFailuresTotal  *prometheus.CounterVec
	crawlerNavigationsTotal         *prometheus.CounterVec
	crawlerDownloadsTotal           *prometheus.CounterVec
	crawlerPartitionDurationSeconds *prometheus.HistogramVec
	crawlerPartitionStubs           *prometheus.GaugeVec
	httpRequestsTotal               *prometheus.CounterVec
	httpRequestDurationSeconds      *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		crawlerClubsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_clubs_total",
				Help: "Total number of clubs processed, labeled by partition and outcome status.",
			},
			[]string{"letter", "status"},
		)

		crawlerEnrichmentFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_enrichment_failures_total",
				Help: "Total number of non-fatal enrichment failures, labeled by kind.",
			},
			[]string{"kind"},
		)

		crawlerNavigationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_navigations_total",
				Help: "Total number of page navigations, labeled by page type and result.",
			},
			[]string{"page", "result"},
		)

		crawlerDownloadsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_downloads_total",
				Help: "Total number of asset downloads, labeled by result.",
			},
			[]string{"result"},
		)

		crawlerPartitionDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawler_partition_duration_seconds",
				Help:    "Wall-clock duration of each partition.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"letter"},
		)

		crawlerPartitionStubs = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crawler_partition_stubs",
				Help: "Number of stubs extracted from the most recent listing page of each partition.",
			},
			[]string{"letter"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveClub increments the club counter for a partition.
func ObserveClub(letter string, partial bool) {
	status := StatusComplete
	if partial {
		status = StatusPartial
	}
	crawlerClubsTotal.WithLabelValues(strings.ToLower(letter), status).Inc()
}

// ObserveEnrichmentFailure increments the failure counter for the given kind.
func ObserveEnrichmentFailure(kind string) {
	crawlerEnrichmentFailuresTotal.WithLabelValues(kind).Inc()
}

// ObserveNavigation records a navigation to a listing or detail page.
func ObserveNavigation(page string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	crawlerNavigationsTotal.WithLabelValues(page, result).Inc()
}

// ObserveDownload increments the download counter for the given result.
func ObserveDownload(result string) {
	crawlerDownloadsTotal.WithLabelValues(result).Inc()
}

// ObservePartition records the stub count and duration of a finished partition.
func ObservePartition(letter string, stubs int, duration time.Duration) {
	letter = strings.ToLower(letter)
	crawlerPartitionStubs.WithLabelValues(letter).Set(float64(stubs))
	crawlerPartitionDurationSeconds.WithLabelValues(letter).Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
