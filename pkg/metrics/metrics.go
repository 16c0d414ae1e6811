package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	LinksPending        prometheus.Gauge
	HarvestsTotal       *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
	ListingsSaved       prometheus.Counter
)

func Init() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	LinksPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "links_pending",
			Help: "Current number of links still eligible for processing.",
		},
	)

	HarvestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvests_total",
			Help: "Total number of link processing attempts.",
		},
		[]string{"status", "error_type"}, // status: success, failure
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetch_duration_seconds",
			Help:    "Duration of page fetches.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		},
		[]string{"domain"},
	)

	ListingsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listings_saved_total",
			Help: "Total number of listings written to the store.",
		},
	)
}
