package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopassist_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "shopassist_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route"},
	)

	RepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopassist_replies_total",
			Help: "Assistant replies appended, by detected intent",
		},
		[]string{"intent"},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopassist_search_results",
			Help:    "Number of items returned by search replies",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopassist_submissions_total",
			Help: "User utterance submissions, by outcome",
		},
		[]string{"outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopassist_active_sessions",
			Help: "Number of conversations held in memory",
		},
	)

	CatalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopassist_catalog_reloads_total",
			Help: "Catalog file reload attempts, by result",
		},
		[]string{"result"},
	)

	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopassist_catalog_items",
			Help: "Number of items in the active catalog",
		},
	)
)
