package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPRequestsTotal counts HTTP requests by route, method and status code
var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bookshelf_http_requests_total",
		Help: "Total number of HTTP requests handled",
	},
	[]string{"path", "method", "status"},
)

// HTTPRequestDuration records request latency by route and method
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "bookshelf_http_request_duration_seconds",
		Help:    "Latency in seconds of HTTP requests",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"path", "method"},
)

// Book store operation metrics
var (
	BookOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_book_operations_total",
			Help: "Total number of book store operations by outcome",
		},
		[]string{"op", "result"},
	)

	BookOperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookshelf_book_operation_latency_seconds",
			Help:    "Latency in seconds of book store operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration)
	prometheus.MustRegister(BookOperations, BookOperationLatency)
}
