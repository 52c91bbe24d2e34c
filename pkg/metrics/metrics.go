package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docmanager", Name: "document_operations_total", Help: "Number of document store operations by operation and backend."},
		[]string{"operation", "backend"},
	)
	DocumentOperationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docmanager", Name: "document_operation_errors_total", Help: "Number of failed document store operations by operation and backend."},
		[]string{"operation", "backend"},
	)
	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "docmanager", Name: "search_results", Help: "Number of documents returned per search.", Buckets: prometheus.ExponentialBuckets(1, 4, 8)},
		[]string{"backend"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docmanager", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docmanager", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentOperations)
	reg.MustRegister(DocumentOperationErrors)
	reg.MustRegister(SearchResults)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
