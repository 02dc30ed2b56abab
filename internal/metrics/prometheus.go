package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	// AnalysisCount counts analysis runs by outcome
	AnalysisCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_analyses_total",
			Help: "Total number of document analyses",
		},
		[]string{"status"},
	)

	// AnalysisDuration measures a whole analysis run
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "similarity_analysis_duration_seconds",
			Help: "Document analysis duration in seconds",
		},
	)

	// PairDuration measures a single pair comparison
	PairDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "similarity_pair_duration_seconds",
			Help:    "Duration of one document pair comparison in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)
)

var initOnce sync.Once

// InitPrometheus registers all collectors with the default registry
func InitPrometheus() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCount)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AnalysisCount)
		prometheus.MustRegister(AnalysisDuration)
		prometheus.MustRegister(PairDuration)
	})
}

// MetricsHandler returns Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
