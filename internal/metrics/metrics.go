package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DispatchTotal           *prometheus.CounterVec
	CacheLookupsTotal       *prometheus.CounterVec
	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderErrorsTotal     *prometheus.CounterVec
	ProviderRequestDuration prometheus.Histogram
}

// NewMetrics registers all collectors with reg. Pass
// prometheus.DefaultRegisterer in binaries and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		DispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fixer_dispatch_total",
				Help: "Total number of dispatched requests by request type and outcome",
			},
			[]string{"request", "outcome"},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fixer_cache_lookups_total",
				Help: "Total number of payload cache lookups by result",
			},
			[]string{"result"},
		),

		ProviderRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fixer_provider_requests_total",
				Help: "Total number of provider calls by HTTP status class",
			},
			[]string{"status_class"},
		),

		ProviderErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fixer_provider_errors_total",
				Help: "Provider-reported errors by code and classification",
			},
			[]string{"code", "classification"},
		),

		ProviderRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fixer_provider_request_duration_seconds",
				Help:    "Provider call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// The helpers below are nil-safe so components can run without metrics.

func (m *Metrics) ObserveDispatch(request, outcome string) {
	if m == nil {
		return
	}
	m.DispatchTotal.WithLabelValues(request, outcome).Inc()
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveProviderRequest(statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.ProviderRequestsTotal.WithLabelValues(StatusClass(statusCode)).Inc()
	m.ProviderRequestDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveProviderError(code int, classification string) {
	if m == nil {
		return
	}
	m.ProviderErrorsTotal.WithLabelValues(strconv.Itoa(code), classification).Inc()
}

// StatusClass renders 404 as "4xx". Zero means no response was received.
func StatusClass(statusCode int) string {
	if statusCode <= 0 {
		return "error"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}
