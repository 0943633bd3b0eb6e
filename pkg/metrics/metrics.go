package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors of the console.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	APICallsTotal       *prometheus.CounterVec
	AssetLoadsTotal     *prometheus.CounterVec
	ValidationFailures  prometheus.Counter
}

// New registers the console collectors with reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_http_requests_total",
				Help: "Total number of console HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_http_request_duration_seconds",
				Help:    "Duration of console HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		APICallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_api_calls_total",
				Help: "Calls made to the crawler API.",
			},
			[]string{"operation", "outcome"}, // outcome: success, failure
		),
		AssetLoadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_asset_loads_total",
				Help: "Script dependency loads.",
			},
			[]string{"outcome"}, // loaded, idle, failed
		),
		ValidationFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "console_validation_failures_total",
				Help: "Form submissions blocked by schema validation.",
			},
		),
	}
}

// NewNop returns collectors registered with a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) IncAPICall(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.APICallsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) IncAssetLoad(outcome string) {
	m.AssetLoadsTotal.WithLabelValues(outcome).Inc()
}
