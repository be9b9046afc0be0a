package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	TokensSent     prometheus.Counter
	SendFailures   *prometheus.CounterVec
	Validations    *prometheus.CounterVec
	SweepFlipped   prometheus.Counter
	ExternalCallMs *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TokensSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "firstaccess_tokens_sent_total",
			Help: "Total verification tokens dispatched and recorded",
		}),
		SendFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "firstaccess_send_failures_total",
			Help: "Send-token failures by error code",
		}, []string{"code"}),
		Validations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "firstaccess_validations_total",
			Help: "Token validation calls by outcome",
		}, []string{"outcome"}),
		SweepFlipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "firstaccess_sweep_flipped_total",
			Help: "ACTIVE records flipped to EXPIRED by the maintenance sweep",
		}),
		ExternalCallMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "firstaccess_external_call_duration_ms",
			Help:    "Latency of outbound directory and dispatch calls in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"target"}),
	}
}
