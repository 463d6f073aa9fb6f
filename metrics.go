package midas

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes cache observability counters through a prometheus
// registry. A nil *Metrics disables collection entirely, so the middleware
// never pays for metrics it was not configured with.
type Metrics struct {
	requests      *prometheus.CounterVec
	refreshErrors prometheus.Counter
	writeFailures prometheus.Counter
}

// NewMetrics creates the cache counters and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default
// /metrics handler, or nil to keep them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "midas_cache_requests_total",
			Help: "Requests through the cache middleware by disposition",
		}, []string{"status"}),
		refreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "midas_cache_background_refresh_errors_total",
			Help: "Background refreshes that panicked",
		}),
		writeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "midas_cache_store_write_failures_total",
			Help: "Cache write-backs rejected by the store",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.refreshErrors, m.writeFailures)
	}
	return m
}

func (m *Metrics) request(status string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(status).Inc()
}

func (m *Metrics) refreshError() {
	if m == nil {
		return
	}
	m.refreshErrors.Inc()
}

func (m *Metrics) writeFailure() {
	if m == nil {
		return
	}
	m.writeFailures.Inc()
}
