// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	RateLimited   prometheus.Counter
	PaymentsPaid  prometheus.Counter
	RoundsClosed  prometheus.Counter
	LedgerEntries *prometheus.CounterVec
	CacheHits     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finanzas_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finanzas_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "finanzas_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter.",
		}),
		PaymentsPaid: factory.NewCounter(prometheus.CounterOpts{
			Name: "finanzas_payments_paid_total",
			Help: "Pasanaco contributions settled.",
		}),
		RoundsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "finanzas_rounds_closed_total",
			Help: "Pasanaco rounds fully collected and advanced.",
		}),
		LedgerEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finanzas_ledger_entries_total",
			Help: "Ledger entries booked by kind.",
		}, []string{"kind"}),
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finanzas_cache_requests_total",
			Help: "Cache lookups by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
