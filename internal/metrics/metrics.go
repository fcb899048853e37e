// Package metrics exposes the service's own operational counters on
// /metrics; dashboard analytics live in internal/stats.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	Requests     *prometheus.CounterVec
	Latency      *prometheus.HistogramVec
	Reloads      prometheus.Counter
	FetchErrors  prometheus.Counter
	LeadsInStore prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}

	m.Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	m.Latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_http_request_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	m.Reloads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_reloads_total",
		Help: "Completed snapshot reloads.",
	})

	m.FetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_fetch_errors_total",
		Help: "Failed fetches from the table store.",
	})

	m.LeadsInStore = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_leads_in_store",
		Help: "Leads held in the current snapshot.",
	})

	m.reg.MustRegister(m.Requests, m.Latency, m.Reloads, m.FetchErrors, m.LeadsInStore)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
