package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects operational counters for the screening engine and the
// API layer on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ScansTotal      *prometheus.CounterVec
	ScanDuration    prometheus.Histogram
	TickersScreened prometheus.Counter
	ExclusionsTotal *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		ScansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_scans_total",
			Help: "Number of screening runs, by universe label and outcome.",
		}, []string{"universe", "outcome"}),

		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_scan_duration_seconds",
			Help:    "Wall time of a full screening run.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),

		TickersScreened: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_tickers_screened_total",
			Help: "Number of tickers that produced a signal row.",
		}),

		ExclusionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_exclusions_total",
			Help: "Tickers excluded from a screening run, by reason.",
		}, []string{"reason"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests served, by path and status.",
		}, []string{"path", "status"}),
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
