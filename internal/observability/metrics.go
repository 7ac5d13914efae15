package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes recorded in RefreshesTotal.
const (
	OutcomeSuccess     = "success"
	OutcomeFetchError  = "fetch_error"
	OutcomeParseError  = "parse_error"
	OutcomeRenderError = "render_error"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the matrix client.
type Metrics struct {
	RefreshesTotal   *prometheus.CounterVec // labels: outcome
	SchedulerRunning prometheus.Gauge
	LastRefresh      prometheus.Gauge

	// Fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: status={200,429,...,transport}
	FetchDuration prometheus.Histogram

	// Frame metrics.
	Peak      prometheus.Gauge
	LitPixels prometheus.Gauge

	PublishErrors prometheus.Counter
}

// NewMetrics creates and registers all client metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()

	prometheus.MustRegister(
		m.RefreshesTotal,
		m.SchedulerRunning,
		m.LastRefresh,
		m.FetchRequests,
		m.FetchDuration,
		m.Peak,
		m.LitPixels,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RefreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contrib_matrix",
			Name:      "refreshes_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "contrib_matrix",
			Name:      "scheduler_running",
			Help:      "1 while the poll loop is active, 0 when stopped.",
		}),
		LastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "contrib_matrix",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful render.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contrib_matrix",
			Name:      "fetch_requests_total",
			Help:      "Contribution fetches by HTTP status, or \"transport\" when no response arrived.",
		}, []string{"status"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "contrib_matrix",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one contributions request.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		Peak: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "contrib_matrix",
			Name:      "peak_contributions",
			Help:      "Largest daily count in the displayed grid.",
		}),
		LitPixels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "contrib_matrix",
			Name:      "lit_pixels",
			Help:      "Pixels with non-zero brightness in the displayed frame.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "contrib_matrix",
			Name:      "snapshot_publish_errors_total",
			Help:      "Snapshots that could not be published.",
		}),
	}
}
