package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// trigger-table pipeline.
type Metrics struct {
	TablesBuilt     prometheus.Counter
	RecordsBuilt    prometheus.Counter
	TablesPublished prometheus.Counter
	BuildRunning    prometheus.Gauge

	// Maproom API metrics.
	APIRequests   *prometheus.CounterVec   // labels: endpoint={export,regions}, outcome={success,error}
	APIDuration   *prometheus.HistogramVec // labels: endpoint={export,regions}
	RegionCache   *prometheus.CounterVec   // labels: result={hit,miss}
	BuildDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		TablesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trigger_etl",
			Name:      "tables_built_total",
			Help:      "Total trigger tables produced by the builder.",
		}),
		RecordsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trigger_etl",
			Name:      "records_built_total",
			Help:      "Total annotated trigger records produced.",
		}),
		TablesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trigger_etl",
			Name:      "tables_published_total",
			Help:      "Total trigger tables written to the sink topic.",
		}),
		BuildRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trigger_etl",
			Name:      "build_running",
			Help:      "1 while a table build is in progress, 0 otherwise.",
		}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trigger_etl",
			Name:      "api_requests_total",
			Help:      "Maproom API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trigger_etl",
			Name:      "api_request_duration_seconds",
			Help:      "Maproom API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		RegionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trigger_etl",
			Name:      "region_cache_total",
			Help:      "Region resolver cache lookups by result.",
		}, []string{"result"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trigger_etl",
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete table build across all combinations.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
	}

	prometheus.MustRegister(
		m.TablesBuilt,
		m.RecordsBuilt,
		m.TablesPublished,
		m.BuildRunning,
		m.APIRequests,
		m.APIDuration,
		m.RegionCache,
		m.BuildDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		TablesBuilt:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "trigger_etl", Name: "tables_built_total"}),
		RecordsBuilt:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "trigger_etl", Name: "records_built_total"}),
		TablesPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "trigger_etl", Name: "tables_published_total"}),
		BuildRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "trigger_etl", Name: "build_running"}),
		APIRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "trigger_etl", Name: "api_requests_total"}, []string{"endpoint", "outcome"}),
		APIDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "trigger_etl", Name: "api_request_duration_seconds"}, []string{"endpoint"}),
		RegionCache:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "trigger_etl", Name: "region_cache_total"}, []string{"result"}),
		BuildDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "trigger_etl", Name: "build_duration_seconds"}),
	}
}
