package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flight_category"

// Metrics holds the Prometheus counters, histograms, and gauges for the polling pipeline.
type Metrics struct {
	Polls              prometheus.Counter
	StationsClassified *prometheus.CounterVec // labels: category={VFR,MVFR,IFR,LIFR}
	FetchErrors        prometheus.Counter
	DecodeErrors       prometheus.Counter
	LoadErrors         prometheus.Counter
	PollDuration       prometheus.Histogram
	PipelineRunning    prometheus.Gauge

	// Report fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error,not_found}
	FetchCache    *prometheus.CounterVec // labels: result={hit,miss,expired}
	FetchDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Polls,
		m.StationsClassified,
		m.FetchErrors,
		m.DecodeErrors,
		m.LoadErrors,
		m.PollDuration,
		m.PipelineRunning,
		m.FetchRequests,
		m.FetchCache,
		m.FetchDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Total polling cycles started.",
		}),
		StationsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_classified_total",
			Help:      "Stations classified, by resulting flight category.",
		}, []string{"category"}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Stations skipped because their report could not be fetched.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Stations skipped because their report could not be decoded.",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Failed loader batches.",
		}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of a complete fetch-classify-load cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Report fetch requests by outcome.",
		}, []string{"outcome"}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cache_total",
			Help:      "Report cache lookups by result.",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Report fetch request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}
