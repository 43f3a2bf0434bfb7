package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for order placement and the
// instrument table.
type Metrics struct {
	ValidationRejects *prometheus.CounterVec // labels: stage, kind
	Placements        *prometheus.CounterVec // labels: outcome
	SubmitDuration    prometheus.Histogram
	InstrumentRows    prometheus.Gauge
	InstrumentLoads   *prometheus.CounterVec // labels: source, result
	BatchQueueDepth   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics registers every collector on reg. Passing nil uses a fresh
// registry, which keeps tests independent.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		ValidationRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "superorder_validation_rejects_total",
			Help: "Orders rejected by a validation stage",
		}, []string{"stage", "kind"}),
		Placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "superorder_placements_total",
			Help: "Placement attempts by outcome",
		}, []string{"outcome"}),
		SubmitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "superorder_submit_duration_seconds",
			Help:    "Latency of the broker placement call",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		InstrumentRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "superorder_instrument_rows",
			Help: "Rows in the current instrument table",
		}),
		InstrumentLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "superorder_instrument_loads_total",
			Help: "Instrument table loads by source and result",
		}, []string{"source", "result"}),
		BatchQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "superorder_batch_pending",
			Help: "Orders of the running batch not yet finished",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.ValidationRejects,
		m.Placements,
		m.SubmitDuration,
		m.InstrumentRows,
		m.InstrumentLoads,
		m.BatchQueueDepth,
	)
	return m
}

// Handler serves the registry the metrics were registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// The Observe helpers accept a nil receiver so callers can run without
// metrics.

func (m *Metrics) ObserveReject(stage, kind string) {
	if m == nil {
		return
	}
	m.ValidationRejects.WithLabelValues(stage, kind).Inc()
}

func (m *Metrics) ObservePlacement(outcome string) {
	if m == nil {
		return
	}
	m.Placements.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSubmit(d time.Duration) {
	if m == nil {
		return
	}
	m.SubmitDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveInstrumentLoad(source string, rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.InstrumentLoads.WithLabelValues(source, "error").Inc()
		return
	}
	m.InstrumentLoads.WithLabelValues(source, "ok").Inc()
	m.InstrumentRows.Set(float64(rows))
}

func (m *Metrics) SetBatchPending(n int) {
	if m == nil {
		return
	}
	m.BatchQueueDepth.Set(float64(n))
}
