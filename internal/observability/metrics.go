package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for pipeline stages.
type Metrics struct {
	registry *prometheus.Registry
	records  *prometheus.CounterVec
	items    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers stage collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "extracta",
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by status.",
		}, []string{"stage", "status"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "extracta",
			Name:      "stage_items_total",
			Help:      "Items seen by pipeline stages by direction (in, out, error).",
		}, []string{"stage", "direction"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "extracta",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	reg.MustRegister(m.records, m.items, m.duration)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Emit(r Record) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(r.Stage, r.Status).Inc()
	m.items.WithLabelValues(r.Stage, "in").Add(float64(r.InCount))
	m.items.WithLabelValues(r.Stage, "out").Add(float64(r.OutCount))
	m.items.WithLabelValues(r.Stage, "error").Add(float64(r.ErrorCount))
	m.duration.WithLabelValues(r.Stage).Observe(r.Duration.Seconds())
}

// WriteTextfile dumps the registry in Prometheus text format, for the node
// exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
