package waf

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what a build did. Each build owns a private registry so the
// counters describe exactly one run when written out.
type Metrics struct {
	registry *prometheus.Registry

	Records      *prometheus.CounterVec
	References   *prometheus.CounterVec
	FilesWritten prometheus.Counter
	Diagnostics  *prometheus.CounterVec
	Duration     prometheus.Gauge
	LastSuccess  prometheus.Gauge
}

// NewMetrics registers the build metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geowaf_records_total",
			Help: "Archive records processed, by kind.",
		}, []string{"kind"}),
		References: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geowaf_references_total",
			Help: "Coupled resource references of the service record, by result.",
		}, []string{"result"}),
		FilesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geowaf_files_written_total",
			Help: "Files written to the output catalog, index page included.",
		}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geowaf_diagnostics_total",
			Help: "Non-fatal problems reported, by kind.",
		}, []string{"kind"}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geowaf_run_duration_seconds",
			Help: "Wall time of the last build.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geowaf_last_success_timestamp_seconds",
			Help: "Unix time the last successful build finished.",
		}),
	}
	m.registry.MustRegister(m.Records, m.References, m.FilesWritten, m.Diagnostics, m.Duration, m.LastSuccess)
	return m
}

// Registry exposes the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the text exposition format, suitable
// for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry())
}

func (m *Metrics) diagnostics(diags []Diagnostic) {
	for _, d := range diags {
		m.Diagnostics.WithLabelValues(string(d.Kind)).Inc()
	}
}
