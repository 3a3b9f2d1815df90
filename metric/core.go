package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the core assembly-engine metrics (not component-specific)
type Metrics struct {
	// Load / assembly metrics
	LoadsTotal          *prometheus.CounterVec
	AssembliesTotal     *prometheus.CounterVec
	AssemblyDuration    prometheus.Histogram
	ComponentsBuilt     *prometheus.CounterVec
	PipelineDepth       prometheus.Gauge
	RegisteredFactories prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all core metrics
func NewMetrics() *Metrics {
	return &Metrics{
		LoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipekit",
				Subsystem: "loader",
				Name:      "loads_total",
				Help:      "Total configuration loads by result",
			},
			[]string{"result"},
		),

		AssembliesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipekit",
				Subsystem: "assembly",
				Name:      "total",
				Help:      "Total pipeline assemblies by result",
			},
			[]string{"result"},
		),

		AssemblyDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pipekit",
				Subsystem: "assembly",
				Name:      "duration_seconds",
				Help:      "Pipeline assembly duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),

		ComponentsBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipekit",
				Subsystem: "assembly",
				Name:      "components_built_total",
				Help:      "Total components instantiated by kind",
			},
			[]string{"kind"},
		),

		PipelineDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pipekit",
				Subsystem: "assembly",
				Name:      "pipeline_depth",
				Help:      "Component count of the most recently assembled pipeline",
			},
		),

		RegisteredFactories: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pipekit",
				Subsystem: "registry",
				Name:      "factories",
				Help:      "Number of registered component factories",
			},
		),
	}
}
