package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/pipekit/errors"
)

// MetricsRegistry manages the registration and lifecycle of metrics
type MetricsRegistry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registeredMetrics  map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewMetricsRegistry creates a new metrics registry with the core
// assembly-engine metrics pre-registered.
func NewMetricsRegistry() *MetricsRegistry {
	prometheusRegistry := prometheus.NewRegistry()

	registry := &MetricsRegistry{
		prometheusRegistry: prometheusRegistry,
		registeredMetrics:  make(map[string]prometheus.Collector),
	}

	registry.Metrics = NewMetrics()
	registry.registerCoreMetrics()

	// Add Go runtime metrics
	registry.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CoreMetrics returns the core assembly metrics
func (r *MetricsRegistry) CoreMetrics() *Metrics {
	return r.Metrics
}

// RegisterCollector registers a component-specific collector under a
// component/metric name pair and returns the live collector. When the
// pair is already registered the existing collector is returned instead
// of the argument, so a pipeline rebuilt against the same registry keeps
// feeding one metric stream rather than failing on the duplicate.
func (r *MetricsRegistry) RegisterCollector(componentName, metricName string, collector prometheus.Collector) (prometheus.Collector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", componentName, metricName)

	if existing, ok := r.registeredMetrics[key]; ok {
		return existing, nil
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			// Registered directly on the prometheus registry, not
			// through us. Adopt it under the pair.
			r.registeredMetrics[key] = alreadyRegErr.ExistingCollector
			return alreadyRegErr.ExistingCollector, nil
		}
		return nil, errors.WrapFatal(err, "MetricsRegistry", "RegisterCollector",
			"failed to register collector with prometheus")
	}

	r.registeredMetrics[key] = collector
	return collector, nil
}

// registerCoreMetrics registers all core assembly metrics
func (r *MetricsRegistry) registerCoreMetrics() {
	r.prometheusRegistry.MustRegister(
		r.Metrics.LoadsTotal,
		r.Metrics.AssembliesTotal,
		r.Metrics.AssemblyDuration,
		r.Metrics.ComponentsBuilt,
		r.Metrics.PipelineDepth,
		r.Metrics.RegisteredFactories,
	)
}
