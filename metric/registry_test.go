package metric

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NotNil(t, registry)
	require.NotNil(t, registry.CoreMetrics())
	require.NotNil(t, registry.PrometheusRegistry())

	// Core metrics must be gatherable immediately
	registry.Metrics.LoadsTotal.WithLabelValues("success").Inc()
	registry.Metrics.PipelineDepth.Set(3)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["pipekit_loader_loads_total"])
	assert.True(t, names["pipekit_assembly_pipeline_depth"])
}

func TestRegisterCollector(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipekit_filter_requests_total",
		Help: "test counter",
	})

	live, err := registry.RegisterCollector("healthcheck", "requests", counter)
	require.NoError(t, err)
	assert.Same(t, prometheus.Collector(counter), live)
}

func TestRegisterCollectorReusesExisting(t *testing.T) {
	registry := NewMetricsRegistry()

	first := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipekit_filter_requests_total",
		Help: "test counter",
	})
	second := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipekit_filter_requests_total",
		Help: "test counter",
	})

	live, err := registry.RegisterCollector("healthcheck", "requests", first)
	require.NoError(t, err)
	require.Same(t, prometheus.Collector(first), live)

	// Registering the same pair again hands back the live collector,
	// so a rebuilt component keeps incrementing the original series.
	live, err = registry.RegisterCollector("healthcheck", "requests", second)
	require.NoError(t, err)
	assert.Same(t, prometheus.Collector(first), live)
}

func TestHandler(t *testing.T) {
	registry := NewMetricsRegistry()
	registry.Metrics.AssembliesTotal.WithLabelValues("success").Inc()

	rec := httptest.NewRecorder()
	registry.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pipekit_assembly_total"),
		"exposition output should include core metrics")
}
