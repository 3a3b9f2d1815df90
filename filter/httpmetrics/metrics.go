package httpmetrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/pipekit/metric"
)

// requestMetrics holds the Prometheus collectors for one middleware
// instance.
type requestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// newRequestMetrics creates and registers the collectors. A nil registry
// disables metrics. When the same component name is assembled again
// against the same registry, the collectors already registered for it
// are reused so the metric series survive the rebuild.
func newRequestMetrics(registry *metric.MetricsRegistry, component string) (*requestMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &requestMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "pipekit",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests by method and status code",
			ConstLabels: prometheus.Labels{"component": component},
		}, []string{"method", "code"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "pipekit",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: prometheus.Labels{"component": component},
			Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"method"}),

		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "pipekit",
			Subsystem:   "http",
			Name:        "requests_in_flight",
			Help:        "HTTP requests currently being served",
			ConstLabels: prometheus.Labels{"component": component},
		}),
	}

	live, err := registry.RegisterCollector(component, "requests_total", m.requestsTotal)
	if err != nil {
		return nil, err
	}
	counter, ok := live.(*prometheus.CounterVec)
	if !ok {
		return nil, fmt.Errorf("collector registered for %s/requests_total is not a counter vec", component)
	}
	m.requestsTotal = counter

	live, err = registry.RegisterCollector(component, "request_duration", m.requestDuration)
	if err != nil {
		return nil, err
	}
	histogram, ok := live.(*prometheus.HistogramVec)
	if !ok {
		return nil, fmt.Errorf("collector registered for %s/request_duration is not a histogram vec", component)
	}
	m.requestDuration = histogram

	live, err = registry.RegisterCollector(component, "requests_in_flight", m.inFlight)
	if err != nil {
		return nil, err
	}
	gauge, ok := live.(prometheus.Gauge)
	if !ok {
		return nil, fmt.Errorf("collector registered for %s/requests_in_flight is not a gauge", component)
	}
	m.inFlight = gauge

	return m, nil
}

func (m *requestMetrics) recordRequest(method, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, code).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *requestMetrics) trackInFlight(delta float64) {
	if m == nil {
		return
	}
	m.inFlight.Add(delta)
}
