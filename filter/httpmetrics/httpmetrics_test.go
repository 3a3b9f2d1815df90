package httpmetrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
	"github.com/c360/pipekit/metric"
)

func TestMetricsRecorded(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	mw, err := Factory(config.Settings{"component_name": "container"}, component.Dependencies{
		Metrics: registry,
	})
	if err != nil {
		t.Fatalf("Factory failed: %v", err)
	}
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/a/c", nil))
	}

	families, err := registry.PrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	var sawRequests, sawDuration bool
	for _, family := range families {
		switch family.GetName() {
		case "pipekit_http_requests_total":
			sawRequests = true
			if len(family.GetMetric()) == 0 {
				t.Error("requests_total has no samples")
				continue
			}
			if got := family.GetMetric()[0].GetCounter().GetValue(); got != 3 {
				t.Errorf("expected 3 requests recorded, got %v", got)
			}
		case "pipekit_http_request_duration_seconds":
			sawDuration = true
		}
	}
	if !sawRequests {
		t.Error("pipekit_http_requests_total not gathered")
	}
	if !sawDuration {
		t.Error("pipekit_http_request_duration_seconds not gathered")
	}
}

func TestMetricsDisabledWithoutRegistry(t *testing.T) {
	mw, err := Factory(config.Settings{}, component.Dependencies{})
	if err != nil {
		t.Fatalf("Factory failed: %v", err)
	}
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("served"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if !strings.Contains(rec.Body.String(), "served") {
		t.Error("middleware without a registry should pass requests through")
	}
}

func TestMetricsRebuildSharesCollectors(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	deps := component.Dependencies{Metrics: registry}
	backend := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Instantiating the same component twice against one registry must
	// succeed, and both instances must feed the same counter series.
	first, err := Factory(config.Settings{}, deps)
	if err != nil {
		t.Fatalf("first Factory failed: %v", err)
	}
	second, err := Factory(config.Settings{}, deps)
	if err != nil {
		t.Fatalf("second Factory failed: %v", err)
	}

	for _, mw := range []component.Middleware{first, second} {
		rec := httptest.NewRecorder()
		mw(backend).ServeHTTP(rec, httptest.NewRequest("GET", "/a/c", nil))
	}

	families, err := registry.PrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "pipekit_http_requests_total" {
			continue
		}
		if got := family.GetMetric()[0].GetCounter().GetValue(); got != 2 {
			t.Errorf("expected 2 requests in the shared series, got %v", got)
		}
		return
	}
	t.Error("pipekit_http_requests_total not gathered")
}
