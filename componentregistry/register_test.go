package componentregistry

import (
	"net/http/httptest"
	"testing"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/metric"
	"github.com/c360/pipekit/service"
)

func TestRegisterNilRegistry(t *testing.T) {
	if err := Register(nil); err == nil {
		t.Fatal("expected an error for a nil registry")
	}
}

func TestRegisterAllBuiltins(t *testing.T) {
	registry := component.NewRegistry()
	if err := Register(registry); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	expected := []string{
		"egg:pipekit#catch_errors",
		"egg:pipekit#container_store",
		"egg:pipekit#healthcheck",
		"egg:pipekit#httpmetrics",
		"egg:pipekit#ratelimit",
		"egg:pipekit#recon",
		"egg:pipekit#requestlog",
	}
	keys := registry.Keys()
	if len(keys) != len(expected) {
		t.Fatalf("expected %d registrations, got %d: %v", len(expected), len(keys), keys)
	}
	for i, key := range expected {
		if keys[i] != key {
			t.Errorf("registration %d: expected %s, got %s", i, key, keys[i])
		}
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	registry := component.NewRegistry()
	if err := Register(registry); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := Register(registry); err == nil {
		t.Fatal("second Register should fail on duplicate keys")
	}
}

// TestContainerServerConf assembles the configuration shape that
// motivates the built-in set end to end.
func TestContainerServerConf(t *testing.T) {
	conf := `
[DEFAULT]
log_level = INFO

[pipeline:main]
pipeline = catch_errors healthcheck container-server

[filter:catch_errors]
use = egg:pipekit#catch_errors

[filter:healthcheck]
use = egg:pipekit#healthcheck

[app:container-server]
use = egg:pipekit#container_store

[container-replicator]
[container-updater]
[container-auditor]
[container-sync]
`

	registry := component.NewRegistry()
	if err := Register(registry); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	runtime, err := service.Load(conf, registry)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rec := httptest.NewRecorder()
	runtime.Pipeline.ServeHTTP(rec, httptest.NewRequest("GET", "/healthcheck", nil))
	if rec.Code != 200 || rec.Body.String() != "OK" {
		t.Errorf("healthcheck through the assembled pipeline: got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	runtime.Pipeline.ServeHTTP(rec, httptest.NewRequest("PUT", "/AUTH_test/photos", nil))
	if rec.Code != 201 {
		t.Errorf("container PUT through the assembled pipeline: got %d", rec.Code)
	}

	if len(runtime.Subsystems) != 4 {
		t.Errorf("expected 4 subsystems, got %d", len(runtime.Subsystems))
	}
}

// TestReloadWithSharedMetrics loads one configuration twice against the
// same metrics registry, the way a process reloads its conf file without
// restarting. The second assembly must succeed and keep appending to the
// metric series the first one started.
func TestReloadWithSharedMetrics(t *testing.T) {
	conf := `
[pipeline:main]
pipeline = httpmetrics container-server

[filter:httpmetrics]
use = egg:pipekit#httpmetrics
component_name = container-server

[app:container-server]
use = egg:pipekit#container_store
`

	registry := component.NewRegistry()
	if err := Register(registry); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	metrics := metric.NewMetricsRegistry()
	deps := component.Dependencies{Metrics: metrics}

	first, err := service.Load(conf, registry, service.WithDependencies(deps))
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	second, err := service.Load(conf, registry, service.WithDependencies(deps))
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}

	for _, rt := range []*service.Runtime{first, second} {
		rec := httptest.NewRecorder()
		rt.Pipeline.ServeHTTP(rec, httptest.NewRequest("GET", "/healthcheck", nil))
	}

	families, err := metrics.PrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "pipekit_http_requests_total" {
			continue
		}
		var total float64
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		if total != 2 {
			t.Errorf("expected 2 requests in the shared series, got %v", total)
		}
		return
	}
	t.Error("pipekit_http_requests_total not gathered")
}
