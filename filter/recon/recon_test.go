package recon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
)

func reconHandler(t *testing.T, dir string) http.Handler {
	t.Helper()
	mw, err := Factory(config.Settings{"recon_cache_path": dir}, component.Dependencies{})
	if err != nil {
		t.Fatalf("Factory failed: %v", err)
	}
	return mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("downstream"))
	}))
}

func writeCache(t *testing.T, dir string, cache map[string]any) {
	t.Helper()
	data, err := json.Marshal(cache)
	if err != nil {
		t.Fatalf("marshal cache: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, DefaultCacheFile), data, 0o644); err != nil {
		t.Fatalf("write cache: %v", err)
	}
}

func TestReconMetric(t *testing.T) {
	dir := t.TempDir()
	writeCache(t, dir, map[string]any{
		"replication_last": 1693394821.77,
		"container_count":  42,
	})

	rec := httptest.NewRecorder()
	reconHandler(t, dir).ServeHTTP(rec, httptest.NewRequest("GET", "/recon/container_count", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["container_count"] != float64(42) {
		t.Errorf("expected container_count 42, got %v", body["container_count"])
	}
}

func TestReconUnknownMetric(t *testing.T) {
	dir := t.TempDir()
	writeCache(t, dir, map[string]any{"container_count": 1})

	rec := httptest.NewRecorder()
	reconHandler(t, dir).ServeHTTP(rec, httptest.NewRequest("GET", "/recon/object_count", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown metric, got %d", rec.Code)
	}
}

func TestReconMissingCache(t *testing.T) {
	rec := httptest.NewRecorder()
	reconHandler(t, t.TempDir()).ServeHTTP(rec, httptest.NewRequest("GET", "/recon/anything", nil))

	// An absent cache file reads as empty, so every metric is a 404.
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 with no cache file, got %d", rec.Code)
	}
}

func TestReconCorruptCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DefaultCacheFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write cache: %v", err)
	}

	rec := httptest.NewRecorder()
	reconHandler(t, dir).ServeHTTP(rec, httptest.NewRequest("GET", "/recon/anything", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for corrupt cache, got %d", rec.Code)
	}
}

func TestReconMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	reconHandler(t, t.TempDir()).ServeHTTP(rec, httptest.NewRequest("POST", "/recon/container_count", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestReconPassthrough(t *testing.T) {
	rec := httptest.NewRecorder()
	reconHandler(t, t.TempDir()).ServeHTTP(rec, httptest.NewRequest("GET", "/a/c", nil))

	if rec.Body.String() != "downstream" {
		t.Errorf("non-recon request should pass through, got %q", rec.Body.String())
	}
}
