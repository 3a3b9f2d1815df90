package recon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
)

// Prefix is the path prefix the middleware intercepts.
const Prefix = "/recon/"

// Defaults mirroring the conf file this middleware is configured from.
const (
	DefaultCachePath = "/var/cache/pipekit"
	DefaultCacheFile = "container.recon"
)

// Schema validates the settings accepted by Factory.
const Schema = `{
	"type": "object",
	"properties": {
		"recon_cache_path": {"type": "string"},
		"recon_cache_file": {"type": "string"}
	}
}`

type handler struct {
	next      http.Handler
	cachePath string
	logger    *slog.Logger
}

// Factory builds the recon middleware. recon_cache_path names the cache
// directory and recon_cache_file the JSON file inside it.
func Factory(settings config.Settings, deps component.Dependencies) (component.Middleware, error) {
	dir := settings.GetString("recon_cache_path", DefaultCachePath)
	file := settings.GetString("recon_cache_file", DefaultCacheFile)
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return &handler{
			next:      next,
			cachePath: filepath.Join(dir, file),
			logger:    logger,
		}
	}, nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	metric, ok := strings.CutPrefix(req.URL.Path, Prefix)
	if !ok || metric == "" {
		h.next.ServeHTTP(w, req)
		return
	}

	if req.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	cache, err := h.loadCache()
	if err != nil {
		h.logger.Error("Failed to read recon cache", "path", h.cachePath, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	value, found := cache[metric]
	if !found {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{metric: value}); err != nil {
		h.logger.Error("Failed to encode recon response", "metric", metric, "error", err)
	}
}

// Register registers the recon middleware with the given registry.
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Key:         "egg:pipekit#recon",
		Kind:        component.KindFilter,
		Filter:      Factory,
		Schema:      Schema,
		Description: "Node diagnostics served from a JSON cache file",
		Version:     "1.0.0",
	})
}

func (h *handler) loadCache() (map[string]any, error) {
	data, err := os.ReadFile(h.cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No drops yet: an empty cache, not an error.
			return map[string]any{}, nil
		}
		return nil, err
	}

	var cache map[string]any
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	return cache, nil
}
