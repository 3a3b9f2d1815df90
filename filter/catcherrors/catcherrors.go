package catcherrors

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
)

// Factory builds the panic recovery middleware. It takes no settings;
// configure it first in the pipeline so it wraps everything else.
func Factory(_ config.Settings, deps component.Dependencies) (component.Middleware, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Recovered from handler panic",
						"panic", r,
						"method", req.Method,
						"path", req.URL.Path,
						"stack", string(debug.Stack()))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, req)
		})
	}, nil
}

// Register registers the panic recovery middleware with the given registry.
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Key:         "egg:pipekit#catch_errors",
		Kind:        component.KindFilter,
		Filter:      Factory,
		Description: "Panic recovery returning 500 responses",
		Version:     "1.0.0",
	})
}
