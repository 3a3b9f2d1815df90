package healthcheck

import (
	"net/http"
	"os"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
)

// Path is the request path the middleware intercepts.
const Path = "/healthcheck"

// Schema validates the settings accepted by Factory.
const Schema = `{
	"type": "object",
	"properties": {
		"disable_path": {"type": "string"}
	}
}`

// Factory builds the healthcheck middleware. The disable_path setting
// is optional; when empty the endpoint is always healthy.
func Factory(settings config.Settings, deps component.Dependencies) (component.Middleware, error) {
	disablePath := settings.GetString("disable_path", "")
	logger := deps.Logger

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.URL.Path != Path {
				next.ServeHTTP(w, req)
				return
			}

			if disablePath != "" {
				if _, err := os.Stat(disablePath); err == nil {
					if logger != nil {
						logger.Debug("Healthcheck disabled by file", "disable_path", disablePath)
					}
					w.WriteHeader(http.StatusServiceUnavailable)
					w.Write([]byte("DISABLED BY FILE"))
					return
				}
			}

			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
	}, nil
}

// Register registers the healthcheck middleware with the given registry.
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Key:         "egg:pipekit#healthcheck",
		Kind:        component.KindFilter,
		Filter:      Factory,
		Schema:      Schema,
		Description: "Health check endpoint with file-based disabling",
		Version:     "1.0.0",
	})
}
