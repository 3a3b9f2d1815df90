package httpmetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
	"github.com/c360/pipekit/errors"
)

// DefaultComponentName labels the collectors when settings do not
// override it. Override when one pipeline carries several instances.
const DefaultComponentName = "pipeline"

// Schema validates the settings accepted by Factory.
const Schema = `{
	"type": "object",
	"properties": {
		"component_name": {"type": "string", "minLength": 1}
	}
}`

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(p)
}

// Factory builds the metrics middleware using the injected registry.
func Factory(settings config.Settings, deps component.Dependencies) (component.Middleware, error) {
	name := settings.GetString("component_name", DefaultComponentName)

	metrics, err := newRequestMetrics(deps.Metrics, name)
	if err != nil {
		return nil, errors.Wrap(err, "httpmetrics", "Factory", "register collectors")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, req)
				return
			}

			metrics.trackInFlight(1)
			defer metrics.trackInFlight(-1)

			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(sw, req)

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			metrics.recordRequest(req.Method, strconv.Itoa(sw.status), time.Since(start))
		})
	}, nil
}

// Register registers the metrics middleware with the given registry.
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Key:         "egg:pipekit#httpmetrics",
		Kind:        component.KindFilter,
		Filter:      Factory,
		Schema:      Schema,
		Description: "Request count and latency metrics",
		Version:     "1.0.0",
	})
}
