package requestlog

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
)

// RequestIDHeader carries the request ID on both request and response.
// An inbound value is kept, so IDs survive proxy hops.
const RequestIDHeader = "X-Request-Id"

// Schema validates the settings accepted by Factory.
const Schema = `{
	"type": "object",
	"properties": {
		"set_request_id": {"type": "string"}
	}
}`

// statusWriter captures the status code written downstream.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

// Factory builds the access log middleware. set_request_id (default
// true) controls whether missing request IDs are generated.
func Factory(settings config.Settings, deps component.Dependencies) (component.Middleware, error) {
	setRequestID := settings.GetBool("set_request_id", true)
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" && setRequestID {
				requestID = uuid.NewString()
				req.Header.Set(RequestIDHeader, requestID)
			}
			if requestID != "" {
				w.Header().Set(RequestIDHeader, requestID)
			}

			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(sw, req)

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			logger.Info("Request handled",
				"method", req.Method,
				"path", req.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", req.RemoteAddr,
				"request_id", requestID)
		})
	}, nil
}

// Register registers the request log middleware with the given registry.
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Key:         "egg:pipekit#requestlog",
		Kind:        component.KindFilter,
		Filter:      Factory,
		Schema:      Schema,
		Description: "Structured access logging with request ID propagation",
		Version:     "1.0.0",
	})
}
