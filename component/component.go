package component

import (
	"log/slog"
	"net/http"

	"github.com/c360/pipekit/config"
	"github.com/c360/pipekit/metric"
)

// Kind distinguishes the two component roles a pipeline composes.
type Kind string

const (
	// KindApp is a terminal, non-delegating handler: the last name in a
	// pipeline list.
	KindApp Kind = "app"
	// KindFilter is a middleware component that wraps and delegates to the
	// next element in a pipeline.
	KindFilter Kind = "filter"
)

// Middleware wraps the next handler in a pipeline. The returned handler
// observes the request before next and the response after it.
type Middleware func(next http.Handler) http.Handler

// Dependencies carries the shared collaborators a factory may use.
// Factories must not perform I/O; they only parse settings and capture
// dependencies for the component's serving phase.
type Dependencies struct {
	Logger  *slog.Logger
	Metrics *metric.MetricsRegistry
}

// NewDependencies fills in safe defaults for absent collaborators so
// factories can use deps.Logger unconditionally.
func NewDependencies(logger *slog.Logger, metrics *metric.MetricsRegistry) Dependencies {
	if logger == nil {
		logger = slog.Default()
	}
	return Dependencies{Logger: logger, Metrics: metrics}
}

// AppFactory constructs a terminal application from a section's effective
// settings (with the use key already removed).
type AppFactory func(settings config.Settings, deps Dependencies) (http.Handler, error)

// FilterFactory constructs a middleware from a section's effective
// settings (with the use key already removed).
type FilterFactory func(settings config.Settings, deps Dependencies) (Middleware, error)
