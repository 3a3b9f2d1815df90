// Package httpmetrics provides request count and latency metrics for
// the pipeline it is configured into. Metrics are registered against
// the injected registry; with no registry the middleware is a no-op
// passthrough.
package httpmetrics
