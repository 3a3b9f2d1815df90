// Package metric provides Prometheus metrics for the assembly engine.
//
// MetricsRegistry owns a private prometheus.Registry pre-populated with
// the core loader metrics (loads, assemblies, per-kind component builds,
// pipeline depth) plus Go runtime collectors. Components register their
// own collectors through RegisterCollector under a component/metric name
// pair; registering a pair again returns the collector already live, so
// reassembling a pipeline keeps its metric series intact.
//
// Metrics are optional throughout pipekit: every consumer tolerates a nil
// *MetricsRegistry, so tests and minimal embeddings skip the dependency
// entirely.
package metric
