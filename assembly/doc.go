// Package assembly turns configuration sections into running component
// graphs: the resolver instantiates leaf components through the factory
// registry, and the pipeline assembler chains filters around a terminal
// application into a single ComposedHandler.
//
// # Resolution
//
// A section resolves one of three ways:
//
//   - use = scheme:ns#name  →  leaf component via the registry
//   - pipeline = a b c      →  composite chain, assembled recursively
//   - neither               →  ErrUnresolvableSection
//
// # Composition order
//
// Given
//
//	[pipeline:main]
//	pipeline = healthcheck recon container-server
//
// the healthcheck filter is the outermost wrapper (first to observe an
// incoming request, last to observe the outgoing response), recon wraps
// the remainder, and container-server is the terminal application. This
// ordering is a strict contract: reversing it silently changes request
// semantics, so the package's tests assert order by literal example.
//
// # Failure semantics
//
// Assembly is all-or-nothing. The first resolution failure aborts the
// whole build with an AssemblyError naming the failing section; callers
// never see a partially wired chain. Self-referential composites fail
// with ErrCyclicPipeline rather than recursing forever.
//
// Assembly runs at startup, synchronously and deterministically, with no
// side effects on the document or registry. The ComposedHandler it
// returns is safe for concurrent use by the embedding service's workers.
package assembly
