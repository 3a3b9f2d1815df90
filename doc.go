// Package pipekit provides a generic, config-driven object assembly and
// middleware pipeline composition engine.
//
// # Philosophy: Declarative Assembly
//
// A deployment is described, not coded: a sectioned conf file names the
// components of a request pipeline and the subsystems running beside it,
// and the engine turns that description into a live object graph.
//
//	[DEFAULT]
//	bind_port = 6201
//
//	[pipeline:main]
//	pipeline = healthcheck recon container-server
//
//	[filter:healthcheck]
//	use = egg:pipekit#healthcheck
//
//	[filter:recon]
//	use = egg:pipekit#recon
//	recon_cache_path = /var/cache/pipekit
//
//	[app:container-server]
//	use = egg:pipekit#container_store
//
//	[container-replicator]
//	interval = 30
//
// The pipeline value is an ordered list: every name but the last is a
// filter wrapping what follows it, the last is the terminal application.
// The first name is outermost. Factory references (egg:ns#name) resolve
// against an explicit registry; nothing is discovered implicitly.
//
// Pipekit MUST NOT contain:
//   - Subsystem semantics (replication, auditing, sync scheduling)
//   - Storage device or filesystem management
//   - Domain assumptions about what the composed handlers do
//
// Subsystem sections are exposed as effective settings only; their
// meaning belongs to the processes that consume them.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│            service                  │  Load conf, assemble the
//	│   (Load, Runtime, Manager)          │  pipeline, run subsystems
//	└─────────────────────────────────────┘
//	           ↓ drives
//	┌─────────────────────────────────────┐
//	│           assembly                  │  Resolve sections, compose
//	│   (Resolver, ComposedHandler)       │  filters around the app
//	└─────────────────────────────────────┘
//	           ↓ resolves via
//	┌─────────────────────────────────────┐
//	│     config  +  component            │  Parsed sections with DEFAULT
//	│  (Document, Settings, Registry)     │  overlay; factory registry
//	└─────────────────────────────────────┘
//
// # Packages
//
//   - config: conf parsing, DEFAULT inheritance, typed settings
//   - component: factory keys, registry, middleware contract
//   - assembly: section resolution and pipeline composition
//   - service: top-level loading plus subsystem lifecycle
//   - errors: classified error taxonomy shared by all packages
//   - metric: prometheus registry and core engine metrics
//   - filter/..., app/...: built-in pipeline components
//   - componentregistry: wires the built-ins into a registry
//
// # Quick Start
//
//	registry := component.NewRegistry()
//	if err := componentregistry.Register(registry); err != nil {
//		log.Fatal(err)
//	}
//
//	runtime, err := service.LoadFile("configs/container-server.conf", registry)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	http.ListenAndServe(":6201", runtime.Pipeline)
//
// Every load failure is fatal to that load: unknown factories, cyclic
// pipelines, malformed sections, and schema violations all surface as
// classified errors before any handler serves traffic.
package pipekit
