// Package component defines the factory contract of the assembly engine:
// factory identifiers (FactoryKey), the process registry mapping
// identifiers to constructors (Registry), and the two component roles a
// pipeline composes (applications and filters).
//
// # Factory identifiers
//
// A configuration section names its constructor symbolically:
//
//	[filter:recon]
//	use = egg:pipekit#recon
//
// ParseFactoryKey splits the identifier into scheme, optional namespace,
// and name. The registry resolves the parsed key to a Registration holding
// the constructor; unresolved identifiers fail fast, never silently.
//
// # Registry discipline
//
// The Registry is constructed explicitly, populated during startup, and
// frozen by convention for the rest of the process lifetime. It is passed
// by reference into every resolution call (dependency injection) instead
// of living as a hidden global, so tests can build isolated registries per
// case. Registration is idempotent-checked: re-registering a key fails
// with ErrDuplicateFactory.
//
// # Component roles
//
// An application is a terminal http.Handler. A filter is a Middleware,
// func(next http.Handler) http.Handler, that wraps the remainder of the
// chain. Factories receive a section's effective settings (DEFAULT overlay
// applied, use key removed) plus shared Dependencies, and must not perform
// I/O; open-a-socket work belongs to the component's serving phase.
//
// Registrations may carry a JSON schema for their settings mapping,
// validated before instantiation so misconfiguration surfaces at assembly
// time with the section name attached, not at first request.
package component
