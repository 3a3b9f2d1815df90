// Package config implements the document layer of pipekit: parsing
// line-oriented, sectioned key/value configuration into an ordered,
// immutable Document.
//
// # Grammar
//
// A document is a sequence of sections introduced by [kind:instance] or
// [kind] headers:
//
//	[DEFAULT]
//	bind_ip = 0.0.0.0
//	workers = 2
//
//	[pipeline:main]
//	pipeline = healthcheck recon container-server
//
//	[filter:recon]
//	use = egg:pipekit#recon
//
//	[app:container-server]
//	use = egg:pipekit#container-store
//
//	[container-replicator]
//	interval = 30
//
// Every `key = value` line (equivalently `key: value`) until the next
// header belongs to the current section. Blank lines and lines whose
// first non-blank character is '#' or ';' are ignored. An indented line
// continues the previous value. Section names are unique per document and
// lookups are case-sensitive.
//
// # DEFAULT inheritance
//
// The DEFAULT section's entries are inherited by all other sections unless
// overridden. Document.Effective computes the overlay as a pure function:
// the document never mutates after Parse, so repeated Effective calls for
// the same section always agree.
//
// # Settings
//
// The document stores raw strings. Settings adds consumer-side typed
// access: GetInt, GetBool (with the conf truthiness set 1/true/yes/on/t/y),
// GetDuration (bare numbers are seconds), and GetList (whitespace-split
// ordered values, used for pipeline specs).
package config
