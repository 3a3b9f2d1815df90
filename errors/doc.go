// Package errors provides standardized error handling patterns for pipekit.
//
// # Overview
//
// The package defines the closed error taxonomy of the assembly engine.
// Every failure produced by the document, registry, resolver, or assembler
// layers wraps exactly one of the sentinel variables (ErrParse,
// ErrUnknownFactory, ErrEmptyPipeline, ...), so embedding services dispatch
// with errors.Is rather than string matching.
//
// Two typed errors carry extra diagnostics:
//
//   - ParseError attaches the 1-based line number of a malformed document
//   - AssemblyError attaches the section being composed when a pipeline
//     build aborted, wrapping the first underlying cause
//
// Both support errors.Is/errors.As through Unwrap.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// applied by the Wrap family:
//
//	errors.Wrap(err, "Resolver", "Instantiate", "factory lookup")
//	errors.WrapInvalid(err, "Document", "Parse", "header validation")
//	errors.WrapFatal(err, "Registry", "Register", "duplicate factory check")
//
// # Classification
//
// Assembly is a one-shot startup computation with no retry path, so the
// classification system is deliberately skewed: unknown errors classify as
// invalid, and only registry collisions, cycles, and missing required
// configuration classify as fatal. There is no transient class in practice;
// recovery (for example falling back to a previous configuration) is the
// embedding service's decision.
package errors
