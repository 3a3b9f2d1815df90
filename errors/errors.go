// Package errors provides standardized error handling for pipekit's
// configuration and assembly layers. It defines the error taxonomy of the
// assembly engine, typed errors carrying diagnostic position (ParseError,
// AssemblyError), and helper functions for consistent error wrapping and
// classification.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for the assembly taxonomy. Every failure the
// engine can produce wraps exactly one of these, so callers can dispatch
// with errors.Is without string matching.
var (
	// Document errors
	ErrParse           = errors.New("malformed configuration")
	ErrSectionNotFound = errors.New("section not found")

	// Factory resolution errors
	ErrUnresolvedUse      = errors.New("malformed factory identifier")
	ErrUnknownFactory     = errors.New("factory not registered")
	ErrDuplicateFactory   = errors.New("factory already registered")
	ErrInvalidSettings    = errors.New("settings failed schema validation")
	ErrInvalidFactoryKind = errors.New("factory kind mismatch")

	// Composition errors
	ErrEmptyPipeline        = errors.New("pipeline has no components")
	ErrUnresolvableSection  = errors.New("section declares neither use nor pipeline")
	ErrCyclicPipeline       = errors.New("cyclic pipeline reference")
	ErrPipelineNotFound     = errors.New("entry-point pipeline section missing")
	ErrMissingConfig        = errors.New("missing required configuration")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrInstanceUnregistered = errors.New("subsystem runner not registered")
)

// ParseError reports a malformed configuration document. Line is 1-based;
// zero means the position is unknown.
type ParseError struct {
	Line    int
	Message string
}

func (pe *ParseError) Error() string {
	if pe.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", pe.Line, pe.Message)
	}
	return fmt.Sprintf("parse error: %s", pe.Message)
}

// Unwrap makes every ParseError match errors.Is(err, ErrParse).
func (pe *ParseError) Unwrap() error {
	return ErrParse
}

// NewParseError creates a ParseError for the given line
func NewParseError(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// AssemblyError wraps the first fatal error encountered while composing a
// pipeline, attaching the originating section name for diagnostics. The
// entire assembly aborts; no partially wired chain is ever returned.
type AssemblyError struct {
	Section string
	Err     error
}

func (ae *AssemblyError) Error() string {
	return fmt.Sprintf("assembly of section %q failed: %v", ae.Section, ae.Err)
}

// Unwrap returns the underlying cause
func (ae *AssemblyError) Unwrap() error {
	return ae.Err
}

// NewAssemblyError wraps err with the section that was being assembled.
// Nested AssemblyErrors are not re-wrapped: the innermost section is the
// useful diagnostic.
func NewAssemblyError(section string, err error) error {
	if err == nil {
		return nil
	}
	var ae *AssemblyError
	if errors.As(err, &ae) {
		return err
	}
	return &AssemblyError{Section: section, Err: err}
}

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsInvalid checks if an error is due to invalid input or configuration
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrParse) ||
		errors.Is(err, ErrUnresolvedUse) ||
		errors.Is(err, ErrInvalidSettings) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrEmptyPipeline) ||
		errors.Is(err, ErrUnresolvableSection)
}

// IsFatal checks if an error is fatal and should stop processing
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return errors.Is(err, ErrDuplicateFactory) ||
		errors.Is(err, ErrCyclicPipeline) ||
		errors.Is(err, ErrMissingConfig)
}

// Classify returns the error class for an error. Wrapped errors keep the
// class they were given; for everything else assembly has no retry path,
// so unknown errors default to invalid rather than transient: a broken
// configuration never fixes itself.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorInvalid
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	if IsFatal(err) {
		return ErrorFatal
	}
	return ErrorInvalid
}

// newClassified creates a new classified error
// This is an internal helper - use WrapInvalid() or WrapFatal() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrappedErr, component, method, wrappedErr.Error())
}

// WrapTransient wraps an error as transient with context. The assembly
// core never retries; subsystem supervision uses this to mark failures
// that a restart may clear.
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrappedErr, component, method, wrappedErr.Error())
}
