package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/pipekit/config"
	"github.com/c360/pipekit/errors"
)

// Info holds metadata about a registered factory, without the factory
// functions themselves.
type Info struct {
	Kind        Kind   `json:"kind"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// Registration holds the factory functions and metadata for one factory
// identifier. Exactly one of App or Filter is set, matching Kind.
type Registration struct {
	Key         FactoryKey
	Kind        Kind
	App         AppFactory
	Filter      FilterFactory
	Schema      string // optional JSON schema for the settings mapping
	Description string
	Version     string

	compiledSchema *gojsonschema.Schema
}

// RegistrationConfig provides a clean API for factory registration.
// Key is the textual factory identifier (e.g. "egg:pipekit#recon").
type RegistrationConfig struct {
	Key         string
	Kind        Kind
	App         AppFactory
	Filter      FilterFactory
	Schema      string
	Description string
	Version     string
}

// Registry is the table mapping factory identifiers to constructors.
// It is populated at startup and read-only thereafter; resolution is pure
// lookup with no side effects. The registry is passed explicitly into
// every resolution call rather than living as a process-wide singleton,
// so tests construct isolated registries per case.
type Registry struct {
	mu        sync.RWMutex
	factories map[FactoryKey]*Registration
}

// NewRegistry creates a new empty factory registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[FactoryKey]*Registration),
	}
}

// Register adds a factory under its key. Re-registering an existing key
// fails with ErrDuplicateFactory; silent shadowing is never allowed.
func (r *Registry) Register(registration *Registration) error {
	if registration == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "registration validation")
	}
	if registration.Key.IsZero() {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "factory key validation")
	}

	switch registration.Kind {
	case KindApp:
		if registration.App == nil {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "app factory validation")
		}
	case KindFilter:
		if registration.Filter == nil {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "filter factory validation")
		}
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown factory kind %q", registration.Kind),
			"Registry", "Register", "factory kind validation")
	}

	if registration.Schema != "" {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(registration.Schema))
		if err != nil {
			return errors.WrapInvalid(err, "Registry", "Register", "settings schema compilation")
		}
		registration.compiledSchema = compiled
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[registration.Key]; exists {
		return errors.WrapFatal(
			fmt.Errorf("%w: %s", errors.ErrDuplicateFactory, registration.Key),
			"Registry", "Register", "duplicate factory check")
	}

	r.factories[registration.Key] = registration
	return nil
}

// RegisterWithConfig registers a factory using a configuration struct,
// parsing the textual key.
//
// Example usage:
//
//	registry.RegisterWithConfig(component.RegistrationConfig{
//	    Key:         "egg:pipekit#healthcheck",
//	    Kind:        component.KindFilter,
//	    Filter:      healthcheck.New,
//	    Description: "liveness endpoint filter",
//	    Version:     "1.0.0",
//	})
func (r *Registry) RegisterWithConfig(cfg RegistrationConfig) error {
	key, err := ParseFactoryKey(cfg.Key)
	if err != nil {
		return errors.WrapInvalid(err, "Registry", "RegisterWithConfig", "factory key parsing")
	}

	return r.Register(&Registration{
		Key:         key,
		Kind:        cfg.Kind,
		App:         cfg.App,
		Filter:      cfg.Filter,
		Schema:      cfg.Schema,
		Description: cfg.Description,
		Version:     cfg.Version,
	})
}

// Resolve returns the registration for key, or ErrUnknownFactory.
func (r *Registry) Resolve(key FactoryKey) (*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registration, exists := r.factories[key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownFactory, key)
	}
	return registration, nil
}

// ListFactories returns metadata for all registered factories, keyed by
// the canonical textual identifier. Factory functions are not exposed.
func (r *Registry) ListFactories() map[string]Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Info, len(r.factories))
	for key, registration := range r.factories {
		result[key.String()] = Info{
			Kind:        registration.Kind,
			Description: registration.Description,
			Version:     registration.Version,
		}
	}
	return result
}

// Keys returns all registered factory identifiers in sorted textual order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.factories))
	for key := range r.factories {
		keys = append(keys, key.String())
	}
	sort.Strings(keys)
	return keys
}

// ValidateSettings checks settings against the registration's JSON schema,
// if one was provided. Violations fail with ErrInvalidSettings listing
// every failed constraint.
func (reg *Registration) ValidateSettings(settings config.Settings) error {
	if reg.compiledSchema == nil {
		return nil
	}

	doc := make(map[string]any, len(settings))
	for k, v := range settings {
		doc[k] = v
	}

	result, err := reg.compiledSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return errors.Wrap(err, "Registration", "ValidateSettings", "schema evaluation")
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("%w for %s: %s",
			errors.ErrInvalidSettings, reg.Key, joinDetails(details))
	}
	return nil
}

func joinDetails(details []string) string {
	switch len(details) {
	case 0:
		return "unspecified violation"
	case 1:
		return details[0]
	default:
		out := details[0]
		for _, d := range details[1:] {
			out += "; " + d
		}
		return out
	}
}
