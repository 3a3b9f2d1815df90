package assembly

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
	"github.com/c360/pipekit/errors"
)

// Keys with composition semantics inside a section.
const (
	// UseKey names the factory that constructs the section's component.
	UseKey = "use"
	// PipelineKey holds the ordered component names of a composite section.
	PipelineKey = "pipeline"
)

// Component is the result of resolving one section: either a middleware
// (Kind == KindFilter) or a terminal handler (Kind == KindApp). Composite
// pipeline sections resolve to KindApp, which is what lets a pipeline be
// referenced as a component name elsewhere.
type Component struct {
	// Section is the qualified section name the component came from.
	Section string
	Kind    component.Kind
	App     http.Handler
	Filter  component.Middleware
}

// Resolver instantiates components from a document's sections using a
// factory registry. Resolution is deterministic and uncached: every
// Instantiate call invokes factories afresh, since components may hold
// mutable runtime state that must not be shared across independent
// assemblies. A Resolver is cheap to construct and not safe for
// concurrent use; build one per assembly.
type Resolver struct {
	doc      *config.Document
	registry *component.Registry
	deps     component.Dependencies
	logger   *slog.Logger

	// resolving guards recursive composite resolution against cycles.
	resolving map[string]bool
}

// NewResolver creates a resolver over the given document and registry.
func NewResolver(doc *config.Document, registry *component.Registry, deps component.Dependencies) *Resolver {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		doc:       doc,
		registry:  registry,
		deps:      deps,
		logger:    logger,
		resolving: make(map[string]bool),
	}
}

// Instantiate resolves the named section into a component.
//
// A section carrying a use key is a leaf: the key is parsed as a factory
// identifier, resolved through the registry, and the factory is invoked
// with the section's effective settings minus the use key itself. A
// section carrying a pipeline key instead is a composite and delegates to
// pipeline assembly. A section with neither fails with
// ErrUnresolvableSection.
func (r *Resolver) Instantiate(section string) (Component, error) {
	settings, err := r.doc.Effective(section)
	if err != nil {
		return Component{}, err
	}

	// The concrete factory wins when a section carries both keys.
	if settings.Has(UseKey) {
		return r.instantiateLeaf(section, settings)
	}

	if settings.Has(PipelineKey) {
		composed, err := r.Assemble(section)
		if err != nil {
			return Component{}, err
		}
		return Component{Section: section, Kind: component.KindApp, App: composed}, nil
	}

	return Component{}, fmt.Errorf("section %q: %w", section, errors.ErrUnresolvableSection)
}

func (r *Resolver) instantiateLeaf(section string, settings config.Settings) (Component, error) {
	useValue := settings.GetString(UseKey, "")
	key, err := component.ParseFactoryKey(useValue)
	if err != nil {
		return Component{}, fmt.Errorf("section %q: %w", section, err)
	}

	registration, err := r.registry.Resolve(key)
	if err != nil {
		return Component{}, fmt.Errorf("section %q: %w", section, err)
	}

	factoryConfig := settings.Without(UseKey)
	if err := registration.ValidateSettings(factoryConfig); err != nil {
		return Component{}, fmt.Errorf("section %q: %w", section, err)
	}

	resolved := Component{Section: section, Kind: registration.Kind}
	switch registration.Kind {
	case component.KindApp:
		app, err := registration.App(factoryConfig, r.deps)
		if err != nil {
			return Component{}, errors.Wrap(err, "Resolver", "Instantiate",
				fmt.Sprintf("factory %s for section %q", key, section))
		}
		resolved.App = app
	case component.KindFilter:
		filter, err := registration.Filter(factoryConfig, r.deps)
		if err != nil {
			return Component{}, errors.Wrap(err, "Resolver", "Instantiate",
				fmt.Sprintf("factory %s for section %q", key, section))
		}
		resolved.Filter = filter
	}

	r.logger.Debug("Resolved component",
		"section", section,
		"factory", key.String(),
		"kind", string(registration.Kind))

	return resolved, nil
}
