package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360/pipekit/assembly"
	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
	"github.com/c360/pipekit/errors"
)

// DefaultPipelineSection is the entry pipeline assembled by Load unless
// overridden with WithPipeline.
const DefaultPipelineSection = "pipeline:main"

// Runtime is the result of one successful load: the composed request
// pipeline plus the effective settings of every subsystem section the
// document declares. A Runtime is immutable; reloading configuration
// means building a new one.
type Runtime struct {
	// Pipeline is the fully composed entry pipeline.
	Pipeline *assembly.ComposedHandler

	// Subsystems maps bare section names to their effective settings,
	// DEFAULT overlay applied. Composition sections (pipeline:*, app:*,
	// filter:*) and DEFAULT itself are not subsystems.
	Subsystems map[string]config.Settings

	// Document is the parsed source the runtime was built from.
	Document *config.Document
}

// Option adjusts how Load builds a Runtime.
type Option func(*loadOptions)

type loadOptions struct {
	pipeline string
	logger   *slog.Logger
	deps     component.Dependencies
	depsSet  bool
}

// WithPipeline overrides the entry pipeline section.
func WithPipeline(section string) Option {
	return func(o *loadOptions) { o.pipeline = section }
}

// WithLogger sets the logger used during loading and injected into
// component factories.
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) { o.logger = logger }
}

// WithDependencies sets the full dependency set injected into component
// factories. It takes precedence over WithLogger for the factory logger.
func WithDependencies(deps component.Dependencies) Option {
	return func(o *loadOptions) {
		o.deps = deps
		o.depsSet = true
	}
}

// Load parses configuration text, assembles the entry pipeline against
// the registry, and collects subsystem settings. The first error aborts
// the load; a Runtime is returned only when every section resolved.
func Load(text string, registry *component.Registry, opts ...Option) (*Runtime, error) {
	doc, err := config.Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "service", "Load", "parse configuration")
	}
	return loadDocument(doc, registry, opts...)
}

// LoadFile reads path and delegates to Load.
func LoadFile(path string, registry *component.Registry, opts ...Option) (*Runtime, error) {
	doc, err := config.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return loadDocument(doc, registry, opts...)
}

// loadDocument shares the assembly path between Load and LoadFile.
func loadDocument(doc *config.Document, registry *component.Registry, opts ...Option) (*Runtime, error) {
	options := loadOptions{
		pipeline: DefaultPipelineSection,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	deps := options.deps
	if !options.depsSet {
		deps = component.Dependencies{Logger: options.logger}
	}
	if deps.Logger == nil {
		deps.Logger = options.logger
	}

	if !doc.HasSection(options.pipeline) {
		recordLoad(deps, "error")
		return nil, fmt.Errorf("entry section %q: %w", options.pipeline, errors.ErrPipelineNotFound)
	}

	pipeline, err := assembly.NewResolver(doc, registry, deps).Assemble(options.pipeline)
	if err != nil {
		recordLoad(deps, "error")
		return nil, err
	}

	subsystems, err := collectSubsystems(doc)
	if err != nil {
		recordLoad(deps, "error")
		return nil, err
	}
	recordLoad(deps, "success")

	options.logger.Info("Loaded configuration",
		"pipeline", options.pipeline,
		"components", pipeline.Depth(),
		"subsystems", len(subsystems))

	return &Runtime{
		Pipeline:   pipeline,
		Subsystems: subsystems,
		Document:   doc,
	}, nil
}

// recordLoad is nil-safe: loads run identically with metrics disabled.
func recordLoad(deps component.Dependencies, result string) {
	if deps.Metrics == nil {
		return
	}
	deps.Metrics.CoreMetrics().LoadsTotal.WithLabelValues(result).Inc()
}

// collectSubsystems returns the effective settings of every
// non-composition section. A section with an empty body still appears:
// presence in the file declares the subsystem.
func collectSubsystems(doc *config.Document) (map[string]config.Settings, error) {
	subsystems := make(map[string]config.Settings)
	for _, name := range doc.SectionNames() {
		if isCompositionSection(name) {
			continue
		}
		settings, err := doc.Effective(name)
		if err != nil {
			return nil, err
		}
		subsystems[name] = settings
	}
	return subsystems, nil
}

func isCompositionSection(name string) bool {
	kind, _, qualified := strings.Cut(name, ":")
	if !qualified {
		return false
	}
	switch kind {
	case "pipeline", "app", "filter":
		return true
	}
	return false
}
