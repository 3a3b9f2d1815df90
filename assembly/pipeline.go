package assembly

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/errors"
)

// ComposedHandler is the runtime object graph built from one pipeline
// section: an ordered chain of filters wrapping a terminal application.
// It is built once per assembly and may be invoked concurrently by the
// embedding service; rebuilding requires a fresh assembly.
type ComposedHandler struct {
	id       string
	pipeline string
	sections []string
	handler  http.Handler
}

// ServeHTTP dispatches the request into the outermost filter.
func (h *ComposedHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.handler.ServeHTTP(w, req)
}

// ID returns the unique identifier of this assembly.
func (h *ComposedHandler) ID() string { return h.id }

// Pipeline returns the section name the chain was assembled from.
func (h *ComposedHandler) Pipeline() string { return h.pipeline }

// Sections returns the qualified section names of the chain in
// composition order: outermost filter first, terminal application last.
func (h *ComposedHandler) Sections() []string {
	out := make([]string, len(h.sections))
	copy(out, h.sections)
	return out
}

// Depth returns the number of components in the chain.
func (h *ComposedHandler) Depth() int { return len(h.sections) }

// Assemble builds the named pipeline section into a composed handler.
//
// The section's pipeline key is read as a whitespace-separated ordered
// sequence of bare component names. Every name but the last resolves as
// filter:<name>; the last resolves as app:<name>. The first name is the
// outermost wrapper: first to observe an incoming request, last to
// observe the outgoing response. Any resolution failure aborts the entire
// assembly with an AssemblyError naming the failing section; a partially
// wired chain is never returned.
func (r *Resolver) Assemble(pipelineSection string) (*ComposedHandler, error) {
	if r.resolving[pipelineSection] {
		return nil, fmt.Errorf("section %q: %w", pipelineSection, errors.ErrCyclicPipeline)
	}
	r.resolving[pipelineSection] = true
	defer delete(r.resolving, pipelineSection)

	start := time.Now()
	composed, err := r.assemble(pipelineSection)
	r.recordAssembly(time.Since(start), composed, err)
	if err != nil {
		return nil, errors.NewAssemblyError(pipelineSection, err)
	}

	r.logger.Info("Assembled pipeline",
		"pipeline", pipelineSection,
		"assembly_id", composed.id,
		"components", composed.sections)

	return composed, nil
}

func (r *Resolver) assemble(pipelineSection string) (*ComposedHandler, error) {
	settings, err := r.doc.Effective(pipelineSection)
	if err != nil {
		return nil, err
	}

	names := settings.GetList(PipelineKey)
	if len(names) == 0 {
		return nil, errors.ErrEmptyPipeline
	}

	// Resolve the terminal application first: a broken tail makes the
	// filters irrelevant.
	appSection := "app:" + names[len(names)-1]
	terminal, err := r.Instantiate(appSection)
	if err != nil {
		return nil, err
	}
	if terminal.Kind != component.KindApp {
		return nil, fmt.Errorf("section %q resolves to a filter in terminal position: %w",
			appSection, errors.ErrInvalidFactoryKind)
	}

	filters := make([]Component, 0, len(names)-1)
	for _, name := range names[:len(names)-1] {
		filterSection := "filter:" + name
		resolved, err := r.Instantiate(filterSection)
		if err != nil {
			return nil, err
		}
		if resolved.Kind != component.KindFilter {
			return nil, fmt.Errorf("section %q resolves to an application in filter position: %w",
				filterSection, errors.ErrInvalidFactoryKind)
		}
		filters = append(filters, resolved)
	}

	// Compose inside out: the last filter wraps the application, and each
	// earlier filter wraps the remainder of the chain.
	handler := terminal.App
	for i := len(filters) - 1; i >= 0; i-- {
		handler = filters[i].Filter(handler)
	}

	sections := make([]string, 0, len(names))
	for _, f := range filters {
		sections = append(sections, f.Section)
	}
	sections = append(sections, terminal.Section)

	return &ComposedHandler{
		id:       uuid.NewString(),
		pipeline: pipelineSection,
		sections: sections,
		handler:  handler,
	}, nil
}

// recordAssembly is nil-safe: assemblies run identically with metrics
// disabled.
func (r *Resolver) recordAssembly(elapsed time.Duration, composed *ComposedHandler, err error) {
	registry := r.deps.Metrics
	if registry == nil {
		return
	}

	core := registry.CoreMetrics()
	core.AssemblyDuration.Observe(elapsed.Seconds())
	if err != nil {
		core.AssembliesTotal.WithLabelValues("error").Inc()
		return
	}

	core.AssembliesTotal.WithLabelValues("success").Inc()
	core.PipelineDepth.Set(float64(composed.Depth()))
	core.ComponentsBuilt.WithLabelValues(string(component.KindFilter)).Add(float64(composed.Depth() - 1))
	core.ComponentsBuilt.WithLabelValues(string(component.KindApp)).Inc()
}
