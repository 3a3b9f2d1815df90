package assembly

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
	pkgerrors "github.com/c360/pipekit/errors"
)

const traceHeader = "X-Trace"

// tagFilter stamps its configured tag onto the request trace header, so
// tests can assert composition order by literal example.
func tagFilter(settings config.Settings, _ component.Dependencies) (component.Middleware, error) {
	tag := settings.GetString("tag", "?")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			trace := req.Header.Get(traceHeader)
			if trace != "" {
				trace += " "
			}
			req.Header.Set(traceHeader, trace+tag)
			next.ServeHTTP(w, req)
		})
	}, nil
}

// echoApp terminates the chain by echoing the accumulated trace.
func echoApp(settings config.Settings, _ component.Dependencies) (http.Handler, error) {
	suffix := settings.GetString("suffix", "end")
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, "%s %s", req.Header.Get(traceHeader), suffix)
	}), nil
}

func testRegistry(t *testing.T) *component.Registry {
	t.Helper()
	registry := component.NewRegistry()
	require.NoError(t, registry.RegisterWithConfig(component.RegistrationConfig{
		Key: "egg:test#tag", Kind: component.KindFilter, Filter: tagFilter,
	}))
	require.NoError(t, registry.RegisterWithConfig(component.RegistrationConfig{
		Key: "egg:test#echo", Kind: component.KindApp, App: echoApp,
	}))
	return registry
}

func mustParse(t *testing.T, text string) *config.Document {
	t.Helper()
	doc, err := config.Parse(text)
	require.NoError(t, err)
	return doc
}

func serve(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestAssembleOrder(t *testing.T) {
	doc := mustParse(t, `
[pipeline:main]
pipeline = alpha beta server

[filter:alpha]
use = egg:test#tag
tag = alpha

[filter:beta]
use = egg:test#tag
tag = beta

[app:server]
use = egg:test#echo
suffix = served
`)

	resolver := NewResolver(doc, testRegistry(t), component.Dependencies{})
	composed, err := resolver.Assemble("pipeline:main")
	require.NoError(t, err)

	// First name in the list is outermost: its tag lands first.
	assert.Equal(t, "alpha beta served", serve(t, composed))
	assert.Equal(t, []string{"filter:alpha", "filter:beta", "app:server"}, composed.Sections())
	assert.Equal(t, 3, composed.Depth())
	assert.Equal(t, "pipeline:main", composed.Pipeline())
	assert.NotEmpty(t, composed.ID())
}

func TestAssembleOrderSwapped(t *testing.T) {
	doc := mustParse(t, `
[pipeline:main]
pipeline = beta alpha server

[filter:alpha]
use = egg:test#tag
tag = alpha

[filter:beta]
use = egg:test#tag
tag = beta

[app:server]
use = egg:test#echo
suffix = served
`)

	resolver := NewResolver(doc, testRegistry(t), component.Dependencies{})
	composed, err := resolver.Assemble("pipeline:main")
	require.NoError(t, err)

	// Swapping the list order swaps which filter is outermost.
	assert.Equal(t, "beta alpha served", serve(t, composed))
	assert.Equal(t, []string{"filter:beta", "filter:alpha", "app:server"}, composed.Sections())
}

func TestAssembleDeterministic(t *testing.T) {
	doc := mustParse(t, `
[pipeline:main]
pipeline = alpha server

[filter:alpha]
use = egg:test#tag
tag = alpha

[app:server]
use = egg:test#echo
`)
	registry := testRegistry(t)

	first, err := NewResolver(doc, registry, component.Dependencies{}).Assemble("pipeline:main")
	require.NoError(t, err)
	second, err := NewResolver(doc, registry, component.Dependencies{}).Assemble("pipeline:main")
	require.NoError(t, err)

	assert.Equal(t, first.Sections(), second.Sections())
	assert.Equal(t, first.Depth(), second.Depth())
	assert.Equal(t, serve(t, first), serve(t, second))
	assert.NotEqual(t, first.ID(), second.ID(), "each assembly is a fresh object graph")
}

func TestAssembleSingleApp(t *testing.T) {
	doc := mustParse(t, `
[pipeline:main]
pipeline = server

[app:server]
use = egg:test#echo
suffix = alone
`)

	composed, err := NewResolver(doc, testRegistry(t), component.Dependencies{}).Assemble("pipeline:main")
	require.NoError(t, err)
	assert.Equal(t, " alone", serve(t, composed))
	assert.Equal(t, []string{"app:server"}, composed.Sections())
}

func TestAssembleEmptyPipeline(t *testing.T) {
	doc := mustParse(t, `
[pipeline:main]
pipeline =
`)

	_, err := NewResolver(doc, testRegistry(t), component.Dependencies{}).Assemble("pipeline:main")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrEmptyPipeline)

	var ae *pkgerrors.AssemblyError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "pipeline:main", ae.Section)
}

func TestAssembleMissingSection(t *testing.T) {
	doc := mustParse(t, `
[pipeline:main]
pipeline = ghost server

[app:server]
use = egg:test#echo
`)

	_, err := NewResolver(doc, testRegistry(t), component.Dependencies{}).Assemble("pipeline:main")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrSectionNotFound)
	assert.Contains(t, err.Error(), "filter:ghost")
}

func TestAssembleUnknownFactory(t *testing.T) {
	doc := mustParse(t, `
[pipeline:main]
pipeline = server

[app:server]
use = egg:elsewhere#container
`)

	_, err := NewResolver(doc, testRegistry(t), component.Dependencies{}).Assemble("pipeline:main")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrUnknownFactory)

	var ae *pkgerrors.AssemblyError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "pipeline:main", ae.Section)
}

func TestAssembleMalformedUse(t *testing.T) {
	doc := mustParse(t, `
[pipeline:main]
pipeline = server

[app:server]
use = not-an-identifier
`)

	_, err := NewResolver(doc, testRegistry(t), component.Dependencies{}).Assemble("pipeline:main")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrUnresolvedUse)
}

func TestAssembleKindMismatch(t *testing.T) {
	// A filter factory referenced from terminal position must fail: the
	// chain would have no terminal handler.
	doc := mustParse(t, `
[pipeline:main]
pipeline = server

[app:server]
use = egg:test#tag
`)

	_, err := NewResolver(doc, testRegistry(t), component.Dependencies{}).Assemble("pipeline:main")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidFactoryKind)
}

func TestInstantiateUnresolvableSection(t *testing.T) {
	doc := mustParse(t, `
[container-replicator]
interval = 30
`)

	_, err := NewResolver(doc, testRegistry(t), component.Dependencies{}).Instantiate("container-replicator")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrUnresolvableSection)
}

func TestInstantiateStripsUseKey(t *testing.T) {
	doc := mustParse(t, `
[DEFAULT]
region = gulf

[app:server]
use = egg:probe#settings
suffix = kept
`)

	var seen config.Settings
	registry := component.NewRegistry()
	require.NoError(t, registry.RegisterWithConfig(component.RegistrationConfig{
		Key:  "egg:probe#settings",
		Kind: component.KindApp,
		App: func(settings config.Settings, _ component.Dependencies) (http.Handler, error) {
			seen = settings
			return http.NotFoundHandler(), nil
		},
	}))

	_, err := NewResolver(doc, registry, component.Dependencies{}).Instantiate("app:server")
	require.NoError(t, err)

	assert.False(t, seen.Has("use"), "factories never see the use key")
	assert.Equal(t, "kept", seen.GetString("suffix", ""))
	assert.Equal(t, "gulf", seen.GetString("region", ""), "DEFAULT overlay reaches the factory")
}

func TestInstantiateFactoryFailure(t *testing.T) {
	doc := mustParse(t, `
[app:server]
use = egg:fail#always
`)

	registry := component.NewRegistry()
	require.NoError(t, registry.RegisterWithConfig(component.RegistrationConfig{
		Key:  "egg:fail#always",
		Kind: component.KindApp,
		App: func(_ config.Settings, _ component.Dependencies) (http.Handler, error) {
			return nil, fmt.Errorf("refusing to build")
		},
	}))

	_, err := NewResolver(doc, registry, component.Dependencies{}).Instantiate("app:server")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to build")
	assert.Contains(t, err.Error(), "app:server")
}

func TestAssembleNestedPipeline(t *testing.T) {
	doc := mustParse(t, `
[pipeline:main]
pipeline = alpha inner

[filter:alpha]
use = egg:test#tag
tag = alpha

[app:inner]
pipeline = beta server

[filter:beta]
use = egg:test#tag
tag = beta

[app:server]
use = egg:test#echo
suffix = nested
`)

	composed, err := NewResolver(doc, testRegistry(t), component.Dependencies{}).Assemble("pipeline:main")
	require.NoError(t, err)

	// The composite app:inner expands to beta wrapping the terminal, so
	// the full path is alpha -> beta -> server.
	assert.Equal(t, "alpha beta nested", serve(t, composed))
	assert.Equal(t, []string{"filter:alpha", "app:inner"}, composed.Sections())
}

func TestAssembleCyclicPipeline(t *testing.T) {
	doc := mustParse(t, `
[pipeline:main]
pipeline = inner

[app:inner]
pipeline = inner
`)

	_, err := NewResolver(doc, testRegistry(t), component.Dependencies{}).Assemble("pipeline:main")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrCyclicPipeline)
	assert.Contains(t, err.Error(), "app:inner")
}

func TestAssembleSchemaViolation(t *testing.T) {
	doc := mustParse(t, `
[pipeline:main]
pipeline = server

[app:server]
use = egg:test#strict
workers = many
`)

	registry := component.NewRegistry()
	require.NoError(t, registry.RegisterWithConfig(component.RegistrationConfig{
		Key:  "egg:test#strict",
		Kind: component.KindApp,
		App:  echoApp,
		Schema: `{
			"type": "object",
			"properties": {"workers": {"type": "string", "pattern": "^[0-9]+$"}}
		}`,
	}))

	_, err := NewResolver(doc, registry, component.Dependencies{}).Assemble("pipeline:main")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidSettings)
}
