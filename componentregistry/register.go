// Package componentregistry wires the built-in components into a
// factory registry under egg:pipekit# keys.
package componentregistry

import (
	"errors"

	"github.com/c360/pipekit/app/containerstore"
	"github.com/c360/pipekit/component"
	pkgerrors "github.com/c360/pipekit/errors"
	"github.com/c360/pipekit/filter/catcherrors"
	"github.com/c360/pipekit/filter/healthcheck"
	"github.com/c360/pipekit/filter/httpmetrics"
	"github.com/c360/pipekit/filter/ratelimit"
	"github.com/c360/pipekit/filter/recon"
	"github.com/c360/pipekit/filter/requestlog"
)

// Register registers every built-in component with the provided registry:
//
// Filters:
//   - healthcheck (egg:pipekit#healthcheck)
//   - recon (egg:pipekit#recon)
//   - requestlog (egg:pipekit#requestlog)
//   - ratelimit (egg:pipekit#ratelimit)
//   - catch_errors (egg:pipekit#catch_errors)
//   - httpmetrics (egg:pipekit#httpmetrics)
//
// Applications:
//   - container_store (egg:pipekit#container_store)
//
// Domain-specific components belong in their own modules and register
// themselves against the same registry.
func Register(registry *component.Registry) error {
	if registry == nil {
		return pkgerrors.WrapFatal(
			errors.New("registry cannot be nil"),
			"ComponentRegistry", "Register", "registry validation")
	}

	if err := healthcheck.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "healthcheck registration")
	}
	if err := recon.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "recon registration")
	}
	if err := requestlog.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "requestlog registration")
	}
	if err := ratelimit.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "ratelimit registration")
	}
	if err := catcherrors.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "catch_errors registration")
	}
	if err := httpmetrics.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "httpmetrics registration")
	}
	if err := containerstore.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "container_store registration")
	}

	return nil
}
