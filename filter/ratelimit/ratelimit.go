package ratelimit

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
	"github.com/c360/pipekit/errors"
)

// Defaults applied when settings omit the tunables.
const (
	DefaultRequestsPerSecond = 100.0
	DefaultBurst             = 200
)

// Schema validates the settings accepted by Factory.
const Schema = `{
	"type": "object",
	"properties": {
		"requests_per_second": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"},
		"burst": {"type": "string", "pattern": "^[0-9]+$"}
	}
}`

// Factory builds the rate limit middleware. A single limiter guards the
// whole chain; per-client budgets belong in front of the node.
func Factory(settings config.Settings, _ component.Dependencies) (component.Middleware, error) {
	rps := settings.GetFloat64("requests_per_second", DefaultRequestsPerSecond)
	burst := settings.GetInt("burst", DefaultBurst)

	if rps <= 0 {
		return nil, fmt.Errorf("requests_per_second must be positive, got %v: %w",
			rps, errors.ErrInvalidSettings)
	}
	if burst < 1 {
		return nil, fmt.Errorf("burst must be at least 1, got %d: %w",
			burst, errors.ErrInvalidSettings)
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				retryAfter := int(math.Ceil(1.0 / rps))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	}, nil
}

// Register registers the rate limit middleware with the given registry.
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Key:         "egg:pipekit#ratelimit",
		Kind:        component.KindFilter,
		Filter:      Factory,
		Schema:      Schema,
		Description: "Token bucket request throttle",
		Version:     "1.0.0",
	})
}
