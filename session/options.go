package session

import (
	"time"

	"github.com/rs/zerolog"
)

const defaultRefreshTimeout = 15 * time.Second

type ControllerOption func(*Controller)

func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithIdentityScopes sets the cache prefixes invalidated on every successful
// login. Defaults to cache.IdentityScope.
func WithIdentityScopes(prefixes ...string) ControllerOption {
	return func(c *Controller) {
		c.identityScopes = append([]string(nil), prefixes...)
	}
}

// WithRefreshTimeout bounds each background refresh request.
func WithRefreshTimeout(timeout time.Duration) ControllerOption {
	return func(c *Controller) {
		c.refreshTimeout = timeout
	}
}
