package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable read by New.
const EnvPrefix = "ADMIN"

type Config interface {
	EnvConfig
	SessionConfig
	CacheConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetAPIBaseURL() string
	GetLogLevel() string
}

// Overrides carries values that take precedence over the environment,
// typically populated from command line flags. Empty fields are ignored.
type Overrides struct {
	APIBaseURL string
	LogLevel   string
}

type mainConfig struct {
	EnvVars
	Session
	Cache
}

// New reads the console configuration from ADMIN_* environment variables and
// applies any non-empty overrides on top.
func New(overrides Overrides) (Config, error) {
	var c mainConfig
	if err := envconfig.Process(EnvPrefix, &c.EnvVars); err != nil {
		return nil, fmt.Errorf("config.New env vars: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &c.Session); err != nil {
		return nil, fmt.Errorf("config.New session: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &c.Cache); err != nil {
		return nil, fmt.Errorf("config.New cache: %w", err)
	}

	if overrides.APIBaseURL != "" {
		c.APIBaseURL = overrides.APIBaseURL
	}
	if overrides.LogLevel != "" {
		c.LogLevel = overrides.LogLevel
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c mainConfig) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("config: %s_API_BASE_URL must not be empty", EnvPrefix)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("config: %s_REFRESH_INTERVAL must be positive", EnvPrefix)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("config: %s_CACHE_SIZE must be positive", EnvPrefix)
	}
	return nil
}
