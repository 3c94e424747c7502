package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/site-admin-console/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c, err := config.New(config.Overrides{})
	require.NoError(t, err)

	require.Equal(t, "Site Admin", c.GetAppName())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:8080/api", c.GetAPIBaseURL())
	require.Equal(t, "info", c.GetLogLevel())
	require.Equal(t, 10*time.Minute, c.GetRefreshInterval())
	require.Equal(t, 15*time.Second, c.GetRequestTimeout())
	require.Equal(t, 256, c.GetCacheSize())
	require.Equal(t, 5*time.Minute, c.GetCacheTTL())
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("ADMIN_API_BASE_URL", "https://cms.example.com/api/")
	t.Setenv("ADMIN_ENV", "prod")
	t.Setenv("ADMIN_REFRESH_INTERVAL", "4m")
	t.Setenv("ADMIN_CACHE_SIZE", "32")

	c, err := config.New(config.Overrides{})
	require.NoError(t, err)

	require.Equal(t, "https://cms.example.com/api", c.GetAPIBaseURL())
	require.Equal(t, "PROD", c.GetEnv())
	require.Equal(t, 4*time.Minute, c.GetRefreshInterval())
	require.Equal(t, 32, c.GetCacheSize())
}

func TestNew_OverridesWin(t *testing.T) {
	t.Setenv("ADMIN_API_BASE_URL", "https://cms.example.com/api")
	t.Setenv("ADMIN_LOG_LEVEL", "warn")

	c, err := config.New(config.Overrides{APIBaseURL: "http://127.0.0.1:9000", LogLevel: "DEBUG"})
	require.NoError(t, err)

	require.Equal(t, "http://127.0.0.1:9000", c.GetAPIBaseURL())
	require.Equal(t, "debug", c.GetLogLevel())
}

func TestNew_Invalid(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("ADMIN_REFRESH_INTERVAL", "soon")
		_, err := config.New(config.Overrides{})
		require.Error(t, err)
	})

	t.Run("non-positive interval", func(t *testing.T) {
		t.Setenv("ADMIN_REFRESH_INTERVAL", "0s")
		_, err := config.New(config.Overrides{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "REFRESH_INTERVAL")
	})

	t.Run("non-positive cache size", func(t *testing.T) {
		t.Setenv("ADMIN_CACHE_SIZE", "0")
		_, err := config.New(config.Overrides{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "CACHE_SIZE")
	})
}
