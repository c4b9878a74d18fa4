package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.Paging.MaxCacheSize)
	assert.Equal(t, "memory", cfg.PropertyServer.Type)
	assert.False(t, cfg.Reliability.IsRateLimited())
	assert.False(t, cfg.PropertyServer.Auth.Enabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing name", func(c *Config) { c.Name = "" }, "name"},
		{"zero cache", func(c *Config) { c.Paging.MaxCacheSize = 0 }, "paging.max_cache_size"},
		{"missing type", func(c *Config) { c.PropertyServer.Type = "" }, "property_server.type"},
		{"negative retries", func(c *Config) { c.Reliability.RetryAttempts = -1 }, "reliability.retry_attempts"},
		{"shrinking delay", func(c *Config) { c.Reliability.RetryMultiplier = 0.5 }, "reliability.retry_multiplier"},
		{"breaker threshold", func(c *Config) { c.Reliability.FailureThreshold = 0 }, "reliability.failure_threshold"},
		{"negative rate", func(c *Config) { c.Reliability.RateLimitPerSec = -1 }, "reliability.rate_limit_per_sec"},
		{"unknown exporter", func(c *Config) { c.Observability.TracingExporter = "jaeger" }, "observability.tracing_exporter"},
		{"unknown sink", func(c *Config) { c.Export.Sink = "ftp" }, "export.sink"},
		{"s3 without bucket", func(c *Config) { c.Export.Sink = "s3" }, "export.bucket"},
		{"unknown compression", func(c *Config) { c.Export.Compression = "brotli" }, "export.compression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeConfig))

			var oe *ocferrors.Error
			require.ErrorAs(t, err, &oe)
			field, ok := oe.Detail("field")
			require.True(t, ok)
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("OCF_TEST_DSN", "postgres://reader@db/meta")

	path := filepath.Join(t.TempDir(), "ocf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: catalog
paging:
  max_cache_size: 25
property_server:
  type: postgres
  dsn: ${OCF_TEST_DSN}
  database: ${OCF_TEST_UNSET:-metadata}
  timeout: 5s
reliability:
  retry_attempts: 1
  rate_limit_per_sec: 2.5
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "catalog", cfg.Name)
	assert.Equal(t, 25, cfg.Paging.MaxCacheSize)
	assert.Equal(t, "postgres://reader@db/meta", cfg.PropertyServer.DSN)
	assert.Equal(t, "metadata", cfg.PropertyServer.Database)
	assert.Equal(t, 5*time.Second, cfg.PropertyServer.Timeout)
	assert.True(t, cfg.Reliability.IsRateLimited())
	// untouched sections keep their defaults
	assert.Equal(t, "file", cfg.Export.Sink)
	assert.True(t, cfg.Reliability.CircuitBreaker)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeConfig))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paging: [1, 2"), 0o600))
	_, err = Load(path)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeConfig))
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.PropertyServer.Auth.Scopes = []string{"metadata.read"}
	path := filepath.Join(t.TempDir(), "out.yaml")

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("OCF_A", "x${OCF_B}")
	t.Setenv("OCF_B", "y")

	assert.Equal(t, "x${OCF_B}-", substituteEnvVars("${OCF_A}-${OCF_UNSET}"))
	assert.Equal(t, "d", substituteEnvVars("${OCF_UNSET:-d}"))
	assert.Equal(t, "open ${", substituteEnvVars("open ${"))
}
