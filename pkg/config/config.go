package config

import (
	"time"

	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// Config is the complete configuration.
type Config struct {
	// Name identifies this instance in logs, traces and metrics
	Name string `yaml:"name" json:"name"`

	Paging         PagingConfig         `yaml:"paging" json:"paging"`
	PropertyServer PropertyServerConfig `yaml:"property_server" json:"property_server"`
	Reliability    ReliabilityConfig    `yaml:"reliability" json:"reliability"`
	Observability  ObservabilityConfig  `yaml:"observability" json:"observability"`
	Export         ExportConfig         `yaml:"export" json:"export"`
}

// PagingConfig controls the paging iterators.
type PagingConfig struct {
	// MaxCacheSize is the number of elements fetched per page
	MaxCacheSize int `yaml:"max_cache_size" json:"max_cache_size"`
}

// PropertyServerConfig selects and configures the property server backend.
type PropertyServerConfig struct {
	// Type is the registered backend name (memory, postgres, mysql, mongodb, rest)
	Type     string        `yaml:"type" json:"type"`
	// URL is the base URL of a remote property server (rest)
	URL      string        `yaml:"url" json:"url"`
	// DSN is the connection string of a database backend
	DSN      string        `yaml:"dsn" json:"dsn"`
	// Database names the MongoDB database
	Database string        `yaml:"database" json:"database"`
	// Fixture is a JSON file preloaded into the memory backend
	Fixture  string        `yaml:"fixture" json:"fixture"`
	// Timeout bounds every call to the backend
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	Auth     AuthConfig    `yaml:"auth" json:"auth"`
}

// AuthConfig holds OAuth2 client credentials for the rest backend.
type AuthConfig struct {
	ClientID     string   `yaml:"client_id" json:"client_id"`
	ClientSecret string   `yaml:"client_secret" json:"client_secret"`
	TokenURL     string   `yaml:"token_url" json:"token_url"`
	Scopes       []string `yaml:"scopes" json:"scopes"`
}

// Enabled reports whether client credentials are configured.
func (a AuthConfig) Enabled() bool {
	return a.ClientID != "" && a.TokenURL != ""
}

// ReliabilityConfig contains retry, circuit breaker and rate limit settings for
// remote backends.
type ReliabilityConfig struct {
	// RetryAttempts is the number of attempts per call, 1 disables retries
	RetryAttempts    int           `yaml:"retry_attempts" json:"retry_attempts"`
	// RetryDelay is the initial delay between attempts
	RetryDelay       time.Duration `yaml:"retry_delay" json:"retry_delay"`
	// MaxRetryDelay caps the delay between attempts
	MaxRetryDelay    time.Duration `yaml:"max_retry_delay" json:"max_retry_delay"`
	// RetryMultiplier grows the delay after each attempt
	RetryMultiplier  float64       `yaml:"retry_multiplier" json:"retry_multiplier"`
	CircuitBreaker   bool          `yaml:"circuit_breaker" json:"circuit_breaker"`
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold int           `yaml:"failure_threshold" json:"failure_threshold"`
	// SuccessThreshold is the number of successes in half-open state that closes it
	SuccessThreshold int           `yaml:"success_threshold" json:"success_threshold"`
	// OpenTimeout is how long the circuit stays open
	OpenTimeout      time.Duration `yaml:"open_timeout" json:"open_timeout"`
	// RateLimitPerSec limits calls per second (0 = unlimited)
	RateLimitPerSec  float64       `yaml:"rate_limit_per_sec" json:"rate_limit_per_sec"`
	RateLimitBurst   int           `yaml:"rate_limit_burst" json:"rate_limit_burst"`
}

// IsRateLimited returns true if rate limiting is enabled
func (r *ReliabilityConfig) IsRateLimited() bool {
	return r.RateLimitPerSec > 0
}

// ObservabilityConfig contains logging, metrics and tracing settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel        string `yaml:"log_level" json:"log_level"`
	// LogEncoding is json or console
	LogEncoding     string `yaml:"log_encoding" json:"log_encoding"`
	EnableMetrics   bool   `yaml:"enable_metrics" json:"enable_metrics"`
	// MetricsAddress is where serve exposes /metrics
	MetricsAddress  string `yaml:"metrics_address" json:"metrics_address"`
	EnableTracing   bool   `yaml:"enable_tracing" json:"enable_tracing"`
	// TracingExporter is stdout or none
	TracingExporter string `yaml:"tracing_exporter" json:"tracing_exporter"`
	ServiceName     string `yaml:"service_name" json:"service_name"`
}

// ExportConfig describes where asset exports go.
type ExportConfig struct {
	// Sink is file, s3 or gcs
	Sink            string `yaml:"sink" json:"sink"`
	// Path is the output directory of the file sink
	Path            string `yaml:"path" json:"path"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	// Prefix is prepended to every object key
	Prefix          string `yaml:"prefix" json:"prefix"`
	Region          string `yaml:"region" json:"region"`
	// Endpoint overrides the S3 endpoint, e.g. for MinIO
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	// Compression is none, gzip, zstd, s2, lz4, snappy or deflate
	Compression     string `yaml:"compression" json:"compression"`
	// CredentialsFile is a service account file for the gcs sink
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
}

// NewDefaultConfig returns a configuration that browses an in-memory property
// server and exports to the local file system.
func NewDefaultConfig() *Config {
	return &Config{
		Name: "ocf",
		Paging: PagingConfig{
			MaxCacheSize: 100,
		},
		PropertyServer: PropertyServerConfig{
			Type:    "memory",
			Timeout: 30 * time.Second,
		},
		Reliability: ReliabilityConfig{
			RetryAttempts:    3,
			RetryDelay:       200 * time.Millisecond,
			MaxRetryDelay:    5 * time.Second,
			RetryMultiplier:  2.0,
			CircuitBreaker:   true,
			FailureThreshold: 5,
			SuccessThreshold: 2,
			OpenTimeout:      30 * time.Second,
			RateLimitPerSec:  0,
			RateLimitBurst:   10,
		},
		Observability: ObservabilityConfig{
			LogLevel:        "info",
			LogEncoding:     "console",
			EnableMetrics:   false,
			MetricsAddress:  ":9090",
			EnableTracing:   false,
			TracingExporter: "stdout",
			ServiceName:     "ocf",
		},
		Export: ExportConfig{
			Sink:        "file",
			Path:        ".",
			Compression: "none",
		},
	}
}

var (
	sinks        = map[string]bool{"file": true, "s3": true, "gcs": true}
	compressions = map[string]bool{"none": true, "": true, "gzip": true, "zstd": true, "s2": true, "lz4": true, "snappy": true, "deflate": true}
	exporters    = map[string]bool{"stdout": true, "none": true, "": true}
)

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Name == "" {
		return configError("name is required", "name")
	}
	if c.Paging.MaxCacheSize < 1 {
		return configError("max_cache_size must be at least 1", "paging.max_cache_size")
	}
	if c.PropertyServer.Type == "" {
		return configError("property server type is required", "property_server.type")
	}
	if c.PropertyServer.Timeout < 0 {
		return configError("timeout cannot be negative", "property_server.timeout")
	}

	r := c.Reliability
	if r.RetryAttempts < 0 {
		return configError("retry_attempts cannot be negative", "reliability.retry_attempts")
	}
	if r.RetryAttempts > 1 && r.RetryMultiplier < 1 {
		return configError("retry_multiplier must be at least 1", "reliability.retry_multiplier")
	}
	if r.CircuitBreaker && (r.FailureThreshold < 1 || r.SuccessThreshold < 1) {
		return configError("circuit breaker thresholds must be positive", "reliability.failure_threshold")
	}
	if r.RateLimitPerSec < 0 {
		return configError("rate_limit_per_sec cannot be negative", "reliability.rate_limit_per_sec")
	}

	if !exporters[c.Observability.TracingExporter] {
		return configError("unknown tracing exporter "+c.Observability.TracingExporter, "observability.tracing_exporter")
	}

	if !sinks[c.Export.Sink] {
		return configError("unknown export sink "+c.Export.Sink, "export.sink")
	}
	if (c.Export.Sink == "s3" || c.Export.Sink == "gcs") && c.Export.Bucket == "" {
		return configError("bucket is required for "+c.Export.Sink+" exports", "export.bucket")
	}
	if !compressions[c.Export.Compression] {
		return configError("unknown compression "+c.Export.Compression, "export.compression")
	}
	return nil
}

func configError(msg, field string) error {
	return ocferrors.New(ocferrors.ErrorTypeConfig, msg).WithDetail("field", field)
}
