// Package models - configuration tree.
//
// The tree is deliberately flat: one struct per concern, every field reachable
// from YAML and from CUSTOMER_SERVICE_* environment variables. Validation
// lives next to the types so a loaded Config is either usable or rejected
// with a message naming the offending section.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Storage backend identifiers accepted in StorageConfig.Type.
const (
	StorageTypeJSON     = "json"
	StorageTypeMemory   = "memory"
	StorageTypePostgres = "postgres"
	StorageTypeSQLite   = "sqlite"
	StorageTypeMySQL    = "mysql"
)

// Config is the root of the configuration tree.
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Storage       StorageConfig       `yaml:"storage" json:"storage"`
	Security      SecurityConfig      `yaml:"security" json:"security"`
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`
	Cache         CacheConfig         `yaml:"cache" json:"cache"`
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// ServerConfig holds the HTTP listener settings. TLS is optional; most
// deployments terminate TLS at the ingress and leave it disabled here.
type ServerConfig struct {
	Port         int           `yaml:"port" json:"port"`
	Host         string        `yaml:"host" json:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	TLSEnabled   bool          `yaml:"tls_enabled" json:"tls_enabled"`
	TLSCertFile  string        `yaml:"tls_cert_file" json:"tls_cert_file"`
	TLSKeyFile   string        `yaml:"tls_key_file" json:"tls_key_file"`
	CORS         CORSConfig    `yaml:"cors" json:"cors"`
}

type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
	MaxAge         int      `yaml:"max_age" json:"max_age"`
}

// StorageConfig selects and parameterizes a backend. Path applies to the
// json type, Database to the postgres/sqlite/mysql types.
type StorageConfig struct {
	Type     string            `yaml:"type" json:"type"`
	Path     string            `yaml:"path" json:"path"`
	Database DatabaseConfig    `yaml:"database" json:"database"`
	Options  map[string]string `yaml:"options" json:"options"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" json:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" json:"conn_max_idle_time"`
}

// SecurityConfig covers rate limiting and proxy trust. TrustedProxies lists
// peer IPs or CIDRs whose X-Forwarded-For / X-Real-Ip headers are honored
// when resolving the client address; when empty, forwarding headers are
// trusted from any peer.
type SecurityConfig struct {
	RateLimit      RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	TrustedProxies []string        `yaml:"trusted_proxies" json:"trusted_proxies"`
}

type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int           `yaml:"burst_size" json:"burst_size"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// CacheConfig governs the read cache in front of the JSON file backend.
// Database backends ignore it.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// MetricsConfig exposes Prometheus metrics on a port of its own so the API
// surface stays single-port.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

// TracingConfig selects a span exporter. "stdout" prints spans for local
// debugging; "otlp" ships them to a collector over gRPC.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig returns the configuration the service runs with when
// nothing else is provided: port 8081, JSON file storage, rate limiting on,
// JSON logs on stdout, metrics on 9090, tracing off.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8081,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			TLSEnabled:   false,
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"*"},
				MaxAge:         86400,
			},
		},
		Storage: StorageConfig{
			Type: StorageTypeJSON,
			Path: "./data/customers.json",
			Database: DatabaseConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
				ConnMaxIdleTime: 5 * time.Minute,
			},
			Options: make(map[string]string),
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				BurstSize:         20,
				CleanupInterval:   5 * time.Minute,
			},
			TrustedProxies: []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "customer-service",
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   "stdout",
				SampleRate: 1.0,
			},
		},
	}
}

// Validate walks every section and reports the first failure, prefixed with
// the section name.
func (c *Config) Validate() error {
	sections := []struct {
		name  string
		check func() error
	}{
		{"server", c.Server.Validate},
		{"storage", c.Storage.Validate},
		{"security", c.Security.Validate},
		{"logging", c.Logging.Validate},
		{"cache", c.Cache.Validate},
		{"metrics", c.Metrics.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, s := range sections {
		if err := s.check(); err != nil {
			return fmt.Errorf("invalid %s config: %w", s.name, err)
		}
	}
	return nil
}

// oneOf reports whether v is among the allowed values.
func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}

func (sc *ServerConfig) Validate() error {
	if !validPort(sc.Port) {
		return errors.New("port must be between 1 and 65535")
	}
	if sc.Host == "" {
		return errors.New("host cannot be empty")
	}
	if sc.ReadTimeout < 0 || sc.WriteTimeout < 0 || sc.IdleTimeout < 0 {
		return errors.New("timeouts cannot be negative")
	}
	if sc.TLSEnabled {
		if sc.TLSCertFile == "" {
			return errors.New("TLS cert file is required when TLS is enabled")
		}
		if sc.TLSKeyFile == "" {
			return errors.New("TLS key file is required when TLS is enabled")
		}
	}
	return nil
}

func (stc *StorageConfig) Validate() error {
	switch {
	case !oneOf(stc.Type, StorageTypeJSON, StorageTypeMemory, StorageTypePostgres, StorageTypeSQLite, StorageTypeMySQL):
		return fmt.Errorf("invalid storage type: %s", stc.Type)
	case stc.Type == StorageTypeJSON && stc.Path == "":
		return errors.New("path is required for JSON storage")
	case oneOf(stc.Type, StorageTypePostgres, StorageTypeSQLite, StorageTypeMySQL) && stc.Database.DSN == "":
		return errors.New("database DSN is required for database storage")
	}
	return nil
}

func (sec *SecurityConfig) Validate() error {
	if !sec.RateLimit.Enabled {
		return nil
	}
	if sec.RateLimit.RequestsPerMinute < 0 {
		return errors.New("requests per minute cannot be negative")
	}
	if sec.RateLimit.BurstSize < 0 {
		return errors.New("burst size cannot be negative")
	}
	return nil
}

func (lc *LoggingConfig) Validate() error {
	if !oneOf(lc.Level, "debug", "info", "warn", "error") {
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}
	if !oneOf(lc.Format, "json", "text") {
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}
	if !oneOf(lc.Output, "stdout", "stderr", "file") {
		return fmt.Errorf("invalid log output: %s", lc.Output)
	}
	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when output is file")
	}
	return nil
}

func (cc *CacheConfig) Validate() error {
	if cc.Enabled && cc.TTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}
	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}
	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}
	if !validPort(mc.Port) {
		return errors.New("metrics port must be between 1 and 65535")
	}
	return nil
}

func (oc *ObservabilityConfig) Validate() error {
	if oc.ServiceName == "" {
		return errors.New("service name cannot be empty")
	}
	if !oc.Tracing.Enabled {
		return nil
	}
	switch oc.Tracing.Exporter {
	case "stdout":
	case "otlp":
		if oc.Tracing.OTLPEndpoint == "" {
			return errors.New("OTLP endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("invalid trace exporter: %s", oc.Tracing.Exporter)
	}
	if oc.Tracing.SampleRate < 0 || oc.Tracing.SampleRate > 1 {
		return errors.New("sample rate must be between 0 and 1")
	}
	return nil
}
