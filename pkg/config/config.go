package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config is the root configuration structure for Portico.
// It contains the listener, TLS credential, session, static content,
// extension API and telemetry settings.
type Config struct {
	// AppRoot is the directory every relative path in this configuration
	// is resolved against.
	// Default: "."
	AppRoot string `yaml:"app_root"`

	// Server contains listener and HTTP timeout configuration.
	Server ServerConfig `yaml:"server"`

	// TLS contains the credential file paths and TLS parameters.
	TLS TLSConfig `yaml:"tls"`

	// Session contains cookie and session store configuration.
	Session SessionConfig `yaml:"session"`

	// Secrets configures how ${secret:name} references are resolved.
	Secrets SecretsConfig `yaml:"secrets"`

	// Static contains the static content and view roots.
	Static StaticConfig `yaml:"static"`

	// API contains the namespace used for externally registered routes.
	API APIConfig `yaml:"api"`

	// HTTP contains request body and response compression settings.
	HTTP HTTPConfig `yaml:"http"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTPS listener.
type ServerConfig struct {
	// Host is the interface to bind. When empty the HOST environment
	// variable is used, then DefaultHost.
	Host string `yaml:"host"`

	// Port is the TCP port to bind. When zero the PORT environment
	// variable is used, then DefaultPort.
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// TLSConfig contains the credential paths and TLS parameters.
type TLSConfig struct {
	// KeyFile is the path to the PEM-encoded private key.
	KeyFile string `yaml:"key_file"`

	// CAFile is the path to the PEM-encoded certificate authority bundle.
	CAFile string `yaml:"ca_file"`

	// CertFile is the path to the PEM-encoded server certificate.
	CertFile string `yaml:"cert_file"`

	// MinVersion is the minimum TLS version to accept ("1.2" or "1.3").
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// CipherSuites restricts the TLS 1.2 cipher suites. Empty means Go defaults.
	CipherSuites []string `yaml:"cipher_suites"`

	// ClientAuth selects client certificate handling:
	// "none", "request", "require" or "verify_if_given".
	// Default: "none"
	ClientAuth string `yaml:"client_auth"`

	// Watch reloads the served certificate when the credential files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is how long to wait after a file event before reloading.
	// Default: 250ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// SessionConfig contains cookie and session store configuration.
type SessionConfig struct {
	// CookieSecret signs cookies and session identifiers. Required.
	CookieSecret string `yaml:"cookie_secret"`

	// CookieName is the name of the session identifier cookie.
	// Default: "portico.sid"
	CookieName string `yaml:"cookie_name"`

	// MaxAge is the session lifetime.
	// Default: 24h
	MaxAge time.Duration `yaml:"max_age"`

	// Backend selects the session backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// PruneSchedule is the cron expression for expired session pruning.
	// Default: "@every 10m"
	PruneSchedule string `yaml:"prune_schedule"`
}

// SecretsConfig configures the sources consulted for ${secret:name}
// references in secret-bearing fields such as session.cookie_secret.
type SecretsConfig struct {
	// EnvPrefix is prepended to the upper-cased secret name to form the
	// environment variable consulted first.
	// Default: "PORTICO_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir holds one file per secret, named after the secret. Optional.
	Dir string `yaml:"dir"`

	// Watch drops cached file secrets when files in Dir change.
	Watch bool `yaml:"watch"`

	// CacheTTL is how long a resolved secret is reused. A negative value
	// disables caching.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// SQLiteConfig configures the SQLite session backend.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/sessions.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// StaticConfig contains the static content and view roots.
type StaticConfig struct {
	// DocumentRoot is served at "/".
	// Default: "client/dist"
	DocumentRoot string `yaml:"document_root"`

	// ImageRoot is served at ImagePrefix.
	// Default: "content/img"
	ImageRoot string `yaml:"image_root"`

	// ImagePrefix is the mount point of ImageRoot.
	// Default: "/content/img"
	ImagePrefix string `yaml:"image_prefix"`

	// LanguageRoot is served at LanguagePrefix.
	// Default: "content/language"
	LanguageRoot string `yaml:"language_root"`

	// LanguagePrefix is the mount point of LanguageRoot.
	// Default: "/language"
	LanguagePrefix string `yaml:"language_prefix"`

	// ViewsRoot holds the root document and partial views.
	// Default: "client/dist/views"
	ViewsRoot string `yaml:"views_root"`
}

// APIConfig contains the namespace for externally registered routes.
type APIConfig struct {
	// Prefix is prepended to every route registered through the
	// extension bus.
	// Default: "/api/"
	Prefix string `yaml:"prefix"`
}

// HTTPConfig contains request body and compression settings.
type HTTPConfig struct {
	// BodyLimit is the maximum accepted request body size in bytes.
	// Default: 102400 (100KB)
	BodyLimit int64 `yaml:"body_limit"`

	// CompressionLevel is the gzip level (-1 for the library default).
	// Default: -1
	CompressionLevel int `yaml:"compression_level"`

	// CompressionMinSize is the smallest response that is compressed.
	// Default: 1024
	CompressionMinSize int `yaml:"compression_min_size"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint.
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "portico"
	Namespace string `yaml:"namespace"`

	// RequestDurationBuckets are the histogram buckets for request latency.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// Address returns the host and port to bind. Unset values fall back to the
// HOST and PORT environment variables and then to DefaultHost/DefaultPort.
func (s ServerConfig) Address() (string, int, error) {
	host := s.Host
	if host == "" {
		host = os.Getenv(EnvHost)
	}
	if host == "" {
		host = DefaultHost
	}

	if s.Port != 0 {
		return host, s.Port, nil
	}

	val := os.Getenv(EnvPort)
	if val == "" {
		return host, DefaultPort, nil
	}
	port, err := strconv.Atoi(val)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid %s environment value %q", EnvPort, val)
	}
	return host, port, nil
}

// ResolvePath resolves p against AppRoot. Absolute paths are returned unchanged.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	root := c.AppRoot
	if root == "" {
		root = DefaultAppRoot
	}
	return filepath.Join(root, p)
}
