package config

import "time"

// Environment variables consulted when the listener address is not configured.
const (
	EnvHost = "HOST"
	EnvPort = "PORT"
)

// Default values for configuration fields.
const (
	DefaultAppRoot = "."

	// Server defaults
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8443
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// TLS defaults
	DefaultTLSMinVersion    = "1.2"
	DefaultTLSClientAuth    = "none"
	DefaultTLSWatchDebounce = 250 * time.Millisecond

	// Session defaults
	DefaultSessionCookieName    = "portico.sid"
	DefaultSessionMaxAge        = 24 * time.Hour
	DefaultSessionBackend       = "memory"
	DefaultSessionSQLitePath    = "data/sessions.db"
	DefaultSessionBusyTimeout   = 5 * time.Second
	DefaultSessionPruneSchedule = "@every 10m"

	// Secrets defaults
	DefaultSecretsEnvPrefix = "PORTICO_SECRET_"
	DefaultSecretsCacheTTL  = 5 * time.Minute

	// Static defaults
	DefaultDocumentRoot   = "client/dist"
	DefaultImageRoot      = "content/img"
	DefaultImagePrefix    = "/content/img"
	DefaultLanguageRoot   = "content/language"
	DefaultLanguagePrefix = "/language"
	DefaultViewsRoot      = "client/dist/views"

	// API defaults
	DefaultAPIPrefix = "/api/"

	// HTTP defaults
	DefaultBodyLimit          = int64(100 * 1024)
	DefaultCompressionLevel   = -1
	DefaultCompressionMinSize = 1024

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "portico"
)

// DefaultRequestDurationBuckets are the latency buckets for static and API traffic.
var DefaultRequestDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// ApplyDefaults fills every unset field of cfg with its default value.
// Host and Port are left alone; ServerConfig.Address resolves them.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	if cfg.AppRoot == "" {
		cfg.AppRoot = DefaultAppRoot
	}

	// Server
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// TLS
	if cfg.TLS.MinVersion == "" {
		cfg.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.TLS.ClientAuth == "" {
		cfg.TLS.ClientAuth = DefaultTLSClientAuth
	}
	if cfg.TLS.WatchDebounce == 0 {
		cfg.TLS.WatchDebounce = DefaultTLSWatchDebounce
	}

	// Session
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = DefaultSessionCookieName
	}
	if cfg.Session.MaxAge == 0 {
		cfg.Session.MaxAge = DefaultSessionMaxAge
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = DefaultSessionBackend
	}
	if cfg.Session.SQLite.Path == "" {
		cfg.Session.SQLite.Path = DefaultSessionSQLitePath
	}
	if cfg.Session.SQLite.BusyTimeout == 0 {
		cfg.Session.SQLite.BusyTimeout = DefaultSessionBusyTimeout
	}
	if cfg.Session.PruneSchedule == "" {
		cfg.Session.PruneSchedule = DefaultSessionPruneSchedule
	}

	// Secrets
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	if cfg.Secrets.CacheTTL == 0 {
		cfg.Secrets.CacheTTL = DefaultSecretsCacheTTL
	}

	// Static
	if cfg.Static.DocumentRoot == "" {
		cfg.Static.DocumentRoot = DefaultDocumentRoot
	}
	if cfg.Static.ImageRoot == "" {
		cfg.Static.ImageRoot = DefaultImageRoot
	}
	if cfg.Static.ImagePrefix == "" {
		cfg.Static.ImagePrefix = DefaultImagePrefix
	}
	if cfg.Static.LanguageRoot == "" {
		cfg.Static.LanguageRoot = DefaultLanguageRoot
	}
	if cfg.Static.LanguagePrefix == "" {
		cfg.Static.LanguagePrefix = DefaultLanguagePrefix
	}
	if cfg.Static.ViewsRoot == "" {
		cfg.Static.ViewsRoot = DefaultViewsRoot
	}

	// API
	if cfg.API.Prefix == "" {
		cfg.API.Prefix = DefaultAPIPrefix
	}

	// HTTP
	if cfg.HTTP.BodyLimit == 0 {
		cfg.HTTP.BodyLimit = DefaultBodyLimit
	}
	if cfg.HTTP.CompressionLevel == 0 {
		cfg.HTTP.CompressionLevel = DefaultCompressionLevel
	}
	if cfg.HTTP.CompressionMinSize == 0 {
		cfg.HTTP.CompressionMinSize = DefaultCompressionMinSize
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}
}
