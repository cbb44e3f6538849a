package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults without validating.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention PORTICO_SECTION_FIELD (e.g., PORTICO_SERVER_PORT).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format PORTICO_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("PORTICO_APP_ROOT"); val != "" {
		cfg.AppRoot = val
	}

	// Server overrides
	if val := os.Getenv("PORTICO_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("PORTICO_SERVER_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = i
		}
	}
	if val := os.Getenv("PORTICO_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("PORTICO_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("PORTICO_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// TLS overrides
	if val := os.Getenv("PORTICO_TLS_KEY_FILE"); val != "" {
		cfg.TLS.KeyFile = val
	}
	if val := os.Getenv("PORTICO_TLS_CA_FILE"); val != "" {
		cfg.TLS.CAFile = val
	}
	if val := os.Getenv("PORTICO_TLS_CERT_FILE"); val != "" {
		cfg.TLS.CertFile = val
	}
	if val := os.Getenv("PORTICO_TLS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.TLS.Watch = b
		}
	}

	// Session overrides
	if val := os.Getenv("PORTICO_SESSION_COOKIE_SECRET"); val != "" {
		cfg.Session.CookieSecret = val
	}
	if val := os.Getenv("PORTICO_SESSION_COOKIE_NAME"); val != "" {
		cfg.Session.CookieName = val
	}
	if val := os.Getenv("PORTICO_SESSION_BACKEND"); val != "" {
		cfg.Session.Backend = val
	}
	if val := os.Getenv("PORTICO_SESSION_SQLITE_PATH"); val != "" {
		cfg.Session.SQLite.Path = val
	}

	// Secrets overrides
	if val := os.Getenv("PORTICO_SECRETS_DIR"); val != "" {
		cfg.Secrets.Dir = val
	}

	// Telemetry overrides
	if val := os.Getenv("PORTICO_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("PORTICO_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("PORTICO_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
