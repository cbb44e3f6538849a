package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "tls.key_file").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTLS(&cfg.TLS)...)
	errs = append(errs, validateSession(&cfg.Session)...)
	errs = append(errs, validateStatic(&cfg.Static)...)
	errs = append(errs, validateAPI(&cfg.API)...)
	errs = append(errs, validateHTTP(&cfg.HTTP)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.Port < 0 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d out of range", cfg.Port),
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "read timeout must be positive"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "write timeout must be positive"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.idle_timeout", Message: "idle timeout must be positive"})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"})
	}
	if cfg.MaxHeaderBytes < 0 || cfg.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be between 0 and 10MB",
		})
	}

	return errs
}

func validateTLS(cfg *TLSConfig) []FieldError {
	var errs []FieldError

	if cfg.KeyFile == "" {
		errs = append(errs, FieldError{Field: "tls.key_file", Message: "private key path is required"})
	}
	if cfg.CAFile == "" {
		errs = append(errs, FieldError{Field: "tls.ca_file", Message: "certificate authority bundle path is required"})
	}
	if cfg.CertFile == "" {
		errs = append(errs, FieldError{Field: "tls.cert_file", Message: "certificate path is required"})
	}

	switch cfg.MinVersion {
	case "1.2", "1.3":
	default:
		errs = append(errs, FieldError{
			Field:   "tls.min_version",
			Message: fmt.Sprintf("unsupported TLS version %q (must be 1.2 or 1.3)", cfg.MinVersion),
		})
	}

	switch cfg.ClientAuth {
	case "none", "request", "require", "verify_if_given":
	default:
		errs = append(errs, FieldError{
			Field:   "tls.client_auth",
			Message: fmt.Sprintf("invalid client auth mode %q", cfg.ClientAuth),
		})
	}

	if cfg.WatchDebounce < 0 {
		errs = append(errs, FieldError{Field: "tls.watch_debounce", Message: "debounce must be positive"})
	}

	return errs
}

func validateSession(cfg *SessionConfig) []FieldError {
	var errs []FieldError

	if cfg.CookieSecret == "" {
		errs = append(errs, FieldError{Field: "session.cookie_secret", Message: "cookie secret is required"})
	}
	if cfg.CookieName == "" {
		errs = append(errs, FieldError{Field: "session.cookie_name", Message: "cookie name is required"})
	}
	if cfg.MaxAge < 0 {
		errs = append(errs, FieldError{Field: "session.max_age", Message: "max age must be positive"})
	}

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{Field: "session.sqlite.path", Message: "path is required for the sqlite backend"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "session.backend",
			Message: fmt.Sprintf("unsupported session backend %q (must be memory or sqlite)", cfg.Backend),
		})
	}

	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "session.prune_schedule",
				Message: fmt.Sprintf("invalid cron schedule: %v", err),
			})
		}
	}

	return errs
}

func validateStatic(cfg *StaticConfig) []FieldError {
	var errs []FieldError

	for field, prefix := range map[string]string{
		"static.image_prefix":    cfg.ImagePrefix,
		"static.language_prefix": cfg.LanguagePrefix,
	} {
		if !strings.HasPrefix(prefix, "/") {
			errs = append(errs, FieldError{Field: field, Message: "mount prefix must start with /"})
		}
	}
	if cfg.ViewsRoot == "" {
		errs = append(errs, FieldError{Field: "static.views_root", Message: "views root is required"})
	}

	return errs
}

func validateAPI(cfg *APIConfig) []FieldError {
	if !strings.HasPrefix(cfg.Prefix, "/") || strings.Trim(cfg.Prefix, "/") == "" {
		return []FieldError{{Field: "api.prefix", Message: "prefix must start with / and name a segment"}}
	}
	return nil
}

func validateHTTP(cfg *HTTPConfig) []FieldError {
	var errs []FieldError

	if cfg.BodyLimit < 0 {
		errs = append(errs, FieldError{Field: "http.body_limit", Message: "body limit must be positive"})
	}
	if cfg.CompressionLevel < -1 || cfg.CompressionLevel > 9 {
		errs = append(errs, FieldError{Field: "http.compression_level", Message: "compression level must be between -1 and 9"})
	}
	if cfg.CompressionMinSize < 0 {
		errs = append(errs, FieldError{Field: "http.compression_min_size", Message: "minimum size must be positive"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "metrics path must start with /"})
	}

	return errs
}
