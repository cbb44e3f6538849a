// Package config provides configuration management for Portico.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention PORTICO_SECTION_FIELD.
// For example:
//
//   - PORTICO_SERVER_PORT overrides server.port
//   - PORTICO_TLS_CERT_FILE overrides tls.cert_file
//   - PORTICO_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Listener Address
//
// server.host and server.port are optional. When unset, ServerConfig.Address
// falls back to the HOST and PORT environment variables, then to
// DefaultHost and DefaultPort.
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	app_root: /srv/portico
//	server:
//	  port: 8443
//	tls:
//	  key_file: certs/server-key.pem
//	  ca_file: certs/ca.pem
//	  cert_file: certs/server.pem
//	session:
//	  cookie_secret: change-me
//	  cookie_name: portico.sid
//	  backend: sqlite
//	telemetry:
//	  metrics:
//	    enabled: true
package config
