package main

import (
	"errors"
	"log/slog"
	"os"

	"mercator-hq/portico/pkg/cli"
	"mercator-hq/portico/pkg/config"
	"mercator-hq/portico/pkg/telemetry/logging"
)

// loadConfig reads, env-overrides and validates the configuration file.
// Read and parse failures are returned as *cli.ConfigError; validation
// failures keep their config.ValidationError so every field can be listed.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, cli.NewConfigError("", err.Error())
	}
	return cfg, nil
}

// newLogger builds the process logger from the telemetry section. --verbose
// forces debug level.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Redact:    true,
		Writer:    os.Stderr,
	})
}
