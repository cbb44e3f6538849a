package config

import (
	"errors"
	"strings"
	"testing"
)

func validTestConfig() *Config {
	cfg := &Config{
		TLS: TLSConfig{
			KeyFile:  "key.pem",
			CAFile:   "ca.pem",
			CertFile: "cert.pem",
		},
		Session: SessionConfig{CookieSecret: "secret"},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "valid configuration", mutate: func(*Config) {}},
		{
			name:      "negative port",
			mutate:    func(c *Config) { c.Server.Port = -1 },
			wantField: "server.port",
		},
		{
			name:      "negative read timeout",
			mutate:    func(c *Config) { c.Server.ReadTimeout = -1 },
			wantField: "server.read_timeout",
		},
		{
			name:      "missing CA bundle",
			mutate:    func(c *Config) { c.TLS.CAFile = "" },
			wantField: "tls.ca_file",
		},
		{
			name:      "unsupported TLS version",
			mutate:    func(c *Config) { c.TLS.MinVersion = "1.0" },
			wantField: "tls.min_version",
		},
		{
			name:      "unknown client auth mode",
			mutate:    func(c *Config) { c.TLS.ClientAuth = "always" },
			wantField: "tls.client_auth",
		},
		{
			name:      "missing cookie secret",
			mutate:    func(c *Config) { c.Session.CookieSecret = "" },
			wantField: "session.cookie_secret",
		},
		{
			name:      "unknown session backend",
			mutate:    func(c *Config) { c.Session.Backend = "redis" },
			wantField: "session.backend",
		},
		{
			name:      "invalid prune schedule",
			mutate:    func(c *Config) { c.Session.PruneSchedule = "every tuesday" },
			wantField: "session.prune_schedule",
		},
		{
			name:      "relative mount prefix",
			mutate:    func(c *Config) { c.Static.ImagePrefix = "img" },
			wantField: "static.image_prefix",
		},
		{
			name:      "api prefix without segment",
			mutate:    func(c *Config) { c.API.Prefix = "/" },
			wantField: "api.prefix",
		},
		{
			name:      "compression level out of range",
			mutate:    func(c *Config) { c.HTTP.CompressionLevel = 12 },
			wantField: "http.compression_level",
		},
		{
			name:      "unknown log format",
			mutate:    func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			wantField: "telemetry.logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var valErr ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range valErr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, valErr.Errors)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if single.Error() != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message: %q", single.Error())
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if !strings.Contains(multi.Error(), "2 errors") || !strings.Contains(multi.Error(), "b: worse") {
		t.Errorf("unexpected message: %q", multi.Error())
	}
}
