package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid JSON config",
			config:  Config{Level: "info", Format: "json", Redact: true},
			wantErr: false,
		},
		{
			name:    "valid text config",
			config:  Config{Level: "debug", Format: "text"},
			wantErr: false,
		},
		{
			name:    "empty config uses defaults",
			config:  Config{},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			config:  Config{Level: "invalid", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "info", Format: "console"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.config.Writer = &buf

			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, "emitted") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestNew_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-42")
	ctx = WithSession(ctx, "sess-7")
	logger.With("component", "test").InfoContext(ctx, "handled")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if record["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", record["request_id"])
	}
	if record["session"] != "sess-7" {
		t.Errorf("session = %v, want sess-7", record["session"])
	}
	if record["component"] != "test" {
		t.Errorf("component = %v, want test", record["component"])
	}
}

func TestNew_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "text", Redact: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("configured", "cookie_secret", "supersecretvalue", "path", "/tmp/app")

	out := buf.String()
	if strings.Contains(out, "supersecretvalue") {
		t.Errorf("secret leaked into log output: %s", out)
	}
	if !strings.Contains(out, "supe***") {
		t.Errorf("expected redacted prefix in output: %s", out)
	}
	if !strings.Contains(out, "/tmp/app") {
		t.Errorf("non-sensitive attribute was altered: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
