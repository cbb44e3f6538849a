package cli

import (
	"errors"
	"fmt"
	"testing"

	"mercator-hq/portico/pkg/config"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "server.port",
		Message: "missing required field",
	}

	expected := "config error in server.port: missing required field"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("field", "message")
	if err.Field != "field" {
		t.Errorf("Field = %q, want %q", err.Field, "field")
	}
	if err.Message != "message" {
		t.Errorf("Message = %q, want %q", err.Message, "message")
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := &CommandError{
		Command: "run",
		Err:     underlyingErr,
	}

	expected := "command run failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := &CommandError{
		Command: "run",
		Err:     underlyingErr,
	}

	unwrapped := err.Unwrap()
	if unwrapped != underlyingErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, underlyingErr)
	}

	// Test with errors.Is
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestNewCommandError(t *testing.T) {
	underlyingErr := errors.New("test")
	err := NewCommandError("command", underlyingErr)

	if err.Command != "command" {
		t.Errorf("Command = %q, want %q", err.Command, "command")
	}
	if err.Err != underlyingErr {
		t.Errorf("Err = %v, want %v", err.Err, underlyingErr)
	}
}

func TestConfigErrorWithoutField(t *testing.T) {
	err := NewConfigError("", "file not found")

	expected := "config error: file not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestConfigErrors(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if got := ConfigErrors(nil); got != nil {
			t.Errorf("ConfigErrors(nil) = %v, want nil", got)
		}
	})

	t.Run("validation error", func(t *testing.T) {
		verr := config.ValidationError{Errors: []config.FieldError{
			{Field: "tls.key_file", Message: "is required"},
			{Field: "session.cookie_secret", Message: "is required"},
		}}
		wrapped := fmt.Errorf("configuration validation failed: %w", verr)

		got := ConfigErrors(wrapped)
		if len(got) != 2 {
			t.Fatalf("len(ConfigErrors) = %d, want 2", len(got))
		}
		if got[0].Field != "tls.key_file" || got[1].Field != "session.cookie_secret" {
			t.Errorf("fields = %q, %q", got[0].Field, got[1].Field)
		}
		if got[0].Message != "is required" {
			t.Errorf("Message = %q, want %q", got[0].Message, "is required")
		}
	})

	t.Run("other error", func(t *testing.T) {
		got := ConfigErrors(errors.New("failed to read configuration file"))
		if len(got) != 1 {
			t.Fatalf("len(ConfigErrors) = %d, want 1", len(got))
		}
		if got[0].Field != "" {
			t.Errorf("Field = %q, want empty", got[0].Field)
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "config error", err: NewConfigError("server.port", "out of range"), want: ExitConfig},
		{name: "wrapped config error", err: NewCommandError("run", NewConfigError("", "bad")), want: ExitConfig},
		{name: "validation error", err: fmt.Errorf("load: %w", config.ValidationError{}), want: ExitConfig},
		{name: "command error", err: NewCommandError("run", errors.New("bind failed")), want: ExitFailure},
		{name: "plain error", err: errors.New("boom"), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
