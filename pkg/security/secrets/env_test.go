package secrets

import (
	"context"
	"errors"
	"testing"
)

func TestEnvSource_VarName(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{prefix: "PORTICO_SECRET_", name: "cookie-secret", want: "PORTICO_SECRET_COOKIE_SECRET"},
		{prefix: "PORTICO_SECRET_", name: "session.key", want: "PORTICO_SECRET_SESSION_KEY"},
		{prefix: "", name: "plain", want: "PLAIN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := NewEnvSource(tt.prefix).VarName(tt.name); got != tt.want {
				t.Errorf("VarName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestEnvSource_Lookup(t *testing.T) {
	t.Setenv("PORTICO_SECRET_COOKIE_SECRET", "from-env")
	src := NewEnvSource("PORTICO_SECRET_")

	value, err := src.Lookup(context.Background(), "cookie-secret")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if value != "from-env" {
		t.Errorf("Lookup() = %q, want %q", value, "from-env")
	}
}

func TestEnvSource_LookupMissing(t *testing.T) {
	t.Setenv("PORTICO_SECRET_EMPTY", "")
	src := NewEnvSource("PORTICO_SECRET_")

	for _, name := range []string{"empty", "never-set-anywhere"} {
		if _, err := src.Lookup(context.Background(), name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Lookup(%q) error = %v, want ErrNotFound", name, err)
		}
	}
}
