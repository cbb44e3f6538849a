package logging

import (
	"log/slog"
	"testing"
)

func TestRedactor_ReplaceAttr(t *testing.T) {
	r := NewRedactor("x-api")

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"cookie secret", slog.String("cookie_secret", "abcdefgh"), "abcd***"},
		{"authorization header", slog.String("Authorization", "Bearer xyz"), "Bear***"},
		{"short value", slog.String("token", "abc"), "***"},
		{"empty value", slog.String("password", ""), ""},
		{"extra key", slog.String("X-API-Key", "k-123456"), "k-12***"},
		{"plain key", slog.String("path", "/content/img"), "/content/img"},
		{"non-string", slog.Int("status", 200), "200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ReplaceAttr(nil, tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("ReplaceAttr(%s) = %q, want %q", tt.attr.Key, got.Value.String(), tt.want)
			}
		})
	}
}

func TestRedactor_GroupUntouched(t *testing.T) {
	r := NewRedactor()
	group := slog.Group("secret", slog.String("a", "b"))
	if got := r.ReplaceAttr(nil, group); got.Value.Kind() != slog.KindGroup {
		t.Errorf("group attribute was rewritten: %v", got)
	}
}
