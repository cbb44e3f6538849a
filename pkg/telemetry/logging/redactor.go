package logging

import (
	"log/slog"
	"strings"
)

// Redactor masks the values of log attributes whose keys name secrets.
type Redactor struct {
	sensitiveKeys []string
}

// NewRedactor creates a Redactor with the default sensitive key list.
func NewRedactor(extraKeys ...string) *Redactor {
	keys := []string{
		"password", "passwd",
		"secret", "token",
		"authorization", "cookie",
		"private_key", "privatekey",
	}
	for _, k := range extraKeys {
		keys = append(keys, strings.ToLower(k))
	}
	return &Redactor{sensitiveKeys: keys}
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if r.isSensitiveKey(a.Key) {
		return slog.String(a.Key, redactValue(a.Value.String()))
	}
	return a
}

// isSensitiveKey checks if a key name indicates sensitive data.
func (r *Redactor) isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range r.sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// redactValue keeps a short prefix of the value for debugging.
func redactValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "***"
	}
	return v[:4] + "***"
}
