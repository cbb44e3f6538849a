package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvSource reads secrets from environment variables.
//
// The variable name is the prefix followed by the secret name upper-cased
// with hyphens and dots replaced by underscores:
//
//	"cookie-secret" -> "PORTICO_SECRET_COOKIE_SECRET"
type EnvSource struct {
	Prefix string
}

// NewEnvSource creates an environment source with the given prefix.
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{Prefix: prefix}
}

var envReplacer = strings.NewReplacer("-", "_", ".", "_")

// VarName returns the environment variable consulted for name.
func (s *EnvSource) VarName(name string) string {
	return s.Prefix + strings.ToUpper(envReplacer.Replace(name))
}

// Lookup returns the value of the variable for name. An unset or empty
// variable is reported as ErrNotFound.
func (s *EnvSource) Lookup(_ context.Context, name string) (string, error) {
	v := s.VarName(name)
	value, ok := os.LookupEnv(v)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: environment variable %s is not set", ErrNotFound, v)
	}
	return value, nil
}

// Name returns "env".
func (s *EnvSource) Name() string {
	return "env"
}
