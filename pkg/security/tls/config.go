package tls

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// Options configures the TLS parameters and HTTP server built by Factory.
type Options struct {
	// MinVersion is the minimum TLS version to accept ("1.2" or "1.3")
	MinVersion string

	// CipherSuites is a list of enabled TLS 1.2 cipher suites.
	// If empty, Go's default secure cipher suites are used.
	CipherSuites []string

	// ClientAuth controls client certificate handling:
	// "none", "request", "require" or "verify_if_given".
	ClientAuth string

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// parseTLSVersion converts the MinVersion string to a tls.Version constant.
// TLS 1.0 and 1.1 are not supported.
func parseTLSVersion(v string) (uint16, error) {
	switch v {
	case "1.2", "":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q", v)
	}
}

// parseCipherSuites converts cipher suite names to tls package constants.
// If no cipher suites are specified, returns nil to use Go's secure defaults.
func parseCipherSuites(names []string) ([]uint16, error) {
	if len(names) == 0 {
		return nil, nil
	}

	suites := make([]uint16, 0, len(names))
	for _, name := range names {
		id, ok := cipherSuiteMap[name]
		if !ok {
			return nil, fmt.Errorf("unknown cipher suite %q", name)
		}
		suites = append(suites, id)
	}

	return suites, nil
}

// cipherSuiteMap maps cipher suite names to their tls package constants.
// Only secure cipher suites are included.
var cipherSuiteMap = map[string]uint16{
	"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256":   tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384":   tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256": tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384": tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305":    tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305":  tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
}

// parseClientAuthType converts the ClientAuth string to a tls.ClientAuthType constant.
func parseClientAuthType(mode string) (tls.ClientAuthType, error) {
	switch mode {
	case "none", "":
		return tls.NoClientCert, nil
	case "request":
		return tls.RequestClientCert, nil
	case "require":
		return tls.RequireAndVerifyClientCert, nil
	case "verify_if_given":
		return tls.VerifyClientCertIfGiven, nil
	default:
		return tls.NoClientCert, fmt.Errorf("invalid client auth mode %q", mode)
	}
}

// newHTTPServer creates the HTTP server carried by a Transport.
// The listen address is decided by the caller at bind time.
func (o Options) newHTTPServer(handler http.Handler, tlsConfig *tls.Config) *http.Server {
	return &http.Server{
		Handler:        handler,
		TLSConfig:      tlsConfig,
		ReadTimeout:    o.ReadTimeout,
		WriteTimeout:   o.WriteTimeout,
		IdleTimeout:    o.IdleTimeout,
		MaxHeaderBytes: o.MaxHeaderBytes,
	}
}
