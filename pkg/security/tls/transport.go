package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
)

// Transport construction stages reported in TransportConstructionError.
const (
	StageKeyPair = "keypair"
	StageLeaf    = "leaf"
	StageCAPool  = "ca_pool"
	StageOptions = "options"
)

// TransportConstructionError reports credential content that the TLS layer
// cannot use, such as a key that does not match its certificate.
type TransportConstructionError struct {
	Stage string
	Err   error
}

func (e *TransportConstructionError) Error() string {
	return fmt.Sprintf("failed to construct transport (%s): %v", e.Stage, e.Err)
}

func (e *TransportConstructionError) Unwrap() error {
	return e.Err
}

// Transport is a TLS-capable HTTP server bound to a dispatcher.
// It is not listening until Serve is called.
type Transport struct {
	Server    *http.Server
	TLSConfig *tls.Config

	// Leaf is the parsed server certificate.
	Leaf *x509.Certificate
}

// UseCertificateSource makes the transport fetch its certificate from fn
// on every handshake, replacing the static certificate.
func (t *Transport) UseCertificateSource(fn func(*tls.ClientHelloInfo) (*tls.Certificate, error)) {
	t.TLSConfig.Certificates = nil
	t.TLSConfig.GetCertificate = fn
}

// Serve accepts TLS connections on ln until the server is shut down.
// It always returns a non-nil error; http.ErrServerClosed after Shutdown.
func (t *Transport) Serve(ln net.Listener) error {
	return t.Server.ServeTLS(ln, "", "")
}

// Factory builds transports from credential material.
type Factory struct {
	opts   Options
	logger *slog.Logger
}

// NewFactory creates a Factory with the given options.
func NewFactory(opts Options, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{opts: opts, logger: logger}
}

// Build parses the credentials and constructs a Transport serving handler.
// Every content problem is reported as *TransportConstructionError.
func (f *Factory) Build(creds *Credentials, handler http.Handler) (*Transport, error) {
	if creds == nil {
		return nil, &TransportConstructionError{Stage: StageKeyPair, Err: errors.New("no credentials")}
	}

	cert, err := tls.X509KeyPair(creds.Cert, creds.Key)
	if err != nil {
		return nil, &TransportConstructionError{Stage: StageKeyPair, Err: err}
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, &TransportConstructionError{Stage: StageLeaf, Err: err}
	}
	if err := ValidateX509Certificate(leaf); err != nil {
		return nil, &TransportConstructionError{Stage: StageLeaf, Err: err}
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(creds.CA) {
		return nil, &TransportConstructionError{
			Stage: StageCAPool,
			Err:   errors.New("CA bundle contains no usable certificates"),
		}
	}

	// The CA bundle may only serve client verification, so a chain that does
	// not verify against it is reported but not fatal.
	if err := ValidateCertificateChain(leaf, pool); err != nil {
		f.logger.Warn("server certificate does not chain to the configured CA bundle",
			"subject", leaf.Subject.CommonName,
			"error", err,
		)
	}

	minVersion, err := parseTLSVersion(f.opts.MinVersion)
	if err != nil {
		return nil, &TransportConstructionError{Stage: StageOptions, Err: err}
	}
	suites, err := parseCipherSuites(f.opts.CipherSuites)
	if err != nil {
		return nil, &TransportConstructionError{Stage: StageOptions, Err: err}
	}
	clientAuth, err := parseClientAuthType(f.opts.ClientAuth)
	if err != nil {
		return nil, &TransportConstructionError{Stage: StageOptions, Err: err}
	}

	cert.Leaf = leaf

	// #nosec G402 - MinVersion is validated (TLS 1.0/1.1 rejected)
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion,
		CipherSuites: suites,
		ClientCAs:    pool,
		ClientAuth:   clientAuth,
	}

	logCertificate(f.logger, leaf)

	return &Transport{
		Server:    f.opts.newHTTPServer(handler, tlsConfig),
		TLSConfig: tlsConfig,
		Leaf:      leaf,
	}, nil
}
