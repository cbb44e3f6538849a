package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DevCertOptions controls GenerateDevCredentials.
type DevCertOptions struct {
	// Hosts are the DNS names and IP addresses the server certificate covers.
	Hosts []string

	// Organization is written into both subjects.
	Organization string

	// NotBefore defaults to now.
	NotBefore time.Time

	// ValidFor defaults to one year.
	ValidFor time.Duration
}

// GenerateDevCredentials creates a throwaway certificate authority and a
// server certificate signed by it. The result is for development and tests.
func GenerateDevCredentials(opts DevCertOptions) (*Credentials, error) {
	if len(opts.Hosts) == 0 {
		opts.Hosts = []string{"localhost", "127.0.0.1"}
	}
	if opts.Organization == "" {
		opts.Organization = "Portico Development"
	}
	if opts.NotBefore.IsZero() {
		opts.NotBefore = time.Now().Add(-time.Minute)
	}
	if opts.ValidFor == 0 {
		opts.ValidFor = 365 * 24 * time.Hour
	}
	notAfter := opts.NotBefore.Add(opts.ValidFor)

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CA key: %w", err)
	}
	caSerial, err := newSerial()
	if err != nil {
		return nil, err
	}
	caTemplate := &x509.Certificate{
		SerialNumber: caSerial,
		Subject: pkix.Name{
			Organization: []string{opts.Organization},
			CommonName:   opts.Organization + " CA",
		},
		NotBefore:             opts.NotBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create CA certificate: %w", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CA certificate: %w", err)
	}

	serverKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate server key: %w", err)
	}
	serverSerial, err := newSerial()
	if err != nil {
		return nil, err
	}

	var dnsNames []string
	var ipAddresses []net.IP
	for _, host := range opts.Hosts {
		host = strings.TrimSpace(host)
		if ip := net.ParseIP(host); ip != nil {
			ipAddresses = append(ipAddresses, ip)
		} else if host != "" {
			dnsNames = append(dnsNames, host)
		}
	}

	serverTemplate := &x509.Certificate{
		SerialNumber: serverSerial,
		Subject: pkix.Name{
			Organization: []string{opts.Organization},
			CommonName:   opts.Hosts[0],
		},
		NotBefore:             opts.NotBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              dnsNames,
		IPAddresses:           ipAddresses,
	}
	serverDER, err := x509.CreateCertificate(rand.Reader, serverTemplate, caCert, &serverKey.PublicKey, caKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create server certificate: %w", err)
	}

	keyDER, err := x509.MarshalECPrivateKey(serverKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal server key: %w", err)
	}

	return &Credentials{
		Key:  pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
		CA:   pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: caDER}),
		Cert: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: serverDER}),
	}, nil
}

func newSerial() (*big.Int, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}
	return serial, nil
}

// WriteCredentials writes creds into dir as key.pem, ca.pem and cert.pem.
// The private key is written with 0600 permissions.
func WriteCredentials(dir string, creds *Credentials) (CredentialPaths, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return CredentialPaths{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := CredentialPaths{
		Key:  filepath.Join(dir, "key.pem"),
		CA:   filepath.Join(dir, "ca.pem"),
		Cert: filepath.Join(dir, "cert.pem"),
	}

	if err := os.WriteFile(paths.Key, creds.Key, 0600); err != nil {
		return CredentialPaths{}, fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(paths.CA, creds.CA, 0644); err != nil {
		return CredentialPaths{}, fmt.Errorf("failed to write CA bundle: %w", err)
	}
	if err := os.WriteFile(paths.Cert, creds.Cert, 0644); err != nil {
		return CredentialPaths{}, fmt.Errorf("failed to write certificate: %w", err)
	}

	return paths, nil
}
