package tls

import (
	"bytes"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// Credential kinds, in the order Loader reads them.
const (
	KindKey  = "key"
	KindCA   = "ca"
	KindCert = "cert"
)

var (
	// ErrEmptyCredential is returned when a credential file has no content.
	ErrEmptyCredential = errors.New("credential file is empty")

	// ErrNotPEM is returned when a credential file contains no PEM block.
	ErrNotPEM = errors.New("credential file contains no PEM data")
)

// CredentialPaths holds the file-system locations of the TLS material.
type CredentialPaths struct {
	Key  string
	CA   string
	Cert string
}

// Credentials holds the raw PEM bytes of the TLS material.
// It is only needed while the transport is being constructed.
type Credentials struct {
	Key  []byte
	CA   []byte
	Cert []byte
}

// CredentialReadError reports a credential file that could not be read.
type CredentialReadError struct {
	Kind string
	Path string
	Err  error
}

func (e *CredentialReadError) Error() string {
	return fmt.Sprintf("failed to read %s file %q: %v", e.Kind, e.Path, e.Err)
}

func (e *CredentialReadError) Unwrap() error {
	return e.Err
}

// ReadFileFunc reads a whole file. os.ReadFile satisfies it.
type ReadFileFunc func(path string) ([]byte, error)

// Loader reads TLS credentials from disk.
type Loader struct {
	readFile ReadFileFunc
}

// NewLoader creates a Loader. A nil readFile uses os.ReadFile.
func NewLoader(readFile ReadFileFunc) *Loader {
	if readFile == nil {
		readFile = os.ReadFile
	}
	return &Loader{readFile: readFile}
}

// Load reads the key, CA bundle and certificate, in that order.
// It stops at the first failure and never returns partial credentials.
func (l *Loader) Load(paths CredentialPaths) (*Credentials, error) {
	key, err := l.read(KindKey, paths.Key)
	if err != nil {
		return nil, err
	}
	ca, err := l.read(KindCA, paths.CA)
	if err != nil {
		return nil, err
	}
	cert, err := l.read(KindCert, paths.Cert)
	if err != nil {
		return nil, err
	}

	return &Credentials{Key: key, CA: ca, Cert: cert}, nil
}

func (l *Loader) read(kind, path string) ([]byte, error) {
	if path == "" {
		return nil, &CredentialReadError{Kind: kind, Path: path, Err: os.ErrNotExist}
	}

	data, err := l.readFile(path)
	if err != nil {
		return nil, &CredentialReadError{Kind: kind, Path: path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &CredentialReadError{Kind: kind, Path: path, Err: ErrEmptyCredential}
	}
	if block, _ := pem.Decode(data); block == nil {
		return nil, &CredentialReadError{Kind: kind, Path: path, Err: ErrNotPEM}
	}

	return data, nil
}
