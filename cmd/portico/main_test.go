package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	securityTLS "mercator-hq/portico/pkg/security/tls"
)

// execute runs the root command with args and returns its stdout. Flag
// variables are reset first because cobra keeps them between executions.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile = "config.yaml"
	verbose = false
	runFlags.host, runFlags.port, runFlags.logLevel, runFlags.dryRun = "", -1, "", false
	validateFlags.credentials, validateFlags.format = false, "text"
	generateFlags.hosts, generateFlags.org, generateFlags.validity, generateFlags.output = "localhost,127.0.0.1", "Portico Development", 365, "certs"
	certsValidateFlags.certFile, certsValidateFlags.keyFile, certsValidateFlags.caFile = "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// writeTestConfig writes development credentials and a config file that
// references them into a temp dir and returns the config path.
func writeTestConfig(t *testing.T, extra string) (string, securityTLS.CredentialPaths) {
	t.Helper()
	dir := t.TempDir()

	creds, err := securityTLS.GenerateDevCredentials(securityTLS.DevCertOptions{})
	if err != nil {
		t.Fatalf("GenerateDevCredentials() error = %v", err)
	}
	paths, err := securityTLS.WriteCredentials(filepath.Join(dir, "certs"), creds)
	if err != nil {
		t.Fatalf("WriteCredentials() error = %v", err)
	}

	content := "app_root: " + dir + "\n" +
		"tls:\n" +
		"  key_file: certs/key.pem\n" +
		"  ca_file: certs/ca.pem\n" +
		"  cert_file: certs/cert.pem\n" +
		"session:\n" +
		"  cookie_secret: test-cookie-secret-0123456789abcdef\n" +
		"static:\n" +
		"  views_root: views\n" +
		extra

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, paths
}
