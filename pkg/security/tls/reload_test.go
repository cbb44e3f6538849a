package tls

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"
)

func TestCertificateReloader_Start(t *testing.T) {
	paths, _ := writeTestCredentials(t)

	reloader := NewCertificateReloader(paths, nil, 20*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer reloader.Stop()

	cert := reloader.GetCertificate()
	if cert == nil || len(cert.Certificate) == 0 {
		t.Fatal("no certificate loaded after Start()")
	}

	fn := reloader.GetCertificateFunc()
	got, err := fn(nil)
	if err != nil || got != cert {
		t.Errorf("GetCertificateFunc() = %v, %v", got, err)
	}
}

func TestCertificateReloader_Start_MissingFiles(t *testing.T) {
	paths := CredentialPaths{Key: "absent-key.pem", CA: "absent-ca.pem", Cert: "absent-cert.pem"}
	reloader := NewCertificateReloader(paths, nil, 0, nil)

	if err := reloader.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail with nonexistent files")
	}
	if err := reloader.Stop(); err != nil {
		t.Errorf("Stop() after failed Start() = %v", err)
	}
}

func TestCertificateReloader_ReloadOnFileChange(t *testing.T) {
	paths, _ := writeTestCredentials(t)

	reloader := NewCertificateReloader(paths, nil, 20*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer reloader.Stop()

	before := reloader.GetCertificate()

	next, err := GenerateDevCredentials(DevCertOptions{Hosts: []string{"renewed.local"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(paths.Key, next.Key, 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(paths.Cert, next.Cert, 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-reloader.reloaded:
			if err != nil {
				// The key may have been replaced before the certificate;
				// keep waiting for the debounced reload of the full pair.
				continue
			}
			after := reloader.GetCertificate()
			if after == before {
				continue
			}
			if !bytes.Equal(after.Certificate[0], before.Certificate[0]) && after.Leaf.Subject.CommonName == "renewed.local" {
				return
			}
		case <-deadline:
			t.Fatal("certificate was not reloaded after file change")
		}
	}
}

func TestCertificateReloader_KeepsPreviousOnFailure(t *testing.T) {
	paths, _ := writeTestCredentials(t)

	reloader := NewCertificateReloader(paths, nil, 20*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer reloader.Stop()

	before := reloader.GetCertificate()
	if err := os.WriteFile(paths.Cert, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-reloader.reloaded:
		if err == nil {
			t.Fatal("expected reload of garbage certificate to fail")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload attempt observed")
	}

	if reloader.GetCertificate() != before {
		t.Error("failed reload replaced the served certificate")
	}
}
