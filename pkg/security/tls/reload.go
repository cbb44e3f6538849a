package tls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CertificateReloader watches the key and certificate files and swaps the
// served certificate when they change. A failed reload keeps the previous
// certificate.
type CertificateReloader struct {
	paths    CredentialPaths
	loader   *Loader
	debounce time.Duration
	logger   *slog.Logger

	mu   sync.RWMutex
	cert *tls.Certificate

	watcher *fsnotify.Watcher
	timerMu sync.Mutex
	timer   *time.Timer
	doneCh  chan struct{}

	// reloaded is signalled after every reload attempt; tests use it.
	reloaded chan error
}

// NewCertificateReloader creates a reloader for the given credential paths.
// debounce is how long to wait after the last file event before reloading.
func NewCertificateReloader(paths CredentialPaths, loader *Loader, debounce time.Duration, logger *slog.Logger) *CertificateReloader {
	if loader == nil {
		loader = NewLoader(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &CertificateReloader{
		paths:    paths,
		loader:   loader,
		debounce: debounce,
		logger:   logger,
		doneCh:   make(chan struct{}),
		reloaded: make(chan error, 1),
	}
}

// Start loads the initial certificate and begins watching for changes.
// Watching stops when ctx is cancelled or Stop is called.
func (r *CertificateReloader) Start(ctx context.Context) error {
	if err := r.reload(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Directories are watched so that atomic rename-based replacement is seen.
	dirs := map[string]struct{}{
		filepath.Dir(r.paths.Key):  {},
		filepath.Dir(r.paths.Cert): {},
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	r.watcher = watcher

	r.logger.Info("certificate watcher started",
		"cert_file", r.paths.Cert,
		"key_file", r.paths.Key,
		"debounce_ms", r.debounce.Milliseconds(),
	)

	go r.watch(ctx)
	return nil
}

func (r *CertificateReloader) watch(ctx context.Context) {
	defer close(r.doneCh)

	keyName := filepath.Clean(r.paths.Key)
	certName := filepath.Clean(r.paths.Cert)

	for {
		select {
		case <-ctx.Done():
			r.stopTimer()
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				r.stopTimer()
				return
			}
			name := filepath.Clean(event.Name)
			if name != keyName && name != certName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			r.logger.Debug("certificate file event", "path", event.Name, "op", event.Op.String())
			r.trigger()

		case err, ok := <-r.watcher.Errors:
			if !ok {
				r.stopTimer()
				return
			}
			r.logger.Error("certificate watcher error", "error", err)
		}
	}
}

// trigger schedules a reload, resetting any pending one.
func (r *CertificateReloader) trigger() {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, func() {
		err := r.reload()
		if err != nil {
			r.logger.Error("failed to reload certificate",
				"error", err,
				"cert_file", r.paths.Cert,
				"key_file", r.paths.Key,
			)
		} else {
			r.logger.Info("certificate reloaded", "cert_file", r.paths.Cert)
		}

		select {
		case r.reloaded <- err:
		default:
		}
	})
}

func (r *CertificateReloader) stopTimer() {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}

// Stop stops watching. It is safe to call when Start failed.
func (r *CertificateReloader) Stop() error {
	if r.watcher == nil {
		return nil
	}
	err := r.watcher.Close()
	<-r.doneCh
	return err
}

// reload reads the key pair through the loader and validates it.
func (r *CertificateReloader) reload() error {
	creds, err := r.loader.Load(CredentialPaths{Key: r.paths.Key, CA: r.paths.CA, Cert: r.paths.Cert})
	if err != nil {
		return err
	}

	cert, err := tls.X509KeyPair(creds.Cert, creds.Key)
	if err != nil {
		return &TransportConstructionError{Stage: StageKeyPair, Err: err}
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return &TransportConstructionError{Stage: StageLeaf, Err: err}
	}
	if err := ValidateX509Certificate(leaf); err != nil {
		return &TransportConstructionError{Stage: StageLeaf, Err: err}
	}
	cert.Leaf = leaf

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	logCertificate(r.logger, leaf)
	return nil
}

// GetCertificate returns the current certificate.
func (r *CertificateReloader) GetCertificate() *tls.Certificate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert
}

// GetCertificateFunc returns a function compatible with tls.Config.GetCertificate.
func (r *CertificateReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		return r.GetCertificate(), nil
	}
}
