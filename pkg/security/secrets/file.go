package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileSource reads secrets from a directory holding one file per secret,
// the layout used by mounted Kubernetes and Docker secrets. Files must be
// regular files with 0600 or 0400 permissions; surrounding whitespace is
// trimmed.
//
// Values are kept after the first read. With watching enabled, any change
// in the directory drops them.
type FileSource struct {
	dir    string
	logger *slog.Logger

	mu     sync.RWMutex
	values map[string]string

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewFileSource creates a source over dir, which must exist.
func NewFileSource(dir string, watch bool, logger *slog.Logger) (*FileSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", dir)
	}

	s := &FileSource{
		dir:    dir,
		logger: logger,
		values: make(map[string]string),
		done:   make(chan struct{}),
	}

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch secrets directory: %w", err)
		}
		s.watcher = watcher

		s.wg.Add(1)
		go s.watch()
	}

	logger.Debug("file secret source ready", "dir", dir, "watch", watch)
	return s, nil
}

// Lookup reads the file named after the secret.
func (s *FileSource) Lookup(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	value, ok := s.values[name]
	s.mu.RUnlock()
	if ok {
		return value, nil
	}

	path, err := s.path(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: no file %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret path is not a regular file: %s", name)
	}
	if perm := info.Mode().Perm(); perm != 0o600 && perm != 0o400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", path, perm)
	}

	// #nosec G304 - path is confined to dir above
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	value = strings.TrimSpace(string(data))

	s.mu.Lock()
	s.values[name] = value
	s.mu.Unlock()
	return value, nil
}

// path joins name to dir, rejecting names that escape it.
func (s *FileSource) path(name string) (string, error) {
	if name == "" || !filepath.IsLocal(name) {
		return "", fmt.Errorf("invalid secret name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Name returns "file".
func (s *FileSource) Name() string {
	return "file"
}

// Invalidate drops every value read so far.
func (s *FileSource) Invalidate() {
	s.mu.Lock()
	s.values = make(map[string]string)
	s.mu.Unlock()
}

// Close stops watching. It is safe to call more than once.
func (s *FileSource) Close() error {
	if s.watcher == nil {
		return nil
	}
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)
	err := s.watcher.Close()
	s.wg.Wait()
	return err
}

func (s *FileSource) watch() {
	defer s.wg.Done()
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debug("secret file changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			s.Invalidate()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("secret watcher error", "error", err)

		case <-s.done:
			return
		}
	}
}
