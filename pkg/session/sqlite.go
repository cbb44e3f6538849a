package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SQLiteBackend persists sessions in a SQLite database. The pure-Go driver
// is used by default; the cgo_sqlite build tag switches to mattn/go-sqlite3.
type SQLiteBackend struct {
	db        *sql.DB
	dbPath    string
	closeOnce sync.Once

	loadStmt   *sql.Stmt
	saveStmt   *sql.Stmt
	deleteStmt *sql.Stmt
	pruneStmt  *sql.Stmt
}

// SQLiteBackendConfig configures the SQLite backend.
type SQLiteBackendConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteBackend opens (creating if needed) the database at cfg.DBPath.
func NewSQLiteBackend(cfg SQLiteBackendConfig) (*SQLiteBackend, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(driverName, sqliteDSN(cfg.DBPath, cfg.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backend := &SQLiteBackend{db: db, dbPath: cfg.DBPath}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := backend.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	slog.Default().With("component", "session.sqlite").Debug("session database opened",
		"path", cfg.DBPath,
		"driver", driverType,
	)

	return backend, nil
}

func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expires_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteBackend) prepareStatements() error {
	var err error

	s.loadStmt, err = s.db.Prepare(`SELECT data, expires_at FROM sessions WHERE id = ? AND expires_at > ?`)
	if err != nil {
		return fmt.Errorf("prepare load: %w", err)
	}

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO sessions (id, data, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare save: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM sessions WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`DELETE FROM sessions WHERE expires_at <= ?`)
	if err != nil {
		return fmt.Errorf("prepare prune: %w", err)
	}

	return nil
}

// Load implements Backend.
func (s *SQLiteBackend) Load(ctx context.Context, id string) (*Record, error) {
	var data []byte
	var expiresAt int64

	err := s.loadStmt.QueryRowContext(ctx, id, time.Now().UnixNano()).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return &Record{ID: id, Data: data, ExpiresAt: time.Unix(0, expiresAt)}, nil
}

// Save implements Backend.
func (s *SQLiteBackend) Save(ctx context.Context, rec *Record) error {
	_, err := s.saveStmt.ExecContext(ctx, rec.ID, rec.Data, rec.ExpiresAt.UnixNano(), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete implements Backend.
func (s *SQLiteBackend) Delete(ctx context.Context, id string) error {
	if _, err := s.deleteStmt.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Prune implements Backend.
func (s *SQLiteBackend) Prune(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.pruneStmt.ExecContext(ctx, now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return result.RowsAffected()
}

// Ping verifies the database is reachable.
func (s *SQLiteBackend) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Backend.
func (s *SQLiteBackend) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.loadStmt, s.saveStmt, s.deleteStmt, s.pruneStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}
