// Package store provides durable, transactional persistence for isolation
// sessions, their exceptions, and the intercept attempt log, over an
// embedded SQLite database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Store wraps a sql.DB connection to the SQLite database backing Sessions,
// Exceptions, and Attempts.
type Store struct {
	conn *sql.DB

	droppedAttempts *counter
}

//go:embed migrations/*.sql
var migrationFS embed.FS

// Open creates (or reuses) the database file at path and applies all
// pending migrations, so a missing database gets a fresh schema. Any
// failure to open, ping, or migrate the database returns a KindStorage
// error; a corrupted file is not recreated.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, newErr(KindStorage, fmt.Errorf("open sqlite: %w", err))
	}

	// SQLite serializes writers regardless; one connection avoids
	// SQLITE_BUSY races between goroutines sharing *Store.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, newErr(KindStorage, fmt.Errorf("ping sqlite: %w", err))
	}

	migrations, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		_ = conn.Close()
		return nil, newErr(KindStorage, fmt.Errorf("migrations sub-fs: %w", err))
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, conn, migrations)
	if err != nil {
		_ = conn.Close()
		return nil, newErr(KindStorage, fmt.Errorf("create migration provider: %w", err))
	}

	if _, err := provider.Up(context.Background()); err != nil {
		_ = conn.Close()
		return nil, newErr(KindStorage, fmt.Errorf("apply migrations: %w", err))
	}

	return &Store{conn: conn, droppedAttempts: &counter{}}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn exposes the underlying *sql.DB for callers that need it (tests,
// diagnostics).
func (s *Store) Conn() *sql.DB {
	return s.conn
}
