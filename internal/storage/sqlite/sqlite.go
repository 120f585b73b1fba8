// Package sqlite opens the SQLite database that backs the application and
// turns it into a storage.Handle.
//
// The driver is mattn/go-sqlite3 (registered as "sqlite3" by the blank
// import below); queries go through the bun query builder on top of it.
// The schema is created here with plain DDL because the natural-key UNIQUE
// constraints are what keeps records unique under concurrent writers.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/aanand-mishra/school-api/internal/config"
	"github.com/aanand-mishra/school-api/internal/storage"
)

// schema is idempotent, so it is safe to run on every startup.
//
// AUTOINCREMENT guarantees an id is never reused, even after the row with
// the highest id is deleted. UNIQUE gives every natural key its own index.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS estudiantes (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		nombre  TEXT    NOT NULL UNIQUE,
		edad    INTEGER NOT NULL,
		carrera TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS profesores (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		nombre  TEXT    NOT NULL UNIQUE,
		edad    INTEGER NOT NULL,
		materia TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cursos (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		titulo   TEXT    NOT NULL UNIQUE,
		creditos INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS usuarios (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	)`,
}

// New opens the SQLite database at cfg.StoragePath, verifies it is
// reachable, creates the tables if they do not already exist, and returns
// a ready-to-use handle.
func New(cfg *config.Config) (*storage.Handle, error) {
	if strings.TrimSpace(cfg.StoragePath) == "" {
		return nil, fmt.Errorf("sqlite.New: storage path is required")
	}

	if dir := filepath.Dir(cfg.StoragePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create storage dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if cfg.Storage.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Storage.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Storage.MaxOpenConns)
	}

	handle := storage.NewHandle(bun.NewDB(sqlDB, sqlitedialect.New()), IsUniqueViolation)
	ctx := context.Background()

	// sql.Open is lazy; Ping forces the first real connection so a bad
	// path fails here, at startup, instead of on the first request.
	if err := handle.Ping(ctx); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w", err)
	}

	for _, stmt := range schema {
		if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
			_ = handle.Close()
			return nil, fmt.Errorf("sqlite.New: create table: %w", err)
		}
	}

	return handle, nil
}

// dsn appends driver options to the storage path.
func dsn(cfg *config.Config) string {
	sep := "?"
	if strings.Contains(cfg.StoragePath, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d&_foreign_keys=on",
		cfg.StoragePath, sep, cfg.Storage.BusyTimeout.Milliseconds())
}

// IsUniqueViolation reports whether err is SQLite rejecting a write that
// would break a UNIQUE (or PRIMARY KEY) constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
