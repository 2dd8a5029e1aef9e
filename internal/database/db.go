// Package database provides the SQLite connection, schema migrations and the
// Store data access layer.
package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// pragmas are applied to every new database handle before migrating.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// NewDB opens the SQLite file at dbPath and brings its schema up to date.
// The pool holds a single connection, so writes are applied one at a time in
// arrival order.
func NewDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dbPath, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			closeAfterSetupFailure(db)
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}

	if err := ApplyMigrations(db.DB, ExtractDBNameFromPath(dbPath)); err != nil {
		closeAfterSetupFailure(db)
		return nil, err
	}

	slog.Info("Database ready", "path", dbPath)
	return db, nil
}

func closeAfterSetupFailure(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		slog.Error("Failed to close database after setup error", "error", err)
	}
}

// CloseDB closes db, logging rather than returning a close error. A nil db is
// ignored.
func CloseDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
		return
	}
	slog.Info("Database closed")
}
