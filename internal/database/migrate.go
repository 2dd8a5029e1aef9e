package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/mentalx/mentalxbot/migrations"
)

// ApplyMigrations runs every embedded migration that has not been applied yet.
// An up-to-date schema is not an error.
func ApplyMigrations(db *sql.DB, dbName string) error {
	switch {
	case db == nil:
		return errors.New("apply migrations: nil database handle")
	case dbName == "":
		return errors.New("apply migrations: empty database name")
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	target, err := sqlite.WithInstance(db, &sqlite.Config{DatabaseName: dbName})
	if err != nil {
		return fmt.Errorf("prepare migration target: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", target)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Debug("Schema already up to date", "database", dbName)
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil {
		slog.Warn("Migrations applied, version unknown", "database", dbName, "error", verr)
		return nil
	}
	slog.Info("Migrations applied", "database", dbName, "version", version, "dirty", dirty)
	return nil
}

// ExtractDBNameFromPath turns a SQLite DSN such as "file:data.db?_pragma=x"
// into the plain file path.
func ExtractDBNameFromPath(path string) string {
	path = strings.TrimPrefix(path, "file:")
	path, _, _ = strings.Cut(path, "?")

	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}
	return path
}
