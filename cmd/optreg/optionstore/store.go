// Package optionstore persists the current values of an option registry in a
// SQLite database. The registry stays the single source of truth for
// definitions; only formatted values are stored, keyed by option name.
package optionstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"optreg/cmd/optreg/option"
	"optreg/pkg/lib"

	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver (pure Go)
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite WASM binary
)

const schema = `
CREATE TABLE IF NOT EXISTS option_values (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

const upsertValue = `
INSERT INTO option_values (name, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// Store is a SQLite-backed value store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and prepares the
// option_values table.
func Open(ctx context.Context, path string) (*Store, error) {
	const dbDirPerm = 0o750
	log := lib.LoggerFrom(ctx)

	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), dbDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create option_values table: %w", err)
	}

	log.Debug("option store opened", "path", path)
	return &Store{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the current value of every option in r in one transaction.
func (s *Store) Save(ctx context.Context, r *option.Registry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for d := range r.List() {
		v, err := r.Get(d.Name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertValue, d.Name, option.Format(v), now); err != nil {
			return fmt.Errorf("failed to save %s: %w", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit values: %w", err)
	}
	lib.LoggerFrom(ctx).Debug("option values saved", "count", r.Len())
	return nil
}

// Load applies stored values to r and returns how many were applied. Rows
// for options r does not define are skipped. Every row is parsed before any
// value is stored, so a bad row leaves r unchanged.
func (s *Store) Load(ctx context.Context, r *option.Registry) (int, error) {
	log := lib.LoggerFrom(ctx)

	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM option_values`)
	if err != nil {
		return 0, fmt.Errorf("failed to query option values: %w", err)
	}
	defer rows.Close()

	type pending struct {
		name  string
		value any
	}
	var staged []pending

	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return 0, fmt.Errorf("failed to scan option value: %w", err)
		}
		d, ok := r.Lookup(name)
		if !ok {
			log.Warn("skipping stored value for unknown option", "option", name)
			continue
		}
		v, err := d.Parse(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: stored value for %s: %v", option.ErrInvalidValue, name, err)
		}
		staged = append(staged, pending{name: name, value: v})
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read option values: %w", err)
	}

	for _, p := range staged {
		if err := r.Set(p.name, p.value); err != nil {
			return 0, err
		}
	}
	log.Debug("option values loaded", "count", len(staged))
	return len(staged), nil
}
