// Package sqlite is the device-local Backend, a single-table SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/store"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Backend stores records as (kind, id, data) rows.
type Backend struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path, creating parent
// directories. It applies pragmas and the schema; calling it twice on the
// same file is safe.
func Open(path string) (*Backend, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Backend{db: db, now: time.Now}, nil
}

// Close closes the database.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Ping checks the database is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// List returns the records of one kind ordered by id.
func (b *Backend) List(ctx context.Context, kind domain.Kind) ([]store.Record, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, data FROM records WHERE kind = ? ORDER BY id`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s records: %w", kind, err)
	}
	defer rows.Close()

	recs := []store.Record{}
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec.ID, &rec.Data); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", kind, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s records: %w", kind, err)
	}
	return recs, nil
}

// Put inserts or replaces a record.
func (b *Backend) Put(ctx context.Context, kind domain.Kind, id string, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO records (kind, id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, string(kind), id, data, b.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	return nil
}

// Delete removes a record. Missing records are not an error.
func (b *Backend) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if _, err := b.db.ExecContext(ctx,
		`DELETE FROM records WHERE kind = ? AND id = ?`, string(kind), id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
