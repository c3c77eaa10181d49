// Package sqlite opens the local database shared by the ledger and the price store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"cryptowallet/internal/domain/errs"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id TEXT PRIMARY KEY,
	asset_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	amount TEXT NOT NULL,
	date TEXT NOT NULL,
	kind TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_operations_asset_id ON operations(asset_id);
CREATE INDEX IF NOT EXISTS idx_operations_date ON operations(date);

CREATE TABLE IF NOT EXISTS price_points (
	asset_id TEXT NOT NULL,
	date TEXT NOT NULL,
	price TEXT NOT NULL,
	UNIQUE(asset_id, date)
);
`

// Open opens (creating if needed) the database at path and applies the schema.
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("%w: create directory %s: %v", errs.ErrStorageOpen, dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStorageOpen, err)
	}

	// A single connection keeps ":memory:" databases shared between statements
	// and serializes writers on file databases.
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the tables if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: apply schema: %v", errs.ErrStorageOpen, err)
	}
	return nil
}
