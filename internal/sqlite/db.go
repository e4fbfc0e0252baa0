package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema if it does not exist yet.
func (db *DB) RunMigrations() error {
	migration := `
-- Named region sets (one row per saved collection)
CREATE TABLE IF NOT EXISTS region_sets (
    name TEXT PRIMARY KEY,
    stack TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Regions, ordered within their set by display index
CREATE TABLE IF NOT EXISTS regions (
    id TEXT NOT NULL,
    set_name TEXT NOT NULL,
    idx INTEGER NOT NULL,
    name TEXT NOT NULL,
    frame INTEGER NOT NULL,
    x REAL NOT NULL,
    y REAL NOT NULL,
    width REAL NOT NULL,
    height REAL NOT NULL,
    PRIMARY KEY (set_name, idx),
    FOREIGN KEY (set_name) REFERENCES region_sets(name) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_regions_frame ON regions(set_name, frame);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
