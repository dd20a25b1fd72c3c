package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to metadata when the schema is created.
const SchemaVersion = "1"

// CreateSchema creates all tables and indexes for the declaration database.
// Uses a transaction so schema creation succeeds or fails as a whole.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"scans", createScansTable},
		{"files", createFilesTable},
		{"classes", createClassesTable},
		{"methods", createMethodsTable},
		{"functions", createFunctionsTable},
		{"metadata", createMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `
		INSERT INTO metadata (key, value, updated_at) VALUES
			('schema_version', ?, ?),
			('last_scan_id', '', ?)
	`
	if _, err := tx.Exec(bootstrapSQL, SchemaVersion, now, now); err != nil {
		return fmt.Errorf("failed to bootstrap metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version from metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createScansTable = `
CREATE TABLE scans (
    scan_id TEXT PRIMARY KEY,                    -- UUID
    root_dir TEXT NOT NULL,
    started_at TEXT NOT NULL,                    -- ISO 8601
    finished_at TEXT NOT NULL,                   -- ISO 8601
    file_count INTEGER NOT NULL DEFAULT 0,
    failed_count INTEGER NOT NULL DEFAULT 0
)
`

const createFilesTable = `
CREATE TABLE files (
    file_path TEXT PRIMARY KEY,                  -- Path as given to the scanner
    scan_id TEXT NOT NULL,                       -- Scan that last wrote this file
    file_hash TEXT NOT NULL DEFAULT '',          -- SHA-256 of content, empty if unreadable
    error TEXT,                                  -- NULL when analysis succeeded
    indexed_at TEXT NOT NULL,                    -- ISO 8601
    FOREIGN KEY (scan_id) REFERENCES scans(scan_id)
)
`

const createClassesTable = `
CREATE TABLE classes (
    class_id TEXT PRIMARY KEY,                   -- UUID
    file_path TEXT NOT NULL,
    name TEXT NOT NULL,
    line INTEGER NOT NULL,
    position INTEGER NOT NULL,                   -- 0-indexed source order within the file
    bases TEXT NOT NULL,                         -- JSON array of base expression text
    decorators TEXT NOT NULL,                    -- JSON array of decorator names
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)
`

const createMethodsTable = `
CREATE TABLE methods (
    method_id TEXT PRIMARY KEY,                  -- UUID
    class_id TEXT NOT NULL,
    name TEXT NOT NULL,
    line INTEGER NOT NULL,
    position INTEGER NOT NULL,                   -- 0-indexed order within the class body
    parameters TEXT NOT NULL,                    -- JSON array
    decorators TEXT NOT NULL,                    -- JSON array
    is_async INTEGER NOT NULL DEFAULT 0,
    is_staticmethod INTEGER NOT NULL DEFAULT 0,
    is_classmethod INTEGER NOT NULL DEFAULT 0,
    is_property INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (class_id) REFERENCES classes(class_id) ON DELETE CASCADE
)
`

const createFunctionsTable = `
CREATE TABLE functions (
    function_id TEXT PRIMARY KEY,                -- UUID
    file_path TEXT NOT NULL,
    name TEXT NOT NULL,
    line INTEGER NOT NULL,
    position INTEGER NOT NULL,                   -- 0-indexed source order within the file
    parameters TEXT NOT NULL,                    -- JSON array
    decorators TEXT NOT NULL,                    -- JSON array
    is_async INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)
`

const createMetadataTable = `
CREATE TABLE metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_files_scan_id ON files(scan_id)",

		"CREATE INDEX idx_classes_file_path ON classes(file_path)",
		"CREATE INDEX idx_classes_name ON classes(name)",

		"CREATE INDEX idx_methods_class_id ON methods(class_id)",
		"CREATE INDEX idx_methods_name ON methods(name)",

		"CREATE INDEX idx_functions_file_path ON functions(file_path)",
		"CREATE INDEX idx_functions_name ON functions(name)",
	}
}
