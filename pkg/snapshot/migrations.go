package snapshot

import (
	"database/sql"
	"fmt"
)

// initializeSchema creates the snapshots table if it does not already exist,
// tracking its own version the way the teacher's execution-history schema
// does, so a later migration can extend it without breaking existing
// databases.
func initializeSchema(db *sql.DB) error {
	migrationsTable := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(migrationsTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version < 1 {
		if err := applyMigration1(db); err != nil {
			return fmt.Errorf("failed to apply migration 1: %w", err)
		}
	}

	return nil
}

func applyMigration1(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snapshotsTable := `
	CREATE TABLE snapshots (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		triggers TEXT NOT NULL,
		actions TEXT
	);`
	if _, err := tx.Exec(snapshotsTable); err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (1)"); err != nil {
		return fmt.Errorf("failed to record migration version: %w", err)
	}

	return tx.Commit()
}
