package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/dshills/goeta/pkg/validation"
)

// Store persists and retrieves Snapshots.
type Store interface {
	Save(s Snapshot) error
	Load(id string) (Snapshot, error)
	List() ([]Snapshot, error)
	Delete(id string) error
	Close() error
}

// SQLiteStore implements Store on top of modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite-backed Store at dbPath.
func Open(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	// SQLite has a single writer; a pool larger than one connection just
	// adds lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initializeSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save inserts s, or overwrites it if a snapshot with the same ID exists.
func (s *SQLiteStore) Save(snap Snapshot) error {
	if err := validation.ValidateIdentifier(snap.ID); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	triggersJSON, err := json.Marshal(snap.Triggers)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger states: %w", err)
	}

	query := `
		INSERT INTO snapshots (id, created_at, triggers, actions)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			triggers = excluded.triggers,
			actions = excluded.actions
	`
	_, err = s.db.Exec(query, snap.ID, snap.CreatedAt, string(triggersJSON), string(snap.Actions))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves the snapshot named id.
func (s *SQLiteStore) Load(id string) (Snapshot, error) {
	query := `SELECT id, created_at, triggers, actions FROM snapshots WHERE id = ?`

	var snap Snapshot
	var triggersJSON string
	var actions sql.NullString
	err := s.db.QueryRow(query, id).Scan(&snap.ID, &snap.CreatedAt, &triggersJSON, &actions)
	if err == sql.ErrNoRows {
		return Snapshot{}, fmt.Errorf("snapshot not found: %s", id)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(triggersJSON), &snap.Triggers); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal trigger states: %w", err)
	}
	if actions.Valid {
		snap.Actions = json.RawMessage(actions.String)
	}

	return snap, nil
}

// List returns every stored snapshot's ID and creation time, most recent first.
func (s *SQLiteStore) List() ([]Snapshot, error) {
	query := `SELECT id, created_at, triggers, actions FROM snapshots ORDER BY created_at DESC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var triggersJSON string
		var actions sql.NullString
		if err := rows.Scan(&snap.ID, &snap.CreatedAt, &triggersJSON, &actions); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(triggersJSON), &snap.Triggers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger states: %w", err)
		}
		if actions.Valid {
			snap.Actions = json.RawMessage(actions.String)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot named id.
func (s *SQLiteStore) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("snapshot not found: %s", id)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
