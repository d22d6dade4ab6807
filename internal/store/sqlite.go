package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements PreferenceStore on a single key/value table using
// the pure Go modernc.org/sqlite driver.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open preferences db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Printf("INFO: could not set WAL mode on %s: %v", path, err)
	}

	schema := `CREATE TABLE IF NOT EXISTS preferences (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at TEXT NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create preferences schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the saved preferences or ErrNotFound.
func (s *SQLiteStore) Load(ctx context.Context) (Preferences, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, PreferencesKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return Preferences{}, ErrNotFound
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return decode([]byte(doc))
}

// Save upserts the preferences document.
func (s *SQLiteStore) Save(ctx context.Context, p Preferences) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO preferences(key, value, updated_at) VALUES(?,?,?)`,
		PreferencesKey, string(doc), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
