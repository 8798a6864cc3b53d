// Package storage is the key-versioned persistence gateway backing card,
// progress and achievement state.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the database connection. It is passed explicitly to whichever
// component needs persistence; there is no package-level connection.
type Store struct {
	db     *sqlx.DB
	dbType string
}

// Connect opens the store described by the environment: sqlite under
// DATA_DIR by default, PostgreSQL at DATABASE_URL when DB_TYPE=postgres.
func Connect() (*Store, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	if dbType == "postgres" {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %v", err)
		}
		return newStore(db, dbType)
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}
	return OpenSQLite(filepath.Join(dataDir, "leitbox.db"))
}

// OpenSQLite opens a sqlite-backed store at the given path. ":memory:" gives
// a throwaway store, used by tests.
func OpenSQLite(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %v", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return newStore(db, "sqlite")
}

func newStore(db *sqlx.DB, dbType string) (*Store, error) {
	s := &Store{db: db, dbType: dbType}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initializeSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create kv_store table: %v", err)
	}
	return nil
}
