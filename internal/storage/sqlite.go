// Package storage persists planner state and settings in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DatabaseFile is the file name used inside the data directory.
const DatabaseFile = "planner.db"

// DB wraps the SQL connection pool.
type DB struct {
	*sql.DB
	path string
}

// Open creates the data directory if needed, opens the database inside it and
// applies pending migrations.
func Open(dataDir string) (*DB, error) {
	db, err := NewDB(filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db, nil
}

// NewDB opens the SQLite file at path.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// WAL lets readers proceed while the service persists a snapshot.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	return &DB{DB: db, path: path}, nil
}

func (db *DB) Path() string {
	return db.path
}

// Healthy reports whether the database answers a ping.
func (db *DB) Healthy(ctx context.Context) bool {
	return db.PingContext(ctx) == nil
}

// Transaction runs fn in a transaction, rolling back if fn fails.
func (db *DB) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
