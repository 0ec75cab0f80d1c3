package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Queryable is satisfied by both *sql.DB and *sql.Tx.
type Queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BaseRepository holds what every repository needs.
type BaseRepository struct {
	db *DB
}

func NewBaseRepository(db *DB) BaseRepository {
	return BaseRepository{db: db}
}

func (r *BaseRepository) DB() *DB {
	return r.db
}

// Now returns the current time in UTC for database timestamps.
func (r *BaseRepository) Now() time.Time {
	return time.Now().UTC()
}

// GenerateID returns a random UUID for use as a primary key.
func GenerateID() string {
	return uuid.NewString()
}
