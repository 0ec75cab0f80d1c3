package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/weekly-planner/backend/internal/storage/models"
)

// SettingsRepository stores key/value settings.
type SettingsRepository struct {
	BaseRepository
}

func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{BaseRepository: NewBaseRepository(db)}
}

// Get returns the value stored under key and whether it exists.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.DB().QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value stored under key.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, r.Now())
	if err != nil {
		return fmt.Errorf("saving setting %s: %w", key, err)
	}
	return nil
}

// List returns every stored setting ordered by key.
func (r *SettingsRepository) List(ctx context.Context) ([]models.Setting, error) {
	rows, err := r.DB().QueryContext(ctx, "SELECT key, value, updated_at FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	var out []models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
