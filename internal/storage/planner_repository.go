package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/weekly-planner/backend/internal/planner"
	"github.com/weekly-planner/backend/internal/storage/models"
)

// PlannerRepository stores complete planner snapshots.
type PlannerRepository struct {
	BaseRepository
}

func NewPlannerRepository(db *DB) *PlannerRepository {
	return &PlannerRepository{BaseRepository: NewBaseRepository(db)}
}

// Save replaces the stored state with users in a single transaction.
func (r *PlannerRepository) Save(ctx context.Context, users []planner.User) error {
	now := r.Now()
	return r.DB().Transaction(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"event_invitees", "events", "users"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}

		for i, u := range users {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO users (name, position, created_at) VALUES (?, ?, ?)",
				u.Name(), i, now,
			); err != nil {
				return fmt.Errorf("inserting user %s: %w", u.Name(), err)
			}
			for j, e := range u.Events() {
				if err := insertEvent(ctx, tx, models.NewEventRow(GenerateID(), u.Name(), j, e)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func insertEvent(ctx context.Context, q Queryable, row models.EventRow) error {
	if _, err := q.ExecContext(ctx, `
		INSERT INTO events (
			id, owner, position, name,
			start_day, start_hour, start_minute,
			end_day, end_hour, end_minute,
			online, location
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		row.ID, row.Owner, row.Position, row.Name,
		row.StartDay, row.StartHour, row.StartMinute,
		row.EndDay, row.EndHour, row.EndMinute,
		row.Online, row.Location,
	); err != nil {
		return fmt.Errorf("inserting event %q for %s: %w", row.Name, row.Owner, err)
	}

	for i, name := range row.Invitees {
		if _, err := q.ExecContext(ctx,
			"INSERT INTO event_invitees (event_id, position, name) VALUES (?, ?, ?)",
			row.ID, i, name,
		); err != nil {
			return fmt.Errorf("inserting invitee %s of %q: %w", name, row.Name, err)
		}
	}
	return nil
}

// Load rebuilds users in registration order with events in insertion order.
func (r *PlannerRepository) Load(ctx context.Context) ([]planner.User, error) {
	userRows, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	invitees, err := r.invitees(ctx)
	if err != nil {
		return nil, err
	}
	eventRows, err := r.events(ctx)
	if err != nil {
		return nil, err
	}

	byOwner := make(map[string][]planner.Event, len(userRows))
	for _, row := range eventRows {
		row.Invitees = invitees[row.ID]
		e, err := row.Event()
		if err != nil {
			return nil, fmt.Errorf("loading event %s: %w", row.ID, err)
		}
		byOwner[row.Owner] = append(byOwner[row.Owner], e)
	}

	users := make([]planner.User, 0, len(userRows))
	for _, row := range userRows {
		u, err := planner.NewUser(row.Name, byOwner[row.Name]...)
		if err != nil {
			return nil, fmt.Errorf("loading user %s: %w", row.Name, err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *PlannerRepository) users(ctx context.Context) ([]models.UserRow, error) {
	rows, err := r.DB().QueryContext(ctx, "SELECT name, position, created_at FROM users ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var out []models.UserRow
	for rows.Next() {
		var u models.UserRow
		if err := rows.Scan(&u.Name, &u.Position, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PlannerRepository) events(ctx context.Context) ([]models.EventRow, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, owner, position, name,
		       start_day, start_hour, start_minute,
		       end_day, end_hour, end_minute,
		       online, location
		FROM events
		ORDER BY owner, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []models.EventRow
	for rows.Next() {
		var e models.EventRow
		if err := rows.Scan(
			&e.ID, &e.Owner, &e.Position, &e.Name,
			&e.StartDay, &e.StartHour, &e.StartMinute,
			&e.EndDay, &e.EndHour, &e.EndMinute,
			&e.Online, &e.Location,
		); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PlannerRepository) invitees(ctx context.Context) (map[string][]string, error) {
	rows, err := r.DB().QueryContext(ctx, "SELECT event_id, name FROM event_invitees ORDER BY event_id, position")
	if err != nil {
		return nil, fmt.Errorf("querying invitees: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning invitee: %w", err)
		}
		out[id] = append(out[id], name)
	}
	return out, rows.Err()
}
