// Package models holds the row types stored by the storage package.
package models

import (
	"time"

	"github.com/weekly-planner/backend/internal/planner"
)

// Setting keys.
const (
	SettingHost = "host"
)

// UserRow is one registered user.
type UserRow struct {
	Name      string
	Position  int
	CreatedAt time.Time
}

// EventRow is one user's stored copy of an event.
type EventRow struct {
	ID          string
	Owner       string
	Position    int
	Name        string
	StartDay    int
	StartHour   int
	StartMinute int
	EndDay      int
	EndHour     int
	EndMinute   int
	Online      bool
	Location    string
	Invitees    []string
}

// NewEventRow flattens e for storage under owner.
func NewEventRow(id, owner string, position int, e planner.Event) EventRow {
	return EventRow{
		ID:          id,
		Owner:       owner,
		Position:    position,
		Name:        e.Name(),
		StartDay:    int(e.Start().Day()),
		StartHour:   e.Start().Hour(),
		StartMinute: e.Start().Minute(),
		EndDay:      int(e.End().Day()),
		EndHour:     e.End().Hour(),
		EndMinute:   e.End().Minute(),
		Online:      e.Online(),
		Location:    e.Location(),
		Invitees:    e.Invitees(),
	}
}

// Event rebuilds the domain event, validating every field again.
func (r EventRow) Event() (planner.Event, error) {
	start, err := planner.NewWeekTime(planner.Day(r.StartDay), r.StartHour, r.StartMinute)
	if err != nil {
		return planner.Event{}, err
	}
	end, err := planner.NewWeekTime(planner.Day(r.EndDay), r.EndHour, r.EndMinute)
	if err != nil {
		return planner.Event{}, err
	}
	return planner.NewEvent(r.Name, start, end, r.Online, r.Location, r.Invitees)
}

// Setting is one key/value row.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
