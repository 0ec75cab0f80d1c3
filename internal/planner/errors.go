package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned for malformed days, clocks, events or documents.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrConflict is returned when an event would overlap another in some schedule.
	ErrConflict = errors.New("schedule conflict")

	// ErrNotFound is returned when a user or event is missing.
	ErrNotFound = errors.New("not found")

	// ErrNoSlotAvailable is returned when no free slot of the requested length exists.
	ErrNoSlotAvailable = errors.New("no slot available")

	// ErrDuplicateUser is returned when a user name is already registered.
	ErrDuplicateUser = errors.New("duplicate user")

	// ErrHostRequired is returned when a modification drops the original host.
	ErrHostRequired = errors.New("host must remain invited")
)

// ConflictError names the calendar that blocked an event.
// User is empty when the conflict was detected on a bare Schedule.
type ConflictError struct {
	User     string
	Event    Event
	Existing Event
}

func (e *ConflictError) Error() string {
	if e.User == "" {
		return fmt.Sprintf("event %q overlaps %q", e.Event.Name(), e.Existing.Name())
	}
	return fmt.Sprintf("cannot add event %q for %s: overlaps %q", e.Event.Name(), e.User, e.Existing.Name())
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
