package planner

import (
	"fmt"
	"strings"
)

// User is a named owner of one schedule. The name is the user's identity.
type User struct {
	name     string
	schedule *Schedule
}

// NewUser builds a user whose schedule holds events, validated for overlaps.
func NewUser(name string, events ...Event) (User, error) {
	if err := checkUserName(name); err != nil {
		return User{}, err
	}
	s, err := NewSchedule(events...)
	if err != nil {
		return User{}, fmt.Errorf("building schedule for %s: %w", name, err)
	}
	return User{name: name, schedule: s}, nil
}

func (u User) Name() string {
	return u.name
}

// Schedule returns a copy of the user's schedule.
func (u User) Schedule() *Schedule {
	if u.schedule == nil {
		return &Schedule{}
	}
	return u.schedule.Clone()
}

// Events returns the user's events in insertion order.
func (u User) Events() []Event {
	if u.schedule == nil {
		return nil
	}
	return u.schedule.Events()
}

const lineBreaks = "\r\n"

// checkUserName rejects names the schedule document cannot carry verbatim.
func checkUserName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty user name", ErrInvalidFormat)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("%w: user name %q has surrounding whitespace", ErrInvalidFormat, name)
	case strings.ContainsAny(name, lineBreaks):
		return fmt.Errorf("%w: user name %q spans lines", ErrInvalidFormat, name)
	}
	return nil
}
