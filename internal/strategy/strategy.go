// Package strategy finds the earliest time a group of users is free together.
package strategy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/weekly-planner/backend/internal/planner"
)

// Strategy names accepted by New.
const (
	NameAnyTime   = "any-time"
	NameWorkHours = "work-hours"
)

const (
	minutesPerDay    = 24 * 60
	lastOrdinal      = planner.DaysPerWeek*minutesPerDay - 1
	defaultWorkStart = 9 * 60
	defaultWorkEnd   = 17 * 60
)

// SlotRequest describes the event to place. Duration is in minutes.
// The zero From searches from Sunday 00:00.
type SlotRequest struct {
	Name     string
	Location string
	Online   bool
	Invitees []string
	Duration int
	From     planner.WeekTime
}

// Strategy picks a start time for a SlotRequest and returns the candidate event.
// The event is not added; callers submit it through Planner.AddEvent.
type Strategy interface {
	Name() string
	FindSlot(r planner.Reader, req SlotRequest) (planner.Event, error)
}

// New returns the named strategy. Hours is only used by the work-hours strategy.
func New(name string, hours Hours) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameAnyTime:
		return AnyTime{}, nil
	case NameWorkHours:
		return WorkHours{Hours: hours}, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", planner.ErrInvalidFormat, name)
	}
}

// interval is an inclusive range of minute-of-week ordinals.
type interval struct {
	start, end int
}

// busyIntervals collects every invitee's events, sorted by start.
func busyIntervals(r planner.Reader, invitees []string) ([]interval, error) {
	var busy []interval
	for _, name := range invitees {
		events, err := r.Events(name)
		if err != nil {
			return nil, fmt.Errorf("collecting busy time: %w", err)
		}
		for _, e := range events {
			busy = append(busy, interval{e.Start().Ordinal(), e.EffectiveEnd().Ordinal()})
		}
	}
	slices.SortFunc(busy, func(a, b interval) int { return a.start - b.start })
	return busy, nil
}

// earliest returns the first start s in window such that [s, s+duration] fits in the
// window and touches no busy interval. busy must be sorted by start.
func earliest(window interval, duration int, busy []interval) (int, bool) {
	cursor := window.start
	for _, b := range busy {
		if cursor+duration > window.end {
			return 0, false
		}
		if b.end < cursor {
			continue
		}
		if cursor+duration < b.start {
			return cursor, true
		}
		cursor = max(cursor, b.end+1)
	}
	if cursor+duration > window.end {
		return 0, false
	}
	return cursor, true
}

func validate(req SlotRequest) error {
	if req.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", planner.ErrInvalidFormat, req.Duration)
	}
	if len(req.Invitees) == 0 {
		return fmt.Errorf("%w: slot request has no invitees", planner.ErrInvalidFormat)
	}
	return nil
}

func candidate(req SlotRequest, start int) (planner.Event, error) {
	from, err := planner.WeekTimeFromMinutes(start/minutesPerDay, start%minutesPerDay)
	if err != nil {
		return planner.Event{}, err
	}
	end := start + req.Duration
	to, err := planner.WeekTimeFromMinutes(end/minutesPerDay, end%minutesPerDay)
	if err != nil {
		return planner.Event{}, err
	}
	return planner.NewEvent(req.Name, from, to, req.Online, req.Location, req.Invitees)
}

func noSlot(req SlotRequest) error {
	return fmt.Errorf("finding %d minutes for %s: %w",
		req.Duration, strings.Join(req.Invitees, ", "), planner.ErrNoSlotAvailable)
}
