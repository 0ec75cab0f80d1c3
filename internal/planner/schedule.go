package planner

import "slices"

// Schedule is one user's list of events in insertion order.
// No two events in a schedule overlap.
type Schedule struct {
	events []Event
}

// NewSchedule builds a schedule by adding each event in order.
func NewSchedule(events ...Event) (*Schedule, error) {
	s := &Schedule{}
	for _, e := range events {
		if err := s.Add(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends e unless it overlaps an existing event, in which case a
// *ConflictError naming the existing event is returned.
func (s *Schedule) Add(e Event) error {
	for _, existing := range s.events {
		if e.Overlaps(existing) {
			return &ConflictError{Event: e, Existing: existing}
		}
	}
	s.events = append(s.events, e)
	return nil
}

// Remove deletes the first event structurally equal to e and reports whether one was found.
func (s *Schedule) Remove(e Event) bool {
	i := s.index(e)
	if i < 0 {
		return false
	}
	s.events = slices.Delete(s.events, i, i+1)
	return true
}

// Replace swaps the stored copy of old for updated in place, keeping its position.
// Callers must only use it for changes that cannot introduce an overlap, such as
// invitee edits.
func (s *Schedule) Replace(old, updated Event) bool {
	i := s.index(old)
	if i < 0 {
		return false
	}
	s.events[i] = updated
	return true
}

// Contains reports whether a structurally equal event is stored.
func (s *Schedule) Contains(e Event) bool {
	return s.index(e) >= 0
}

// Events returns a copy of the events in insertion order.
func (s *Schedule) Events() []Event {
	return slices.Clone(s.events)
}

func (s *Schedule) Len() int {
	return len(s.events)
}

// EventAt returns the event whose [start, effective end] contains t.
func (s *Schedule) EventAt(t WeekTime) (Event, bool) {
	for _, e := range s.events {
		if e.Contains(t) {
			return e, true
		}
	}
	return Event{}, false
}

// GroupByDay partitions events by start day. All seven days are present.
func (s *Schedule) GroupByDay() map[Day][]Event {
	byDay := make(map[Day][]Event, DaysPerWeek)
	for _, d := range Days() {
		byDay[d] = []Event{}
	}
	for _, e := range s.events {
		byDay[e.start.day] = append(byDay[e.start.day], e)
	}
	return byDay
}

// Clone returns an independent copy. Events are values so a shallow slice copy suffices.
func (s *Schedule) Clone() *Schedule {
	return &Schedule{events: slices.Clone(s.events)}
}

func (s *Schedule) index(e Event) int {
	return slices.IndexFunc(s.events, e.Equal)
}
