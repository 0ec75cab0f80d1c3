package planner

import (
	"fmt"
	"slices"
	"strings"
)

// Event is an immutable meeting in the recurring week. The first invitee is the host.
// An event whose end is not after its start continues into the next week; for overlap
// purposes it is clamped to EndOfWeek.
type Event struct {
	name     string
	start    WeekTime
	end      WeekTime
	online   bool
	location string
	invitees []string
}

// NewEvent validates and builds an Event. The invitee slice is copied.
// Name and location must be single-line and every invitee must pass the NewUser
// name rule, so that ExportFormat output parses back to an equal Event.
func NewEvent(name string, start, end WeekTime, online bool, location string, invitees []string) (Event, error) {
	if len(invitees) == 0 {
		return Event{}, fmt.Errorf("%w: event %q has no invitees", ErrInvalidFormat, name)
	}
	if strings.ContainsAny(name, lineBreaks) {
		return Event{}, fmt.Errorf("%w: event name %q spans lines", ErrInvalidFormat, name)
	}
	if strings.ContainsAny(location, lineBreaks) {
		return Event{}, fmt.Errorf("%w: event %q location %q spans lines", ErrInvalidFormat, name, location)
	}
	for _, invitee := range invitees {
		if err := checkUserName(invitee); err != nil {
			return Event{}, fmt.Errorf("event %q invitee: %w", name, err)
		}
	}
	return Event{
		name:     name,
		start:    start,
		end:      end,
		online:   online,
		location: location,
		invitees: slices.Clone(invitees),
	}, nil
}

func (e Event) Name() string       { return e.name }
func (e Event) Start() WeekTime    { return e.start }
func (e Event) End() WeekTime      { return e.end }
func (e Event) Online() bool       { return e.online }
func (e Event) Location() string   { return e.location }
func (e Event) Invitees() []string { return slices.Clone(e.invitees) }

// Host returns the first invitee.
func (e Event) Host() string {
	if len(e.invitees) == 0 {
		return ""
	}
	return e.invitees[0]
}

// HasInvitee reports whether name is on the invitee list.
func (e Event) HasInvitee(name string) bool {
	return slices.Contains(e.invitees, name)
}

// WrapsWeek reports whether the event runs past the end of the week.
func (e Event) WrapsWeek() bool {
	return e.start.Compare(e.end) >= 0
}

// EffectiveEnd is End, or EndOfWeek when the event wraps into the next week.
func (e Event) EffectiveEnd() WeekTime {
	if e.WrapsWeek() {
		return EndOfWeek
	}
	return e.end
}

// Overlaps reports whether [start, effective end] of both events intersect.
// Endpoints are inclusive, so back-to-back events sharing a minute overlap.
func (e Event) Overlaps(other Event) bool {
	return !e.start.After(other.EffectiveEnd()) && !other.start.After(e.EffectiveEnd())
}

// Contains reports whether t falls within [start, effective end].
func (e Event) Contains(t WeekTime) bool {
	return !e.start.After(t) && !e.EffectiveEnd().Before(t)
}

// Equal is full structural equality, the identity used for removal.
func (e Event) Equal(other Event) bool {
	return e.name == other.name &&
		e.start.Equal(other.start) &&
		e.end.Equal(other.end) &&
		e.online == other.online &&
		e.location == other.location &&
		slices.Equal(e.invitees, other.invitees)
}

// WithoutInvitee returns a copy with the first occurrence of name removed.
func (e Event) WithoutInvitee(name string) Event {
	out := e
	out.invitees = slices.Clone(e.invitees)
	if i := slices.Index(out.invitees, name); i >= 0 {
		out.invitees = slices.Delete(out.invitees, i, i+1)
	}
	return out
}

// DurationMinutes is the length of the event up to its effective end.
func (e Event) DurationMinutes() int {
	return e.EffectiveEnd().Ordinal() - e.start.Ordinal()
}

func (e Event) String() string {
	return fmt.Sprintf("%s (%s->%s)", e.name, e.start, e.end)
}
