package strategy

import (
	"fmt"
	"slices"

	"github.com/weekly-planner/backend/internal/planner"
)

// Hours is a daily working window, in minutes since midnight, on the listed days.
type Hours struct {
	Days  []planner.Day
	Start int
	End   int
}

// DefaultHours is Monday to Friday, 09:00 to 17:00.
func DefaultHours() Hours {
	return Hours{
		Days:  []planner.Day{planner.Monday, planner.Tuesday, planner.Wednesday, planner.Thursday, planner.Friday},
		Start: defaultWorkStart,
		End:   defaultWorkEnd,
	}
}

// ParseHours reads day names and "HHMM" clocks. Empty inputs fall back to DefaultHours.
func ParseHours(days []string, start, end string) (Hours, error) {
	h := DefaultHours()
	if len(days) > 0 {
		h.Days = nil
		for _, name := range days {
			d, err := planner.ParseDay(name)
			if err != nil {
				return Hours{}, fmt.Errorf("parsing work days: %w", err)
			}
			h.Days = append(h.Days, d)
		}
	}
	if start != "" {
		t, err := planner.ParseWeekTime("Sunday", start)
		if err != nil {
			return Hours{}, fmt.Errorf("parsing work start: %w", err)
		}
		h.Start = t.MinutesSinceMidnight()
	}
	if end != "" {
		t, err := planner.ParseWeekTime("Sunday", end)
		if err != nil {
			return Hours{}, fmt.Errorf("parsing work end: %w", err)
		}
		h.End = min(t.MinutesSinceMidnight(), minutesPerDay-1)
	}
	if h.Start >= h.End {
		return Hours{}, fmt.Errorf("%w: work start %s is not before end %s", planner.ErrInvalidFormat, start, end)
	}
	return h, nil
}

// WorkHours places the event at the earliest common gap that fits inside one
// working window.
type WorkHours struct {
	Hours Hours
}

func (WorkHours) Name() string { return NameWorkHours }

func (w WorkHours) FindSlot(r planner.Reader, req SlotRequest) (planner.Event, error) {
	if err := validate(req); err != nil {
		return planner.Event{}, err
	}
	busy, err := busyIntervals(r, req.Invitees)
	if err != nil {
		return planner.Event{}, err
	}

	from := req.From.Ordinal()
	for _, d := range planner.Days() {
		if !w.works(d) {
			continue
		}
		window := interval{
			start: max(int(d)*minutesPerDay+w.Hours.Start, from),
			end:   int(d)*minutesPerDay + w.Hours.End,
		}
		if window.start > window.end {
			continue
		}
		if start, ok := earliest(window, req.Duration, busy); ok {
			return candidate(req, start)
		}
	}
	return planner.Event{}, noSlot(req)
}

func (w WorkHours) works(d planner.Day) bool {
	return slices.Contains(w.Hours.Days, d)
}
