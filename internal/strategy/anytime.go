package strategy

import "github.com/weekly-planner/backend/internal/planner"

// AnyTime places the event at the earliest common gap anywhere in the week.
type AnyTime struct{}

func (AnyTime) Name() string { return NameAnyTime }

func (AnyTime) FindSlot(r planner.Reader, req SlotRequest) (planner.Event, error) {
	if err := validate(req); err != nil {
		return planner.Event{}, err
	}
	busy, err := busyIntervals(r, req.Invitees)
	if err != nil {
		return planner.Event{}, err
	}

	start, ok := earliest(interval{req.From.Ordinal(), lastOrdinal}, req.Duration, busy)
	if !ok {
		return planner.Event{}, noSlot(req)
	}
	return candidate(req, start)
}
