package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/weekly-planner/backend/internal/api/middleware"
	"github.com/weekly-planner/backend/internal/log"
	"github.com/weekly-planner/backend/internal/planner"
)

// maxBodyBytes caps JSON and schedule document request bodies.
const maxBodyBytes = 1 << 20

// TimeDTO is a week time on the wire: {"day": "Tuesday", "time": "0930"}.
type TimeDTO struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

func newTimeDTO(t planner.WeekTime) TimeDTO {
	return TimeDTO{Day: t.Day().String(), Time: t.Clock()}
}

func (d TimeDTO) weekTime() (planner.WeekTime, error) {
	return planner.ParseWeekTime(d.Day, d.Time)
}

// EventDTO is an event on the wire. Invitees are ordered, host first.
type EventDTO struct {
	Name     string   `json:"name"`
	Start    TimeDTO  `json:"start"`
	End      TimeDTO  `json:"end"`
	Online   bool     `json:"online"`
	Location string   `json:"location"`
	Invitees []string `json:"invitees"`
}

func newEventDTO(e planner.Event) EventDTO {
	return EventDTO{
		Name:     e.Name(),
		Start:    newTimeDTO(e.Start()),
		End:      newTimeDTO(e.End()),
		Online:   e.Online(),
		Location: e.Location(),
		Invitees: e.Invitees(),
	}
}

func newEventDTOs(events []planner.Event) []EventDTO {
	out := make([]EventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, newEventDTO(e))
	}
	return out
}

func (d EventDTO) event() (planner.Event, error) {
	start, err := d.Start.weekTime()
	if err != nil {
		return planner.Event{}, fmt.Errorf("event start: %w", err)
	}
	end, err := d.End.weekTime()
	if err != nil {
		return planner.Event{}, fmt.Errorf("event end: %w", err)
	}
	return planner.NewEvent(d.Name, start, end, d.Online, d.Location, d.Invitees)
}

// UserResponse summarizes one user.
type UserResponse struct {
	Name       string `json:"name"`
	EventCount int    `json:"event_count"`
	Host       bool   `json:"host"`
}

// decodeJSON reads a JSON body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("writing response", "error", err)
	}
}
