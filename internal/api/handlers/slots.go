package handlers

import (
	"net/http"

	"github.com/weekly-planner/backend/internal/planner"
	"github.com/weekly-planner/backend/internal/service"
	"github.com/weekly-planner/backend/internal/strategy"
)

// SlotRequest asks for the earliest time every invitee is free.
type SlotRequest struct {
	Invitees []string `json:"invitees"`
	Duration int      `json:"duration_minutes"`
	From     *TimeDTO `json:"from,omitempty"`
	Strategy string   `json:"strategy"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Online   bool     `json:"online"`
	// Schedule adds the found event instead of only returning it.
	Schedule bool `json:"schedule"`
}

type SlotResponse struct {
	Event     EventDTO `json:"event"`
	Scheduled bool     `json:"scheduled"`
}

// FindSlot runs a scheduling strategy over the invitees' schedules.
func FindSlot(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SlotRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		sr := strategy.SlotRequest{
			Name:     req.Name,
			Location: req.Location,
			Online:   req.Online,
			Invitees: req.Invitees,
			Duration: req.Duration,
			From:     planner.StartOfWeek,
		}
		if req.From != nil {
			from, err := req.From.weekTime()
			if err != nil {
				writeServiceError(w, err)
				return
			}
			sr.From = from
		}

		var (
			e   planner.Event
			err error
		)
		if req.Schedule {
			e, err = svc.ScheduleSlot(r.Context(), sr, req.Strategy)
		} else {
			e, err = svc.FindSlot(sr, req.Strategy)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		status := http.StatusOK
		if req.Schedule {
			status = http.StatusCreated
		}
		writeJSON(w, status, SlotResponse{Event: newEventDTO(e), Scheduled: req.Schedule})
	}
}
