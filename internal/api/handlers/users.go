package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/weekly-planner/backend/internal/api/middleware"
	"github.com/weekly-planner/backend/internal/calendar"
	"github.com/weekly-planner/backend/internal/log"
	"github.com/weekly-planner/backend/internal/planner"
	"github.com/weekly-planner/backend/internal/service"
)

type CreateUserRequest struct {
	Name string `json:"name"`
}

// DayEvents is one day of a by-day listing.
type DayEvents struct {
	Day    string     `json:"day"`
	Events []EventDTO `json:"events"`
}

// EventAtResponse tells whether a user is busy at a given time.
type EventAtResponse struct {
	Busy  bool      `json:"busy"`
	Event *EventDTO `json:"event,omitempty"`
}

// ListUsers returns every user in registration order.
func ListUsers(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host := svc.Host()
		users := svc.Users()
		response := make([]UserResponse, 0, len(users))
		for _, u := range users {
			response = append(response, UserResponse{
				Name:       u.Name(),
				EventCount: len(u.Events()),
				Host:       u.Name() == host,
			})
		}
		writeJSON(w, http.StatusOK, response)
	}
}

// CreateUser registers a user with an empty schedule.
func CreateUser(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name is required")
			return
		}

		if err := svc.AddUser(r.Context(), name); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, UserResponse{Name: name, Host: svc.Host() == name})
	}
}

// ListUserEvents returns a user's events in insertion order.
func ListUserEvents(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.Events(mux.Vars(r)["name"])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventDTOs(events))
	}
}

// ListUserEventsByDay groups a user's events by start day, Sunday first.
func ListUserEventsByDay(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := svc.User(mux.Vars(r)["name"])
		if !ok {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "User not found")
			return
		}

		grouped := u.Schedule().GroupByDay()
		response := make([]DayEvents, 0, planner.DaysPerWeek)
		for _, d := range planner.Days() {
			response = append(response, DayEvents{Day: d.String(), Events: newEventDTOs(grouped[d])})
		}
		writeJSON(w, http.StatusOK, response)
	}
}

// GetEventAt reports the event a user has at ?day=Tuesday&time=0930.
func GetEventAt(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		t, err := planner.ParseWeekTime(q.Get("day"), q.Get("time"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		e, found, err := svc.EventAt(mux.Vars(r)["name"], t)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response := EventAtResponse{Busy: found}
		if found {
			dto := newEventDTO(e)
			response.Event = &dto
		}
		writeJSON(w, http.StatusOK, response)
	}
}

// ExportSchedule returns a user's schedule document, the format accepted by import.
// ?view=text renders the human-readable day-by-day view instead.
func ExportSchedule(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := svc.User(mux.Vars(r)["name"])
		if !ok {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "User not found")
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if r.URL.Query().Get("view") == "text" {
			_, _ = w.Write([]byte(calendar.ScheduleView(u)))
			return
		}

		var buf bytes.Buffer
		if err := calendar.EncodeSchedule(&buf, u); err != nil {
			log.Error("encoding schedule", err, "user", u.Name())
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to encode schedule")
			return
		}
		_, _ = w.Write(buf.Bytes())
	}
}

// ExportScheduleICS returns a user's schedule as an iCalendar file.
func ExportScheduleICS(svc *service.Service, codec *calendar.ICSCodec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := svc.User(mux.Vars(r)["name"])
		if !ok {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "User not found")
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		_, _ = w.Write([]byte(codec.Encode(u)))
	}
}
