package handlers

import (
	"net/http"
	"strings"

	"github.com/weekly-planner/backend/internal/api/middleware"
	"github.com/weekly-planner/backend/internal/service"
)

type ModifyEventRequest struct {
	Previous EventDTO `json:"previous"`
	Updated  EventDTO `json:"updated"`
}

type RemoveEventRequest struct {
	Event EventDTO `json:"event"`
	// ActingUser defaults to the current host.
	ActingUser string `json:"acting_user"`
}

type RemoveInviteeRequest struct {
	Event EventDTO `json:"event"`
	User  string   `json:"user"`
}

// AddEvent adds an event to every registered invitee's schedule.
func AddEvent(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EventDTO
		if !decodeJSON(w, r, &req) {
			return
		}
		e, err := req.event()
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if err := svc.AddEvent(r.Context(), e); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newEventDTO(e))
	}
}

// ModifyEvent replaces an event for all of its invitees.
func ModifyEvent(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ModifyEventRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		previous, err := req.Previous.event()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		updated, err := req.Updated.event()
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if err := svc.ModifyEvent(r.Context(), previous, updated); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventDTO(updated))
	}
}

// RemoveEvent removes an event on behalf of the acting user.
func RemoveEvent(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RemoveEventRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		e, err := req.Event.event()
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if err := svc.RemoveEvent(r.Context(), e, strings.TrimSpace(req.ActingUser)); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveInvitee drops a user from the invitee list of everyone else's copy of an event.
func RemoveInvitee(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RemoveInviteeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.User) == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "User is required")
			return
		}
		e, err := req.Event.event()
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if err := svc.RemoveInvitee(r.Context(), e, req.User); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
