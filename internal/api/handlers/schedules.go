package handlers

import (
	"net/http"
	"strings"

	"github.com/weekly-planner/backend/internal/api/middleware"
	"github.com/weekly-planner/backend/internal/calendar"
	"github.com/weekly-planner/backend/internal/planner"
	"github.com/weekly-planner/backend/internal/service"
)

// ImportResponse reports an imported schedule.
type ImportResponse struct {
	User   string     `json:"user"`
	Events []EventDTO `json:"events"`
}

// ImportSchedule registers a user from an uploaded schedule and propagates its
// events to the other invitees. The body is a schedule document by default;
// ?format=ics&user=NAME reads an iCalendar file owned by NAME.
func ImportSchedule(svc *service.Service, codec *calendar.ICSCodec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

		var (
			u   planner.User
			err error
		)
		switch format := strings.ToLower(r.URL.Query().Get("format")); format {
		case "", "document", "txt":
			u, err = calendar.DecodeSchedule(body)
		case "ics":
			owner := strings.TrimSpace(r.URL.Query().Get("user"))
			if owner == "" {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Query parameter user is required for iCalendar imports")
				return
			}
			u, err = codec.Decode(body, owner)
		default:
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unsupported format "+format)
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if err := svc.ImportSchedule(r.Context(), u); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, ImportResponse{User: u.Name(), Events: newEventDTOs(u.Events())})
	}
}
