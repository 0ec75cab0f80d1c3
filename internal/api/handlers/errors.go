package handlers

import (
	"errors"
	"net/http"

	"github.com/weekly-planner/backend/internal/api/middleware"
	"github.com/weekly-planner/backend/internal/log"
	"github.com/weekly-planner/backend/internal/planner"
	"github.com/weekly-planner/backend/internal/service"
)

// ConflictDetails is the details object of a conflict response.
type ConflictDetails struct {
	User     string `json:"user"`
	Event    string `json:"event"`
	Existing string `json:"existing"`
}

// writeServiceError maps planner errors onto the JSON error envelope. Anything that
// is not a client error is logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	if !service.IsClientError(err) {
		log.Error("request failed", err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "An unexpected error occurred")
		return
	}

	var conflict *planner.ConflictError
	switch {
	case errors.As(err, &conflict):
		middleware.WriteErrorWithDetails(w, http.StatusConflict, middleware.ErrConflict, err.Error(), ConflictDetails{
			User:     conflict.User,
			Event:    conflict.Event.Name(),
			Existing: conflict.Existing.Name(),
		})
	case errors.Is(err, planner.ErrDuplicateUser):
		middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, err.Error())
	case errors.Is(err, planner.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, err.Error())
	case errors.Is(err, planner.ErrNoSlotAvailable):
		middleware.WriteError(w, http.StatusUnprocessableEntity, middleware.ErrNoSlotAvailable, err.Error())
	default:
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
	}
}
