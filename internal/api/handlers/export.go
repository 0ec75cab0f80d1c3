package handlers

import (
	"net/http"

	"github.com/weekly-planner/backend/internal/api/middleware"
	"github.com/weekly-planner/backend/internal/calendar"
	"github.com/weekly-planner/backend/internal/log"
)

// RunExport writes every user's schedule files immediately.
func RunExport(exporter *calendar.Exporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if exporter == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, middleware.ErrUnavailable, "Schedule export is disabled")
			return
		}

		result, err := exporter.ExportNow(r.Context())
		if err != nil {
			log.Error("manual export", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Export failed")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// LastExport returns the most recent export run.
func LastExport(exporter *calendar.Exporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if exporter == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, middleware.ErrUnavailable, "Schedule export is disabled")
			return
		}
		last := exporter.LastResult()
		if last == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "No export has run yet")
			return
		}
		writeJSON(w, http.StatusOK, last)
	}
}
