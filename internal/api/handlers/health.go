// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"net/http"
	"time"

	"github.com/weekly-planner/backend/internal/calendar"
	"github.com/weekly-planner/backend/internal/service"
	"github.com/weekly-planner/backend/internal/storage"
	"github.com/weekly-planner/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Healthy(r.Context())

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, HealthResponse{Status: status, DBConnected: dbConnected})
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	Version          string     `json:"version"`
	UsersCount       int        `json:"users_count"`
	EventsCount      int        `json:"events_count"`
	Host             string     `json:"host,omitempty"`
	Strategies       []string   `json:"strategies"`
	WebSocketClients int        `json:"websocket_clients"`
	ExportEnabled    bool       `json:"export_enabled"`
	NextExportAt     *time.Time `json:"next_export_at,omitempty"`
	LastExportAt     *time.Time `json:"last_export_at,omitempty"`
}

// Status returns a handler that provides system status information.
// exporter may be nil when periodic export is disabled.
func Status(version string, svc *service.Service, hub *websocket.Hub, exporter *calendar.Exporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users := svc.Users()
		events := 0
		for _, u := range users {
			events += len(u.Events())
		}

		response := StatusResponse{
			Version:          version,
			UsersCount:       len(users),
			EventsCount:      events,
			Host:             svc.Host(),
			Strategies:       svc.StrategyNames(),
			WebSocketClients: hub.ClientCount(),
		}
		if exporter != nil {
			response.ExportEnabled = true
			response.NextExportAt = exporter.NextRun()
			if last := exporter.LastResult(); last != nil {
				at := last.At
				response.LastExportAt = &at
			}
		}
		writeJSON(w, http.StatusOK, response)
	}
}
