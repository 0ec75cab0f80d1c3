// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/weekly-planner/backend/internal/api/handlers"
	"github.com/weekly-planner/backend/internal/api/middleware"
	"github.com/weekly-planner/backend/internal/calendar"
	"github.com/weekly-planner/backend/internal/service"
	"github.com/weekly-planner/backend/internal/storage"
	"github.com/weekly-planner/backend/internal/websocket"
)

// Dependencies are the components the router hands to its handlers.
// Exporter is nil when periodic export is disabled; StaticDir may be empty.
type Dependencies struct {
	Version   string
	DB        *storage.DB
	Settings  *storage.SettingsRepository
	Hub       *websocket.Hub
	Service   *service.Service
	Codec     *calendar.ICSCodec
	Exporter  *calendar.Exporter
	StaticDir string
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(d Dependencies) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(d.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(d.Version, d.Service, d.Hub, d.Exporter)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(d.Hub)).Methods("GET")

	// User endpoints
	api.HandleFunc("/users", handlers.ListUsers(d.Service)).Methods("GET")
	api.HandleFunc("/users", handlers.CreateUser(d.Service)).Methods("POST")
	api.HandleFunc("/users/{name}/events", handlers.ListUserEvents(d.Service)).Methods("GET")
	api.HandleFunc("/users/{name}/events/by-day", handlers.ListUserEventsByDay(d.Service)).Methods("GET")
	api.HandleFunc("/users/{name}/events/at", handlers.GetEventAt(d.Service)).Methods("GET")
	api.HandleFunc("/users/{name}/schedule.ics", handlers.ExportScheduleICS(d.Service, d.Codec)).Methods("GET")
	api.HandleFunc("/users/{name}/schedule", handlers.ExportSchedule(d.Service)).Methods("GET")

	// Schedule import
	api.HandleFunc("/schedules/import", handlers.ImportSchedule(d.Service, d.Codec)).Methods("POST")

	// Event endpoints
	api.HandleFunc("/events", handlers.AddEvent(d.Service)).Methods("POST")
	api.HandleFunc("/events", handlers.ModifyEvent(d.Service)).Methods("PUT")
	api.HandleFunc("/events/remove", handlers.RemoveEvent(d.Service)).Methods("POST")
	api.HandleFunc("/events/remove-invitee", handlers.RemoveInvitee(d.Service)).Methods("POST")

	// Slot search
	api.HandleFunc("/slots", handlers.FindSlot(d.Service)).Methods("POST")

	// Host and settings endpoints
	api.HandleFunc("/host", handlers.GetHost(d.Service)).Methods("GET")
	api.HandleFunc("/host", handlers.UpdateHost(d.Service)).Methods("PUT")
	api.HandleFunc("/settings", handlers.GetSettings(d.Settings, d.Service)).Methods("GET")

	// Export endpoints
	api.HandleFunc("/exports", handlers.RunExport(d.Exporter)).Methods("POST")
	api.HandleFunc("/exports/last", handlers.LastExport(d.Exporter)).Methods("GET")

	if d.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(d.StaticDir)))
	}

	return r
}
