package handlers

import (
	"net/http"
	"strings"

	"github.com/weekly-planner/backend/internal/api/middleware"
	"github.com/weekly-planner/backend/internal/log"
	"github.com/weekly-planner/backend/internal/service"
	"github.com/weekly-planner/backend/internal/storage"
)

// HostResponse represents the active host in API responses.
type HostResponse struct {
	Host string `json:"host"`
}

// SettingsResponse lists stored settings and the available strategies.
type SettingsResponse struct {
	Values     map[string]string `json:"values"`
	Strategies []string          `json:"strategies"`
}

// GetHost returns the user whose calendar is the active context.
func GetHost(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HostResponse{Host: svc.Host()})
	}
}

// UpdateHost switches the active host to a registered user.
func UpdateHost(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req HostResponse
		if !decodeJSON(w, r, &req) {
			return
		}
		host := strings.TrimSpace(req.Host)
		if host == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Host is required")
			return
		}

		if err := svc.SetHost(r.Context(), host); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, HostResponse{Host: host})
	}
}

// GetSettings returns all stored settings.
func GetSettings(repo *storage.SettingsRepository, svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := repo.List(r.Context())
		if err != nil {
			log.Error("listing settings", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query settings")
			return
		}

		values := make(map[string]string, len(settings))
		for _, s := range settings {
			values[s.Key] = s.Value
		}
		writeJSON(w, http.StatusOK, SettingsResponse{Values: values, Strategies: svc.StrategyNames()})
	}
}
