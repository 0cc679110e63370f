package handlers

import (
	"net/http"
	"time"

	"github.com/kalusugan-health/condition-screening/internal/application/services"
)

// AdminHandler handles maintenance endpoints
type AdminHandler struct {
	entityService *services.EntityService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(entityService *services.EntityService) *AdminHandler {
	return &AdminHandler{entityService: entityService}
}

// RefreshStale handles POST /api/admin/refresh-stale
func (h *AdminHandler) RefreshStale(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)

	refreshed, err := h.entityService.RefreshStale(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"refreshed": refreshed,
	})
}

// CleanupInactive handles POST /api/admin/cleanup-inactive
func (h *AdminHandler) CleanupInactive(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)

	removed, err := h.entityService.CleanupInactive(r.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"removed": removed,
	})
}
