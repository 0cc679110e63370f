package handlers

import (
	"net/http"

	"github.com/kalusugan-health/condition-screening/internal/application/services"
)

// Capabilities reports which optional model sidecars are available, for the
// status endpoint
type Capabilities struct {
	Embedding  bool `json:"embedding"`
	Classifier bool `json:"classifier"`
}

// MappingHandler handles condition mapping and entity lookups
type MappingHandler struct {
	mappingService *services.MappingService
	entityService  *services.EntityService
	capabilities   Capabilities
}

// NewMappingHandler creates a new mapping handler
func NewMappingHandler(mappingService *services.MappingService, entityService *services.EntityService, capabilities Capabilities) *MappingHandler {
	return &MappingHandler{
		mappingService: mappingService,
		entityService:  entityService,
		capabilities:   capabilities,
	}
}

// SearchMappings handles GET /api/mappings/search
func (h *MappingHandler) SearchMappings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit := queryInt(r, "limit", 20)

	mappings, err := h.mappingService.Search(r.Context(), query, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"mappings": mappings,
		"count":    len(mappings),
	})
}

// GetMapping handles GET /api/mappings/{code}
func (h *MappingHandler) GetMapping(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "code is required")
		return
	}

	mapping, err := h.mappingService.GetByCode(r.Context(), code)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, mapping)
}

// GetEntity handles GET /api/entities/{id}
func (h *MappingHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	entityID := r.PathValue("id")
	if entityID == "" {
		respondWithError(w, http.StatusBadRequest, "entity ID is required")
		return
	}

	entity, err := h.entityService.GetEntity(r.Context(), entityID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, services.EntityPayloadSummary(entity))
}

// GetStatus handles GET /api/status
func (h *MappingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.entityService.Status(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	mappingCount, err := h.mappingService.Count(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"entity_cache": status,
		"mappings":     mappingCount,
		"capabilities": h.capabilities,
	})
}
