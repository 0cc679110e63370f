package routes

import (
	"net/http"

	"github.com/kalusugan-health/condition-screening/internal/api/handlers"
	"github.com/kalusugan-health/condition-screening/internal/api/middleware"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	detectionHandler *handlers.DetectionHandler
	mappingHandler   *handlers.MappingHandler
	adminHandler     *handlers.AdminHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	detectionHandler *handlers.DetectionHandler,
	mappingHandler *handlers.MappingHandler,
	adminHandler *handlers.AdminHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		detectionHandler: detectionHandler,
		mappingHandler:   mappingHandler,
		adminHandler:     adminHandler,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Detection endpoints
	r.mux.HandleFunc("POST /api/detect", r.detectionHandler.Detect)
	r.mux.HandleFunc("POST /api/mental-health/screen", r.detectionHandler.ScreenMentalHealth)
	r.mux.HandleFunc("GET /api/trending", r.detectionHandler.GetTrending)

	// Mapping and entity endpoints
	r.mux.HandleFunc("GET /api/mappings/search", r.mappingHandler.SearchMappings)
	r.mux.HandleFunc("GET /api/mappings/{code}", r.mappingHandler.GetMapping)
	r.mux.HandleFunc("GET /api/entities/{id}", r.mappingHandler.GetEntity)
	r.mux.HandleFunc("GET /api/status", r.mappingHandler.GetStatus)

	// Maintenance endpoints
	r.mux.HandleFunc("POST /api/admin/refresh-stale", r.adminHandler.RefreshStale)
	r.mux.HandleFunc("POST /api/admin/cleanup-inactive", r.adminHandler.CleanupInactive)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
