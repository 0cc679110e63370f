package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/kalusugan-health/condition-screening/internal/application/services"
	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
)

// maxNoteLength bounds clinical note size; intake notes are short by nature.
const maxNoteLength = 10000

// DetectionHandler handles detection and screening HTTP requests
type DetectionHandler struct {
	detectionService    *services.DetectionService
	mentalHealthService *services.MentalHealthService
}

// NewDetectionHandler creates a new detection handler
func NewDetectionHandler(detectionService *services.DetectionService, mentalHealthService *services.MentalHealthService) *DetectionHandler {
	return &DetectionHandler{
		detectionService:    detectionService,
		mentalHealthService: mentalHealthService,
	}
}

type detectRequest struct {
	Text       string               `json:"text"`
	SourceType string               `json:"source_type,omitempty"`
	VitalSigns *entities.VitalSigns `json:"vital_signs,omitempty"`
	SkipCache  bool                 `json:"skip_cache,omitempty"`
}

// Detect handles POST /api/detect
func (h *DetectionHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if utf8.RuneCountInString(req.Text) > maxNoteLength {
		respondWithError(w, http.StatusBadRequest, "text exceeds maximum length")
		return
	}

	sourceType, ok := parseSourceType(req.SourceType)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid source_type")
		return
	}

	detections, err := h.detectionService.Detect(r.Context(), req.Text, sourceType, req.VitalSigns, services.DetectOptions{SkipCache: req.SkipCache})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"detections": detections,
		"count":      len(detections),
	})
}

type screenRequest struct {
	Text       string `json:"text"`
	SourceType string `json:"source_type,omitempty"`
}

// ScreenMentalHealth handles POST /api/mental-health/screen
func (h *DetectionHandler) ScreenMentalHealth(w http.ResponseWriter, r *http.Request) {
	var req screenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if utf8.RuneCountInString(req.Text) > maxNoteLength {
		respondWithError(w, http.StatusBadRequest, "text exceeds maximum length")
		return
	}

	sourceType, ok := parseSourceType(req.SourceType)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid source_type")
		return
	}

	findings, err := h.mentalHealthService.Screen(r.Context(), req.Text, sourceType)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	response := map[string]interface{}{
		"findings": findings,
		"count":    len(findings),
	}
	if len(findings) > 0 {
		response["highest_risk"] = services.HighestRisk(findings)
	}
	respondWithJSON(w, http.StatusOK, response)
}

// GetTrending handles GET /api/trending
func (h *DetectionHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	limit := queryInt(r, "limit", 10)

	sourceType := entities.SourceType("")
	if raw := r.URL.Query().Get("source_type"); raw != "" {
		parsed, ok := parseSourceType(raw)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid source_type")
			return
		}
		sourceType = parsed
	}

	trending, err := h.detectionService.TopConditions(r.Context(), days, sourceType, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"trending": trending,
		"days":     days,
	})
}

func parseSourceType(raw string) (entities.SourceType, bool) {
	switch entities.SourceType(raw) {
	case "":
		return entities.SourceTypeCombined, true
	case entities.SourceTypeAppointment, entities.SourceTypeHealthRecord, entities.SourceTypeCombined:
		return entities.SourceType(raw), true
	}
	return "", false
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
