package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
)

// MentalHealthService runs the mental-health screening pipeline: detection
// narrowed to ICD-11 chapter 6, plus triage and intervention suggestions per
// finding.
type MentalHealthService struct {
	detection     *DetectionService
	risk          *RiskService
	interventions *InterventionService
	logger        zerolog.Logger
}

// NewMentalHealthService creates a mental-health screening service
func NewMentalHealthService(detection *DetectionService, risk *RiskService, interventions *InterventionService) *MentalHealthService {
	return &MentalHealthService{
		detection:     detection,
		risk:          risk,
		interventions: interventions,
		logger:        observability.GetLogger().With().Str("component", "mental_health_service").Logger(),
	}
}

// Screen analyzes a note for mental-health conditions. Findings are ordered
// like detections: confidence descending, code ascending.
func (s *MentalHealthService) Screen(ctx context.Context, text string, sourceType entities.SourceType) ([]entities.MentalHealthFinding, error) {
	detections, err := s.detection.Detect(ctx, text, sourceType, nil, DetectOptions{})
	if err != nil {
		return nil, err
	}

	findings := []entities.MentalHealthFinding{}
	for _, d := range detections {
		if !strings.HasPrefix(d.Code, "6") {
			continue
		}
		d.Source = entities.SourceMentalHealthMapping

		risk := s.risk.Assess(d.Code, d.Name)
		finding := entities.MentalHealthFinding{
			Detection:     d,
			Risk:          risk,
			Interventions: s.interventions.Suggest(ctx, d.Code, risk.Level),
		}
		if risk.FollowUpRequired {
			finding.FollowUp = FormatFollowUp(risk.FollowUpWithin)
		}
		findings = append(findings, finding)
	}

	if len(findings) > 0 {
		s.logger.Info().
			Int("findings", len(findings)).
			Str("highest_risk", string(HighestRisk(findings))).
			Msg("Mental health screening complete")
	}

	return findings, nil
}

// HighestRisk returns the most severe risk level among findings.
func HighestRisk(findings []entities.MentalHealthFinding) entities.RiskLevel {
	highest := entities.RiskLow
	best := 0
	for _, f := range findings {
		if f.Risk.Score > best {
			best = f.Risk.Score
			highest = f.Risk.Level
		}
	}
	return highest
}
