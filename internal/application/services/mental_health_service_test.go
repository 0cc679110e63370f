package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
)

func newTestMentalHealthService() *MentalHealthService {
	detection := newTestDetectionService(newFakeTrendingRepo(), nil, defaultDetectionConfig())
	return NewMentalHealthService(detection, NewRiskService(), NewInterventionService(nil, nil, nil))
}

func TestScreenSuicidalIdeation(t *testing.T) {
	svc := newTestMentalHealthService()

	findings, err := svc.Screen(context.Background(), "I want to die", entities.SourceTypeCombined)
	require.NoError(t, err)
	require.NotEmpty(t, findings)

	top := findings[0]
	assert.Equal(t, "6A72", top.Detection.Code)
	assert.Equal(t, entities.SourceMentalHealthMapping, top.Detection.Source)
	assert.Equal(t, entities.RiskHigh, top.Risk.Level)
	assert.Equal(t, entities.FollowUpOneWeek, top.Risk.FollowUpWithin)
	assert.True(t, top.Risk.FollowUpRequired)
	assert.Equal(t, "1 week", top.FollowUp)
	assert.NotEmpty(t, top.Interventions)
	assert.LessOrEqual(t, len(top.Interventions), 5)
}

func TestScreenAnxietyTaglish(t *testing.T) {
	svc := newTestMentalHealthService()

	findings, err := svc.Screen(context.Background(), "kinakabahan ako palagi at hindi makatulog", entities.SourceTypeCombined)
	require.NoError(t, err)
	require.NotEmpty(t, findings)

	var anxiety *entities.MentalHealthFinding
	for i := range findings {
		if findings[i].Detection.Code == "6B00" {
			anxiety = &findings[i]
		}
		// the insomnia match (chapter 7) must not leak into the screen
		assert.Equal(t, byte('6'), findings[i].Detection.Code[0])
	}
	require.NotNil(t, anxiety)
	assert.Equal(t, entities.RiskModerate, anxiety.Risk.Level)
	assert.Equal(t, entities.FollowUpTwoWeeks, anxiety.Risk.FollowUpWithin)
	assert.Equal(t, "2 weeks", anxiety.FollowUp)
	assert.GreaterOrEqual(t, anxiety.Detection.Confidence, 0.75)
	assert.LessOrEqual(t, anxiety.Detection.Confidence, 0.90)
}

func TestScreenNonMentalHealthText(t *testing.T) {
	svc := newTestMentalHealthService()

	findings, err := svc.Screen(context.Background(), "may lagnat ako at ubo", entities.SourceTypeCombined)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestScreenEmptyText(t *testing.T) {
	svc := newTestMentalHealthService()

	findings, err := svc.Screen(context.Background(), "", entities.SourceTypeCombined)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestHighestRisk(t *testing.T) {
	findings := []entities.MentalHealthFinding{
		{Risk: entities.RiskAssessment{Level: entities.RiskLow, Score: 1}},
		{Risk: entities.RiskAssessment{Level: entities.RiskHigh, Score: 3}},
		{Risk: entities.RiskAssessment{Level: entities.RiskModerate, Score: 2}},
	}
	assert.Equal(t, entities.RiskHigh, HighestRisk(findings))
	assert.Equal(t, entities.RiskLow, HighestRisk(nil))
}
