package services

import (
	"strings"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
)

// RiskService derives a triage level for mental-health detections. The
// derivation is a pure function of (code, name) so identical detections
// always triage identically.
type RiskService struct{}

// NewRiskService creates a risk service
func NewRiskService() *RiskService {
	return &RiskService{}
}

var highRiskKeywords = []string{
	"suicide", "suicidal", "self-harm", "self-injury",
	"psychosis", "schizophrenia", "manic", "psychotic",
}

var lowRiskKeywords = []string{
	"mild", "adjustment", "academic stress", "social stress", "family stress",
	"attention", "learning", "developmental",
}

var moderateRiskKeywords = []string{
	"depression", "depressive", "anxiety", "trauma", "eating disorder",
	"substance", "ptsd", "post traumatic", "phobia",
}

var highRiskCodePrefixes = []string{
	"6A72", // suicidal ideation / self-harm
	"6A2",  // schizophrenia and other primary psychotic disorders
	"6A6",  // bipolar and related disorders
}

var lowRiskCodes = []string{"6B00.0", "6B00.1", "6A70.0", "6A70.1"}

// Assess triages a mental-health condition. Unknown conditions default to
// moderate, the safer choice for a screening tool.
func (s *RiskService) Assess(code, name string) entities.RiskAssessment {
	level, keywords := deriveRiskLevel(code, strings.ToLower(name))

	assessment := entities.RiskAssessment{
		Level:    level,
		Keywords: keywords,
	}

	switch level {
	case entities.RiskHigh:
		assessment.Score = 3
		assessment.FollowUpRequired = true
		assessment.FollowUpWithin = entities.FollowUpOneWeek
		assessment.Recommendations = []string{
			"Immediate referral to a mental health professional",
			"Do not leave the person alone if actively at risk",
			"Provide crisis hotline information (NCMH 1553)",
		}
	case entities.RiskModerate:
		assessment.Score = 2
		assessment.FollowUpRequired = true
		assessment.FollowUpWithin = entities.FollowUpTwoWeeks
		assessment.Recommendations = []string{
			"Schedule an assessment with a mental health professional",
			"Monitor for worsening symptoms",
		}
	case entities.RiskLow:
		assessment.Score = 1
		assessment.FollowUpRequired = false
		assessment.FollowUpWithin = entities.FollowUpOneMonth
		assessment.Recommendations = []string{
			"Supportive counselling and self-care guidance",
			"Re-screen at the next routine visit",
		}
	}

	return assessment
}

func deriveRiskLevel(code, loweredName string) (entities.RiskLevel, []string) {
	if matched := matchKeywords(loweredName, highRiskKeywords); len(matched) > 0 {
		return entities.RiskHigh, matched
	}
	for _, prefix := range highRiskCodePrefixes {
		if strings.HasPrefix(code, prefix) {
			return entities.RiskHigh, nil
		}
	}
	// severe depressive episode variants
	if strings.HasPrefix(code, "6A70.2") || strings.HasPrefix(code, "6A70.3") || strings.HasPrefix(code, "6A70.4") {
		return entities.RiskHigh, nil
	}

	if matched := matchKeywords(loweredName, lowRiskKeywords); len(matched) > 0 {
		return entities.RiskLow, matched
	}
	for _, lowCode := range lowRiskCodes {
		if code == lowCode {
			return entities.RiskLow, nil
		}
	}
	if strings.HasPrefix(code, "6A0") {
		// neurodevelopmental disorders screen low; they need services, not
		// crisis escalation
		return entities.RiskLow, nil
	}

	matched := matchKeywords(loweredName, moderateRiskKeywords)
	return entities.RiskModerate, matched
}

func matchKeywords(loweredName string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(loweredName, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
