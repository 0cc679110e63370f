package entities

// RiskLevel is the triage level for a mental-health detection
type RiskLevel string

const (
	RiskHigh     RiskLevel = "high"
	RiskModerate RiskLevel = "moderate"
	RiskLow      RiskLevel = "low"
)

// FollowUpWindow is the recommended follow-up timing for a risk level
type FollowUpWindow string

const (
	FollowUpOneWeek  FollowUpWindow = "1w"
	FollowUpTwoWeeks FollowUpWindow = "2w"
	FollowUpOneMonth FollowUpWindow = "1m"
)

// RiskAssessment is the triage result attached to a mental-health detection.
// It is a pure function of (code, name) and is never persisted.
type RiskAssessment struct {
	Level            RiskLevel      `json:"level"`
	Score            int            `json:"score"`
	Keywords         []string       `json:"keywords,omitempty"`
	Recommendations  []string       `json:"recommendations,omitempty"`
	FollowUpRequired bool           `json:"follow_up_required"`
	FollowUpWithin   FollowUpWindow `json:"follow_up_within"`
}

// MentalHealthFinding bundles a detection with its triage and intervention
// suggestions for the mental-health pipeline. FollowUp is the human-readable
// rendering of Risk.FollowUpWithin, empty when no follow-up is required.
type MentalHealthFinding struct {
	Detection     Detection      `json:"detection"`
	Risk          RiskAssessment `json:"risk"`
	Interventions []string       `json:"interventions"`
	FollowUp      string         `json:"follow_up,omitempty"`
}
