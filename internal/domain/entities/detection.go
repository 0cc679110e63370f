package entities

import (
	"regexp"
	"sort"
)

// DetectionSource identifies which pipeline stage produced a detection
type DetectionSource string

const (
	SourceLexical             DetectionSource = "lexical"
	SourceSemantic            DetectionSource = "semantic"
	SourceClassifier          DetectionSource = "classifier"
	SourceEnsemble            DetectionSource = "ensemble"
	SourceFallback            DetectionSource = "fallback"
	SourceRemoteEnhanced      DetectionSource = "remote_enhanced"
	SourceMentalHealthMapping DetectionSource = "mental_health_mapping"
)

// SourceType labels where the analyzed text came from, for trending counters
type SourceType string

const (
	SourceTypeAppointment  SourceType = "appointment"
	SourceTypeHealthRecord SourceType = "health_record"
	SourceTypeCombined     SourceType = "combined"
)

var icd11CodePattern = regexp.MustCompile(`^[0-9A-Z][A-Z0-9]{1,6}(\.[A-Z0-9]+)?$`)

// ValidICD11Code reports whether code matches the ICD-11 code syntax.
// Codes are otherwise treated as opaque strings.
func ValidICD11Code(code string) bool {
	return icd11CodePattern.MatchString(code)
}

// Detection is a single candidate diagnosis produced by a detector or by the
// ensemble. It is a short-lived value and is never persisted directly.
type Detection struct {
	Code                  string            `json:"code"`
	Name                  string            `json:"name"`
	Confidence            float64           `json:"confidence"`
	Source                DetectionSource   `json:"source"`
	MatchedTerms          []string          `json:"matched_terms,omitempty"`
	Similarity            float64           `json:"similarity,omitempty"`
	ClassifierProbability float64           `json:"classifier_probability,omitempty"`
	VitalSignsSupported   bool              `json:"vital_signs_supported,omitempty"`
	ConfidenceBoost       float64           `json:"confidence_boost,omitempty"`
	DetectionMethods      []DetectionSource `json:"detection_methods,omitempty"`
	Definition            string            `json:"definition,omitempty"`
}

// ClampConfidence bounds a score into [0, 1]
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SortDetections orders detections descending by confidence with ties broken
// by lexicographic code order.
func SortDetections(detections []Detection) {
	sort.Slice(detections, func(i, j int) bool {
		if detections[i].Confidence != detections[j].Confidence {
			return detections[i].Confidence > detections[j].Confidence
		}
		return detections[i].Code < detections[j].Code
	})
}
