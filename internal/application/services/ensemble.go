package services

import (
	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
)

const (
	sourceAgreementBoost = 0.05
	vitalSignsBoost      = 0.05
)

// Condition families eligible for a vital-signs confidence boost.
var (
	feverCodes = map[string]bool{
		"MD90.0": true,
	}
	respiratoryCodes = map[string]bool{
		"MD90.0": true, "CA02.0": true, "CA00.0": true, "1E32.0": true, "MD90.7": true,
	}
	cardiovascularCodes = map[string]bool{
		"8A80.2": true, "MD90.6": true,
	}
	gastrointestinalCodes = map[string]bool{
		"DA92.0": true, "MD90.1": true, "MD90.2": true, "DA92.1": true,
	}
)

// MergeDetections combines per-detector candidates into one ranked result
// per code. For each code the strongest confidence is taken as the base and
// every distinct agreeing source adds 0.05; a matching vital-signs indicator
// adds a further 0.05. All scores clamp to [0, 1] and ties sort by code.
func MergeDetections(detections []entities.Detection, indicators *entities.VitalIndicators) []entities.Detection {
	if len(detections) == 0 {
		return []entities.Detection{}
	}

	type group struct {
		best    entities.Detection
		sources []entities.DetectionSource
		seen    map[entities.DetectionSource]bool
	}

	groups := make(map[string]*group)
	order := make([]string, 0, len(detections))
	for _, d := range detections {
		g, ok := groups[d.Code]
		if !ok {
			g = &group{best: d, seen: make(map[entities.DetectionSource]bool)}
			groups[d.Code] = g
			order = append(order, d.Code)
		}
		if d.Confidence > g.best.Confidence {
			carry := g.best.MatchedTerms
			g.best = d
			if len(d.MatchedTerms) == 0 {
				g.best.MatchedTerms = carry
			}
		} else {
			if g.best.Similarity == 0 && d.Similarity != 0 {
				g.best.Similarity = d.Similarity
			}
			if g.best.ClassifierProbability == 0 && d.ClassifierProbability != 0 {
				g.best.ClassifierProbability = d.ClassifierProbability
			}
			if len(g.best.MatchedTerms) == 0 {
				g.best.MatchedTerms = d.MatchedTerms
			}
		}
		if !g.seen[d.Source] {
			g.seen[d.Source] = true
			g.sources = append(g.sources, d.Source)
		}
	}

	merged := make([]entities.Detection, 0, len(groups))
	for _, code := range order {
		g := groups[code]

		result := g.best
		result.Source = entities.SourceEnsemble
		result.DetectionMethods = g.sources
		result.Confidence = entities.ClampConfidence(g.best.Confidence + sourceAgreementBoost*float64(len(g.sources)))

		if boost := vitalBoostApplies(code, indicators); boost {
			result.Confidence = entities.ClampConfidence(result.Confidence + vitalSignsBoost)
			result.VitalSignsSupported = true
			result.ConfidenceBoost = vitalSignsBoost
		}

		merged = append(merged, result)
	}

	entities.SortDetections(merged)
	return merged
}

func vitalBoostApplies(code string, indicators *entities.VitalIndicators) bool {
	if indicators == nil {
		return false
	}
	switch {
	case indicators.Febrile && feverCodes[code]:
		return true
	case indicators.Respiratory && respiratoryCodes[code]:
		return true
	case indicators.Cardiovascular && cardiovascularCodes[code]:
		return true
	case indicators.Gastrointestinal && gastrointestinalCodes[code]:
		return true
	}
	return false
}
