package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/lexicon"
	"github.com/kalusugan-health/condition-screening/internal/domain/providers"
	"github.com/kalusugan-health/condition-screening/internal/domain/repositories"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
)

const classifierTopK = 3

// ClassifierDetector surfaces predictions from the fine-tuned classifier
// head. Names come from the lexicon or mapping store; unknown codes get a
// generic placeholder name.
type ClassifierDetector struct {
	classifier     providers.ClassifierProvider
	lexicon        *lexicon.Lexicon
	mappingRepo    repositories.MappingRepository
	minProbability float64
	logger         zerolog.Logger
}

// NewClassifierDetector creates a classifier detector. classifier may be nil
// or not ready; the detector then yields nothing.
func NewClassifierDetector(classifier providers.ClassifierProvider, lex *lexicon.Lexicon, mappingRepo repositories.MappingRepository, minProbability float64) *ClassifierDetector {
	if minProbability <= 0 {
		minProbability = 0.1
	}
	return &ClassifierDetector{
		classifier:     classifier,
		lexicon:        lex,
		mappingRepo:    mappingRepo,
		minProbability: minProbability,
		logger:         observability.GetLogger().With().Str("component", "classifier_detector").Logger(),
	}
}

// Enabled reports whether the classifier head can serve predictions.
func (d *ClassifierDetector) Enabled() bool {
	return d != nil && d.classifier != nil && d.classifier.Ready()
}

// Detect returns the top predictions above the probability floor.
func (d *ClassifierDetector) Detect(ctx context.Context, normalizedText string) []entities.Detection {
	if !d.Enabled() || normalizedText == "" {
		return nil
	}

	predictions, err := d.classifier.Classify(ctx, normalizedText)
	if err != nil {
		d.logger.Warn().Err(err).Msg("Classifier head call failed, skipping classifier detection")
		return nil
	}

	var detections []entities.Detection
	for _, p := range predictions {
		if p.Probability <= d.minProbability {
			continue
		}
		detections = append(detections, entities.Detection{
			Code:                  p.Code,
			Name:                  d.conditionName(ctx, p.Code),
			Confidence:            entities.ClampConfidence(p.Probability),
			Source:                entities.SourceClassifier,
			ClassifierProbability: p.Probability,
		})
		if len(detections) == classifierTopK {
			break
		}
	}
	return detections
}

func (d *ClassifierDetector) conditionName(ctx context.Context, code string) string {
	if entry, ok := d.lexicon.LookupByCode(code); ok {
		return entry.Name
	}
	if d.mappingRepo != nil {
		if mapping, err := d.mappingRepo.GetByCode(ctx, code); err == nil && mapping.Description != "" {
			return mapping.Description
		}
	}
	return fmt.Sprintf("ICD-11 Code: %s", code)
}
