package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kalusugan-health/condition-screening/internal/adapters/cache"
	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/providers"
	"github.com/kalusugan-health/condition-screening/internal/domain/repositories"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
	"github.com/kalusugan-health/condition-screening/pkg/config"
	"github.com/kalusugan-health/condition-screening/pkg/textnorm"
)

const detectionCachePrefix = "detection:"

// DetectOptions tune a single detection call.
type DetectOptions struct {
	// SkipCache bypasses the result cache for both read and write
	SkipCache bool

	// SkipRemote disables remote enhancement even when the gate is open
	SkipRemote bool
}

// DetectionService is the public entry point of the screening core. It runs
// the lexical, semantic and classifier detectors, merges their candidates,
// optionally enhances results from the remote terminology service, and
// records trending counters. Safe for concurrent use.
type DetectionService struct {
	lexical    *LexicalDetector
	semantic   *SemanticDetector
	classifier *ClassifierDetector
	entitySvc  *EntityService
	gate       *RemoteGate
	trending   repositories.TrendingRepository
	cache      providers.CacheProvider
	detection  config.DetectionConfig
	metrics    *observability.Metrics
	logger     zerolog.Logger
}

// NewDetectionService wires the detection pipeline. trending, cacheProvider
// and entitySvc may be nil; the corresponding stages are skipped.
func NewDetectionService(
	lexical *LexicalDetector,
	semantic *SemanticDetector,
	classifier *ClassifierDetector,
	entitySvc *EntityService,
	gate *RemoteGate,
	trending repositories.TrendingRepository,
	cacheProvider providers.CacheProvider,
	detection config.DetectionConfig,
	metrics *observability.Metrics,
) *DetectionService {
	return &DetectionService{
		lexical:    lexical,
		semantic:   semantic,
		classifier: classifier,
		entitySvc:  entitySvc,
		gate:       gate,
		trending:   trending,
		cache:      cacheProvider,
		detection:  detection,
		metrics:    metrics,
		logger:     observability.GetLogger().With().Str("component", "detection_service").Logger(),
	}
}

// Detect analyzes a clinical note and returns ranked condition candidates.
// Empty or whitespace-only text yields an empty result. Transient external
// failures never surface as errors; they only reduce the candidate set.
func (s *DetectionService) Detect(ctx context.Context, text string, sourceType entities.SourceType, vitals *entities.VitalSigns, opts DetectOptions) ([]entities.Detection, error) {
	start := time.Now()
	if sourceType == "" {
		sourceType = entities.SourceTypeCombined
	}

	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return []entities.Detection{}, nil
	}

	var indicators *entities.VitalIndicators
	if !vitals.Empty() {
		derived := EvaluateVitalSigns(vitals)
		indicators = &derived
	}

	cacheKey := s.cacheKey(normalized, sourceType, indicators)
	if !opts.SkipCache && s.cache != nil {
		var cached []entities.Detection
		if cache.GetJSON(ctx, s.cache, cacheKey, &cached) {
			observability.RecordDetectionMetric(ctx, s.metrics, "cached", len(cached), time.Since(start))
			return cached, nil
		}
	}

	merged := MergeDetections(s.runDetectors(ctx, normalized), indicators)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if !opts.SkipRemote {
		s.enhanceFromRemote(ctx, merged)
	}

	s.recordTrending(ctx, merged, sourceType)

	if !opts.SkipCache && s.cache != nil && len(merged) > 0 {
		if err := cache.SetJSON(ctx, s.cache, cacheKey, merged, s.detection.CacheTimeoutSeconds); err != nil {
			s.logger.Debug().Err(err).Msg("Failed to cache detection result")
		}
	}

	observability.RecordDetectionMetric(ctx, s.metrics, "full", len(merged), time.Since(start))
	s.logger.Info().
		Str("source_type", string(sourceType)).
		Int("detections", len(merged)).
		Dur("elapsed", time.Since(start)).
		Msg("Detection complete")
	return merged, nil
}

// runDetectors executes the three detectors. The semantic and classifier
// detectors do network I/O, so they run concurrently; the lexical detector
// is pure CPU and runs on the calling goroutine.
func (s *DetectionService) runDetectors(ctx context.Context, normalized string) []entities.Detection {
	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		detections []entities.Detection
	)

	collect := func(found []entities.Detection) {
		if len(found) == 0 {
			return
		}
		mu.Lock()
		detections = append(detections, found...)
		mu.Unlock()
	}

	if s.semantic.Enabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collect(s.semantic.Detect(ctx, normalized))
		}()
	}
	if s.classifier.Enabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collect(s.classifier.Detect(ctx, normalized))
		}()
	}

	collect(s.lexical.Detect(ctx, normalized))
	wg.Wait()
	return detections
}

// enhanceFromRemote attaches authoritative definitions to detections that
// have none locally. Every failure is silent; the merged results stand.
func (s *DetectionService) enhanceFromRemote(ctx context.Context, detections []entities.Detection) {
	if s.entitySvc == nil || s.gate == nil || !s.gate.Available() {
		return
	}

	for i := range detections {
		if detections[i].Definition != "" {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		entity, err := s.entitySvc.GetEntity(ctx, detections[i].Code)
		if err != nil {
			continue
		}
		if def := entity.Definition(); def != "" {
			detections[i].Definition = def
			detections[i].Source = entities.SourceRemoteEnhanced
		}
	}
}

// recordTrending bumps daily counters. Failures are logged and swallowed:
// analytics must never block a detection.
func (s *DetectionService) recordTrending(ctx context.Context, detections []entities.Detection, sourceType entities.SourceType) {
	if s.trending == nil || len(detections) == 0 {
		return
	}

	today := time.Now().UTC()
	toRecord := detections
	if !s.detection.TrendingWriteAll {
		toRecord = detections[:1]
	}

	for _, d := range toRecord {
		if err := s.trending.Increment(ctx, today, d.Code, sourceType); err != nil {
			s.logger.Warn().Err(err).Str("code", d.Code).Msg("Failed to record trending counter")
			return
		}
	}
}

// TopConditions reports the most-detected codes over the last days,
// optionally filtered by source type.
func (s *DetectionService) TopConditions(ctx context.Context, days int, sourceType entities.SourceType, limit int) ([]*entities.TrendingCounter, error) {
	if s.trending == nil {
		return []*entities.TrendingCounter{}, nil
	}
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.trending.TopConditions(ctx, since, sourceType, limit)
}

func (s *DetectionService) cacheKey(normalized string, sourceType entities.SourceType, indicators *entities.VitalIndicators) string {
	h := sha256.New()
	h.Write([]byte(normalized))
	h.Write([]byte{0})
	h.Write([]byte(sourceType))
	if indicators != nil {
		h.Write([]byte{
			boolByte(indicators.Febrile), boolByte(indicators.Respiratory),
			boolByte(indicators.Cardiovascular), boolByte(indicators.Gastrointestinal),
		})
	}
	return detectionCachePrefix + hex.EncodeToString(h.Sum(nil))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
