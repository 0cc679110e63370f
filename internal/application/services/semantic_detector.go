package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/lexicon"
	"github.com/kalusugan-health/condition-screening/internal/domain/providers"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
)

const (
	semanticSimilarityFloor = 0.3
	semanticTopK            = 3
	semanticConfidenceScale = 1.2
)

// SemanticDetector ranks lexicon entries by cosine similarity between the
// input text and per-entry reference vectors produced by the multilingual
// embedding sidecar. It is optional: without a provider, or when the sidecar
// is unreachable, it yields zero detections and the pipeline continues on the
// other detectors.
type SemanticDetector struct {
	embedder providers.EmbeddingProvider
	lexicon  *lexicon.Lexicon
	logger   zerolog.Logger

	// Reference vectors are built lazily on first use so startup never
	// blocks on the sidecar. Concurrent first calls are serialized by the
	// Once; a failed build is logged a single time and leaves the detector
	// permanently inert.
	refOnce    sync.Once
	refVectors [][]float64
	refEntries []lexicon.Entry
	refErr     error
}

// NewSemanticDetector creates a semantic detector. embedder may be nil to
// disable semantic detection entirely.
func NewSemanticDetector(embedder providers.EmbeddingProvider, lex *lexicon.Lexicon) *SemanticDetector {
	return &SemanticDetector{
		embedder: embedder,
		lexicon:  lex,
		logger:   observability.GetLogger().With().Str("component", "semantic_detector").Logger(),
	}
}

// Enabled reports whether an embedding provider is configured.
func (d *SemanticDetector) Enabled() bool {
	return d != nil && d.embedder != nil
}

// Detect returns up to three candidates whose reference vectors are
// sufficiently close to the input text.
func (d *SemanticDetector) Detect(ctx context.Context, normalizedText string) []entities.Detection {
	if !d.Enabled() || normalizedText == "" {
		return nil
	}

	if err := d.ensureReferenceVectors(ctx); err != nil {
		return nil
	}

	inputVectors, err := d.embedder.Embed(ctx, []string{normalizedText})
	if err != nil || len(inputVectors) != 1 {
		d.logger.Debug().Err(err).Msg("Embedding input text failed, skipping semantic detection")
		return nil
	}
	input := inputVectors[0]

	type scored struct {
		entry      lexicon.Entry
		similarity float64
	}
	var candidates []scored
	for i, ref := range d.refVectors {
		sim := cosineSimilarity(input, ref)
		if sim >= semanticSimilarityFloor {
			candidates = append(candidates, scored{entry: d.refEntries[i], similarity: sim})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].similarity != candidates[j].similarity {
			return candidates[i].similarity > candidates[j].similarity
		}
		return candidates[i].entry.Code < candidates[j].entry.Code
	})
	if len(candidates) > semanticTopK {
		candidates = candidates[:semanticTopK]
	}

	detections := make([]entities.Detection, 0, len(candidates))
	for _, c := range candidates {
		detections = append(detections, entities.Detection{
			Code:       c.entry.Code,
			Name:       c.entry.Name,
			Confidence: entities.ClampConfidence(c.similarity * semanticConfidenceScale),
			Source:     entities.SourceSemantic,
			Similarity: c.similarity,
		})
	}
	return detections
}

// ensureReferenceVectors embeds one reference text per lexicon entry,
// exactly once for the detector's lifetime.
func (d *SemanticDetector) ensureReferenceVectors(ctx context.Context) error {
	d.refOnce.Do(func() {
		entries := d.lexicon.Entries()
		texts := make([]string, len(entries))
		for i, e := range entries {
			texts[i] = e.Name + " " + strings.Join(e.SurfaceForms, " ")
		}

		vectors, err := d.embedder.Embed(ctx, texts)
		if err != nil {
			d.refErr = err
			d.logger.Warn().Err(err).Msg("Embedding sidecar unavailable, semantic detection disabled")
			return
		}
		if len(vectors) != len(entries) {
			d.refErr = errSemanticReferenceMismatch
			d.logger.Warn().Msg("Embedding sidecar returned a partial reference set, semantic detection disabled")
			return
		}

		d.refVectors = vectors
		d.refEntries = entries
		d.logger.Info().Int("entries", len(entries)).Msg("Semantic reference vectors ready")
	})
	return d.refErr
}

var errSemanticReferenceMismatch = errors.New("semantic: reference vector count does not match lexicon size")

// cosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either is degenerate.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
