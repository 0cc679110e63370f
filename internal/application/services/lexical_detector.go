package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/lexicon"
	"github.com/kalusugan-health/condition-screening/internal/domain/repositories"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
	"github.com/kalusugan-health/condition-screening/pkg/textnorm"
)

const (
	surfaceFormFactor = 0.9
	bareWordFactor    = 0.8
)

// LexicalDetector matches curated surface forms against normalized input
// text. It also consults the mapping store so terms learned after deployment
// (remote or site-curated rows) are detected the same way as the embedded
// lexicon.
type LexicalDetector struct {
	lexicon     *lexicon.Lexicon
	mappingRepo repositories.MappingRepository
	logger      zerolog.Logger
}

// NewLexicalDetector creates a lexical detector. mappingRepo may be nil when
// running without a database.
func NewLexicalDetector(lex *lexicon.Lexicon, mappingRepo repositories.MappingRepository) *LexicalDetector {
	return &LexicalDetector{
		lexicon:     lex,
		mappingRepo: mappingRepo,
		logger:      observability.GetLogger().With().Str("component", "lexical_detector").Logger(),
	}
}

// Detect emits one candidate per condition whose key, surface form, or bare
// key word occurs in the normalized text. Key matches score the entry's base
// confidence; surface-form matches score base x 0.9; bare-word key matches
// score base x 0.8.
func (d *LexicalDetector) Detect(ctx context.Context, normalizedText string) []entities.Detection {
	if normalizedText == "" {
		return nil
	}

	var detections []entities.Detection
	matched := make(map[string]bool)
	tokens := tokenSet(normalizedText)

	for _, entry := range d.lexicon.Entries() {
		if det, ok := matchEntry(normalizedText, tokens, entry.Key, entry.SurfaceForms, entry.Code, entry.Name, entry.BaseConfidence); ok {
			detections = append(detections, det)
			matched[entry.Code] = true
		}
	}

	// Rows in the mapping store extend the lexicon with terms learned after
	// deployment. A store outage degrades to lexicon-only detection.
	if d.mappingRepo != nil {
		mappings, err := d.mappingRepo.ListActive(ctx)
		if err != nil {
			d.logger.Warn().Err(err).Msg("Mapping store unavailable, using embedded lexicon only")
		}
		for _, m := range mappings {
			if m.Source == entities.MappingSourceLexicon || matched[m.Code] {
				continue
			}
			key := ""
			if len(m.SurfaceForms) > 0 {
				key = textnorm.Normalize(m.SurfaceForms[0])
			}
			if det, ok := matchEntry(normalizedText, tokens, key, normalizeForms(m.SurfaceForms), m.Code, m.Description, m.BaseConfidence); ok {
				detections = append(detections, det)
				matched[m.Code] = true
			}
		}
	}

	return detections
}

func matchEntry(text string, tokens map[string]bool, key string, forms []string, code, name string, base float64) (entities.Detection, bool) {
	detection := entities.Detection{
		Code:   code,
		Name:   name,
		Source: entities.SourceLexical,
	}

	if key != "" && textnorm.ContainsPhrase(text, key) {
		detection.Confidence = entities.ClampConfidence(base)
		detection.MatchedTerms = []string{key}
		return detection, true
	}

	for _, form := range forms {
		if form == key || form == "" {
			continue
		}
		if textnorm.ContainsPhrase(text, form) {
			detection.Confidence = entities.ClampConfidence(base * surfaceFormFactor)
			detection.MatchedTerms = []string{form}
			return detection, true
		}
	}

	if key != "" && tokens[key] {
		detection.Confidence = entities.ClampConfidence(base * bareWordFactor)
		detection.MatchedTerms = []string{key}
		return detection, true
	}

	return entities.Detection{}, false
}

func tokenSet(normalizedText string) map[string]bool {
	tokens := textnorm.Tokens(normalizedText)
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}

func normalizeForms(forms []string) []string {
	out := make([]string, 0, len(forms))
	for _, f := range forms {
		if n := textnorm.Normalize(f); n != "" {
			out = append(out, n)
		}
	}
	return out
}
