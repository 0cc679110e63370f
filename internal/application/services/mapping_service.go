package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/lexicon"
	"github.com/kalusugan-health/condition-screening/internal/domain/repositories"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
	apperrors "github.com/kalusugan-health/condition-screening/pkg/errors"
)

// MappingService manages the condition mapping store: seeding it from the
// embedded lexicon, keeping the optional search index in sync, and serving
// lookups.
type MappingService struct {
	repo       repositories.MappingRepository
	searchRepo repositories.MappingSearchRepository
	lexicon    *lexicon.Lexicon
	logger     zerolog.Logger
}

// NewMappingService creates a mapping service. searchRepo may be nil when
// Typesense is not deployed.
func NewMappingService(repo repositories.MappingRepository, searchRepo repositories.MappingSearchRepository, lex *lexicon.Lexicon) *MappingService {
	return &MappingService{
		repo:       repo,
		searchRepo: searchRepo,
		lexicon:    lex,
		logger:     observability.GetLogger().With().Str("component", "mapping_service").Logger(),
	}
}

// EnsureSeeded idempotently loads every lexicon entry into the mapping
// store. Rows already present keep their stored values, so site-level edits
// survive restarts.
func (s *MappingService) EnsureSeeded(ctx context.Context) error {
	seeded := 0
	for _, entry := range s.lexicon.Entries() {
		existing, err := s.repo.GetByCode(ctx, entry.Code)
		if err == nil && existing != nil {
			continue
		}
		if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return err
		}

		mapping := &entities.Mapping{
			Code:           entry.Code,
			Description:    entry.Name,
			SurfaceForms:   entry.SurfaceForms,
			BaseConfidence: entry.BaseConfidence,
			Source:         entities.MappingSourceLexicon,
			Active:         true,
		}
		if err := s.repo.Upsert(ctx, mapping); err != nil {
			return err
		}
		s.indexMapping(ctx, mapping)
		seeded++
	}

	if seeded > 0 {
		s.logger.Info().Int("seeded", seeded).Msg("Mapping store seeded from lexicon")
	}
	return nil
}

// Upsert stores a mapping and mirrors it into the search index.
func (s *MappingService) Upsert(ctx context.Context, mapping *entities.Mapping) error {
	if mapping.Code == "" || !entities.ValidICD11Code(mapping.Code) {
		return apperrors.NewValidationError("mapping code is not a valid ICD-11 code")
	}
	if mapping.Source == "" {
		mapping.Source = entities.MappingSourceCurated
	}

	if err := s.repo.Upsert(ctx, mapping); err != nil {
		return err
	}
	s.indexMapping(ctx, mapping)
	return nil
}

// GetByCode retrieves one mapping.
func (s *MappingService) GetByCode(ctx context.Context, code string) (*entities.Mapping, error) {
	return s.repo.GetByCode(ctx, code)
}

// Search queries mappings, preferring the typo-tolerant index and falling
// back to the database on any index failure.
func (s *MappingService) Search(ctx context.Context, query string, limit int) ([]*entities.Mapping, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*entities.Mapping{}, nil
	}

	if s.searchRepo != nil {
		results, err := s.searchRepo.Search(ctx, query, limit)
		if err == nil {
			return results, nil
		}
		s.logger.Warn().Err(err).Msg("Search index unavailable, falling back to database search")
	}

	return s.repo.Search(ctx, query, limit)
}

// Count returns the number of active mappings.
func (s *MappingService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *MappingService) indexMapping(ctx context.Context, mapping *entities.Mapping) {
	if s.searchRepo == nil {
		return
	}
	if err := s.searchRepo.Index(ctx, mapping); err != nil {
		// eventual consistency: the database row is authoritative
		s.logger.Warn().Err(err).Str("code", mapping.Code).Msg("Failed to index mapping")
	}
}
