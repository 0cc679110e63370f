package repositories

import (
	"context"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
)

// MappingRepository defines persistence for condition mappings
type MappingRepository interface {
	// Upsert inserts or updates a mapping by code
	Upsert(ctx context.Context, mapping *entities.Mapping) error

	// GetByCode retrieves a mapping by ICD-11 code
	GetByCode(ctx context.Context, code string) (*entities.Mapping, error)

	// Search matches query case-insensitively against code, description and
	// surface forms, ordered by base confidence descending
	Search(ctx context.Context, query string, limit int) ([]*entities.Mapping, error)

	// ListActive retrieves every active mapping
	ListActive(ctx context.Context) ([]*entities.Mapping, error)

	// Count returns the number of active mappings
	Count(ctx context.Context) (int, error)
}

// MappingSearchRepository defines the optional typo-tolerant search index
// over condition mappings
type MappingSearchRepository interface {
	// InitSchema ensures the index exists
	InitSchema(ctx context.Context) error

	// Index upserts a mapping into the index
	Index(ctx context.Context, mapping *entities.Mapping) error

	// Delete removes a mapping from the index
	Delete(ctx context.Context, id string) error

	// Search runs a typo-tolerant query over code, description and surface
	// forms
	Search(ctx context.Context, query string, limit int) ([]*entities.Mapping, error)
}
