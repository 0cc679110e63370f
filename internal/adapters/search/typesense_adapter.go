package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/repositories"
	tsclient "github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter provides typo-tolerant search over condition mappings.
// It is optional infrastructure: when Typesense is not configured the
// mapping service falls back to the Postgres ILIKE search.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements MappingSearchRepository
var _ repositories.MappingSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the mappings collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index upserts a mapping into the search index
func (a *TypesenseAdapter) Index(ctx context.Context, mapping *entities.Mapping) error {
	document := map[string]interface{}{
		"id":              mapping.ID,
		"code":            mapping.Code,
		"description":     mapping.Description,
		"surface_forms":   mapping.SurfaceForms,
		"base_confidence": mapping.BaseConfidence,
		"source":          string(mapping.Source),
		"active":          mapping.Active,
		"updated_at":      mapping.UpdatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(tsclient.MappingsCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index mapping: %w", err)
	}

	return nil
}

// Delete removes a mapping from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.MappingsCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete mapping from index: %w", err)
	}
	return nil
}

// Search runs a typo-tolerant query against code, description and surface
// forms, returning the matching mappings best-confidence first.
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]*entities.Mapping, error) {
	if limit <= 0 {
		limit = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("code,description,surface_forms"),
		FilterBy: pointer.String("active:=true"),
		SortBy:   pointer.String("_text_match:desc,base_confidence:desc"),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.MappingsCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search mappings: %w", err)
	}

	mappings := []*entities.Mapping{}
	if result.Hits == nil {
		return mappings, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document

		mapping := &entities.Mapping{Active: true}
		if val, ok := doc["id"].(string); ok {
			mapping.ID = val
		}
		if val, ok := doc["code"].(string); ok {
			mapping.Code = val
		}
		if val, ok := doc["description"].(string); ok {
			mapping.Description = val
		}
		if val, ok := doc["base_confidence"].(float64); ok {
			mapping.BaseConfidence = val
		}
		if val, ok := doc["source"].(string); ok {
			mapping.Source = entities.MappingSource(val)
		}
		if forms, ok := doc["surface_forms"].([]interface{}); ok {
			for _, form := range forms {
				if s, ok := form.(string); ok {
					mapping.SurfaceForms = append(mapping.SurfaceForms, s)
				}
			}
		}

		mappings = append(mappings, mapping)
	}

	return mappings, nil
}
