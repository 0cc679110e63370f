package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/repositories"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/postgres"
	apperrors "github.com/kalusugan-health/condition-screening/pkg/errors"
)

// MappingAdapter implements MappingRepository on Postgres
type MappingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewMappingAdapter creates a new mapping adapter
func NewMappingAdapter(client *postgres.Client) repositories.MappingRepository {
	return &MappingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var mappingColumns = []interface{}{
	"id", "code", "description", "surface_forms", "base_confidence",
	"source", "active", "created_at", "updated_at",
}

// Upsert inserts or updates a mapping keyed by its ICD-11 code
func (a *MappingAdapter) Upsert(ctx context.Context, mapping *entities.Mapping) error {
	now := time.Now().UTC()
	if mapping.ID == "" {
		mapping.ID = uuid.New().String()
	}
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = now
	}
	mapping.UpdatedAt = now

	record := goqu.Record{
		"id":              mapping.ID,
		"code":            mapping.Code,
		"description":     mapping.Description,
		"surface_forms":   pq.Array(mapping.SurfaceForms),
		"base_confidence": mapping.BaseConfidence,
		"source":          string(mapping.Source),
		"active":          mapping.Active,
		"created_at":      mapping.CreatedAt,
		"updated_at":      mapping.UpdatedAt,
	}

	query, args, err := a.db.Insert("condition_mappings").
		Rows(record).
		OnConflict(goqu.DoUpdate("code", goqu.Record{
			"description":     mapping.Description,
			"surface_forms":   pq.Array(mapping.SurfaceForms),
			"base_confidence": mapping.BaseConfidence,
			"source":          string(mapping.Source),
			"active":          mapping.Active,
			"updated_at":      mapping.UpdatedAt,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build mapping upsert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to upsert mapping", err)
	}

	return nil
}

// GetByCode retrieves a mapping by ICD-11 code
func (a *MappingAdapter) GetByCode(ctx context.Context, code string) (*entities.Mapping, error) {
	query, args, err := a.db.Select(mappingColumns...).
		From("condition_mappings").
		Where(goqu.Ex{"code": code}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build mapping query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	mapping, err := scanMapping(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("mapping not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get mapping", err)
	}

	return mapping, nil
}

// Search matches the query case-insensitively against code, description and
// surface forms, most confident mappings first.
func (a *MappingAdapter) Search(ctx context.Context, query string, limit int) ([]*entities.Mapping, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + strings.TrimSpace(query) + "%"

	sqlQuery := `
		SELECT id, code, description, surface_forms, base_confidence, source, active, created_at, updated_at
		FROM condition_mappings
		WHERE active = true
		  AND (code ILIKE $1
		   OR description ILIKE $1
		   OR EXISTS (SELECT 1 FROM unnest(surface_forms) AS form WHERE form ILIKE $1))
		ORDER BY base_confidence DESC, code ASC
		LIMIT $2
	`

	rows, err := a.client.DB().QueryContext(ctx, sqlQuery, pattern, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to search mappings", err)
	}
	defer rows.Close()

	return collectMappings(rows)
}

// ListActive retrieves every active mapping
func (a *MappingAdapter) ListActive(ctx context.Context) ([]*entities.Mapping, error) {
	query, args, err := a.db.Select(mappingColumns...).
		From("condition_mappings").
		Where(goqu.Ex{"active": true}).
		Order(goqu.I("code").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build mapping list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list mappings", err)
	}
	defer rows.Close()

	return collectMappings(rows)
}

// Count returns the number of active mappings
func (a *MappingAdapter) Count(ctx context.Context) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("condition_mappings").
		Where(goqu.Ex{"active": true}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build mapping count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count mappings", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMapping(row rowScanner) (*entities.Mapping, error) {
	mapping := &entities.Mapping{}
	var source string

	err := row.Scan(
		&mapping.ID,
		&mapping.Code,
		&mapping.Description,
		pq.Array(&mapping.SurfaceForms),
		&mapping.BaseConfidence,
		&source,
		&mapping.Active,
		&mapping.CreatedAt,
		&mapping.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	mapping.Source = entities.MappingSource(source)
	return mapping, nil
}

func collectMappings(rows *sql.Rows) ([]*entities.Mapping, error) {
	var mappings []*entities.Mapping
	for rows.Next() {
		mapping, err := scanMapping(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan mapping", err)
		}
		mappings = append(mappings, mapping)
	}
	return mappings, nil
}
