package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/repositories"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/postgres"
	apperrors "github.com/kalusugan-health/condition-screening/pkg/errors"
)

// EntityAdapter implements EntityRepository on Postgres. Payloads are stored
// as jsonb so ad-hoc queries against WHO fields stay possible.
type EntityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEntityAdapter creates a new entity adapter
func NewEntityAdapter(client *postgres.Client) repositories.EntityRepository {
	return &EntityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Get retrieves a cached entity by id, stale or not
func (a *EntityAdapter) Get(ctx context.Context, entityID string) (*entities.ICDEntity, error) {
	query, args, err := a.db.Select("entity_id", "payload", "last_refreshed_at", "active").
		From("icd_entities").
		Where(goqu.Ex{"entity_id": entityID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build entity query", err)
	}

	entity := &entities.ICDEntity{}
	var payload []byte
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&entity.EntityID,
		&payload,
		&entity.LastRefreshedAt,
		&entity.Active,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("entity not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get entity", err)
	}

	entity.Payload = json.RawMessage(payload)
	return entity, nil
}

// Put stores a payload, stamping the refresh time and reactivating the row
func (a *EntityAdapter) Put(ctx context.Context, entityID string, payload json.RawMessage) error {
	now := time.Now().UTC()

	query, args, err := a.db.Insert("icd_entities").
		Rows(goqu.Record{
			"entity_id":         entityID,
			"payload":           []byte(payload),
			"last_refreshed_at": now,
			"active":            true,
		}).
		OnConflict(goqu.DoUpdate("entity_id", goqu.Record{
			"payload":           []byte(payload),
			"last_refreshed_at": now,
			"active":            true,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build entity upsert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to store entity", err)
	}

	return nil
}

// ListStale returns active entities refreshed before the cutoff, oldest first
func (a *EntityAdapter) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*entities.ICDEntity, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := a.db.Select("entity_id", "payload", "last_refreshed_at", "active").
		From("icd_entities").
		Where(goqu.Ex{"active": true}, goqu.C("last_refreshed_at").Lt(cutoff)).
		Order(goqu.I("last_refreshed_at").Asc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build stale entity query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list stale entities", err)
	}
	defer rows.Close()

	var result []*entities.ICDEntity
	for rows.Next() {
		entity := &entities.ICDEntity{}
		var payload []byte
		if err := rows.Scan(&entity.EntityID, &payload, &entity.LastRefreshedAt, &entity.Active); err != nil {
			return nil, apperrors.NewInternalError("failed to scan entity", err)
		}
		entity.Payload = json.RawMessage(payload)
		result = append(result, entity)
	}

	return result, nil
}

// DeleteInactive hard-deletes inactive entities last refreshed before the cutoff
func (a *EntityAdapter) DeleteInactive(ctx context.Context, cutoff time.Time) (int, error) {
	query, args, err := a.db.Delete("icd_entities").
		Where(goqu.Ex{"active": false}, goqu.C("last_refreshed_at").Lt(cutoff)).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build entity delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to delete inactive entities", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to read delete result", err)
	}

	return int(affected), nil
}

// Count returns the number of active entities and the most recent refresh time
func (a *EntityAdapter) Count(ctx context.Context) (int, time.Time, error) {
	sqlQuery := `
		SELECT COUNT(*), COALESCE(MAX(last_refreshed_at), 'epoch'::timestamptz)
		FROM icd_entities
		WHERE active = true
	`

	var count int
	var lastRefreshed time.Time
	err := a.client.DB().QueryRowContext(ctx, sqlQuery).Scan(&count, &lastRefreshed)
	if err != nil {
		return 0, time.Time{}, apperrors.NewInternalError("failed to count entities", err)
	}

	return count, lastRefreshed, nil
}
