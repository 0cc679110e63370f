package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
)

// EntityRepository defines persistence for cached remote ICD-11 entities
type EntityRepository interface {
	// Get retrieves an entity by id, stale or not
	Get(ctx context.Context, entityID string) (*entities.ICDEntity, error)

	// Put stores a payload, stamping last_refreshed_at = now and active = true
	Put(ctx context.Context, entityID string, payload json.RawMessage) error

	// ListStale returns active entities refreshed before the cutoff, up to limit
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*entities.ICDEntity, error)

	// DeleteInactive hard-deletes inactive entities last refreshed before the
	// cutoff, returning the number removed
	DeleteInactive(ctx context.Context, cutoff time.Time) (int, error)

	// Count returns the number of active entities, and the most recent
	// last_refreshed_at across them
	Count(ctx context.Context) (int, time.Time, error)
}
