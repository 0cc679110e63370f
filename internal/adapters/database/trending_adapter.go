package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/repositories"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/postgres"
	apperrors "github.com/kalusugan-health/condition-screening/pkg/errors"
)

// TrendingAdapter implements TrendingRepository on Postgres. Counters are
// keyed by (trend_date, code, source_type) with a unique constraint, so
// concurrent increments resolve through ON CONFLICT.
type TrendingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTrendingAdapter creates a new trending adapter
func NewTrendingAdapter(client *postgres.Client) repositories.TrendingRepository {
	return &TrendingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Increment atomically adds 1 to the daily counter for (date, code, sourceType)
func (a *TrendingAdapter) Increment(ctx context.Context, date time.Time, code string, sourceType entities.SourceType) error {
	now := time.Now().UTC()
	day := date.UTC().Truncate(24 * time.Hour)

	query, args, err := a.db.Insert("condition_trending").
		Rows(goqu.Record{
			"id":          uuid.New().String(),
			"trend_date":  day,
			"code":        code,
			"source_type": string(sourceType),
			"count":       1,
			"updated_at":  now,
		}).
		OnConflict(goqu.DoUpdate("trend_date, code, source_type", goqu.Record{
			"count":      goqu.L("condition_trending.count + 1"),
			"updated_at": now,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build trending upsert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to increment trending counter", err)
	}

	return nil
}

// TopConditions returns the highest-count codes since the given date. An
// empty sourceType aggregates across all source types.
func (a *TrendingAdapter) TopConditions(ctx context.Context, since time.Time, sourceType entities.SourceType, limit int) ([]*entities.TrendingCounter, error) {
	if limit <= 0 {
		limit = 10
	}

	ds := a.db.Select(
		goqu.MIN("id").As("id"),
		goqu.MAX("trend_date").As("trend_date"),
		goqu.C("code"),
		goqu.SUM("count").As("count"),
		goqu.MAX("updated_at").As("updated_at"),
	).
		From("condition_trending").
		Where(goqu.C("trend_date").Gte(since.UTC().Truncate(24*time.Hour))).
		GroupBy("code").
		Order(goqu.I("count").Desc(), goqu.I("code").Asc()).
		Limit(uint(limit))

	if sourceType != "" {
		ds = ds.Where(goqu.Ex{"source_type": string(sourceType)})
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build trending query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get trending conditions", err)
	}
	defer rows.Close()

	var counters []*entities.TrendingCounter
	for rows.Next() {
		counter := &entities.TrendingCounter{SourceType: sourceType}
		if err := rows.Scan(&counter.ID, &counter.TrendDate, &counter.Code, &counter.Count, &counter.UpdatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan trending counter", err)
		}
		counters = append(counters, counter)
	}

	return counters, nil
}
