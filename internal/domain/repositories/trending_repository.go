package repositories

import (
	"context"
	"time"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
)

// TrendingRepository defines persistence for daily detection counters
type TrendingRepository interface {
	// Increment atomically adds 1 to the counter for (date, code, sourceType)
	Increment(ctx context.Context, date time.Time, code string, sourceType entities.SourceType) error

	// TopConditions returns the highest-count codes since the given date,
	// optionally filtered by source type
	TopConditions(ctx context.Context, since time.Time, sourceType entities.SourceType, limit int) ([]*entities.TrendingCounter, error)
}
