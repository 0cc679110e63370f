package entities

import (
	"time"
)

// TrendingCounter is a daily detection counter per (date, code, source type),
// consumed by the downstream analytics layer.
type TrendingCounter struct {
	ID         string     `json:"id" db:"id"`
	TrendDate  time.Time  `json:"trend_date" db:"trend_date"`
	Code       string     `json:"code" db:"code"`
	SourceType SourceType `json:"source_type" db:"source_type"`
	Count      int        `json:"count" db:"count"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
