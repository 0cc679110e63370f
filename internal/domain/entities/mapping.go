package entities

import (
	"time"
)

// MappingSource records where a condition mapping came from
type MappingSource string

const (
	MappingSourceLexicon MappingSource = "lexicon"
	MappingSourceRemote  MappingSource = "remote"
	MappingSourceCurated MappingSource = "curated"
	MappingSourceOther   MappingSource = "other"
)

// Mapping is a persistent condition record keyed by ICD-11 code. The table is
// a superset of the embedded lexicon: remote lookups and site-specific terms
// land here as well. Inactive rows are never returned by detection.
type Mapping struct {
	ID             string        `json:"id" db:"id"`
	Code           string        `json:"code" db:"code"`
	Description    string        `json:"description" db:"description"`
	SurfaceForms   []string      `json:"surface_forms" db:"surface_forms"`
	BaseConfidence float64       `json:"base_confidence" db:"base_confidence"`
	Source         MappingSource `json:"source" db:"source"`
	Active         bool          `json:"active" db:"active"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}
