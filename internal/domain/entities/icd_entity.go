package entities

import (
	"encoding/json"
	"time"
)

// ICDEntity is a cached copy of a remote ICD-11 entity payload. Stale entries
// are still served but trigger opportunistic refresh.
type ICDEntity struct {
	EntityID        string          `json:"entity_id" db:"entity_id"`
	Payload         json.RawMessage `json:"payload" db:"payload"`
	LastRefreshedAt time.Time       `json:"last_refreshed_at" db:"last_refreshed_at"`
	Active          bool            `json:"active" db:"active"`
}

// Stale reports whether the entity is older than the staleness threshold.
func (e *ICDEntity) Stale(threshold time.Duration, now time.Time) bool {
	return now.Sub(e.LastRefreshedAt) > threshold
}

// Title extracts the human-readable title from the raw WHO payload; falls
// back to the entity id when the payload has an unexpected shape.
func (e *ICDEntity) Title() string {
	var payload struct {
		Title struct {
			Value string `json:"@value"`
		} `json:"title"`
	}
	if err := json.Unmarshal(e.Payload, &payload); err == nil && payload.Title.Value != "" {
		return payload.Title.Value
	}
	return e.EntityID
}

// Definition extracts the definition text from the raw WHO payload, if any.
func (e *ICDEntity) Definition() string {
	var payload struct {
		Definition struct {
			Value string `json:"@value"`
		} `json:"definition"`
	}
	if err := json.Unmarshal(e.Payload, &payload); err == nil {
		return payload.Definition.Value
	}
	return ""
}
