package providers

import (
	"context"
	"encoding/json"
)

// TerminologyProvider fetches authoritative entity payloads from the remote
// ICD-11 service. Implementations own authentication and request pacing;
// callers own the Gate discipline.
type TerminologyProvider interface {
	// FetchEntity returns the raw entity payload, or an error on any
	// non-success outcome
	FetchEntity(ctx context.Context, entityID string) (json.RawMessage, error)

	// HasCredentials reports whether the provider is configured for use
	HasCredentials() bool
}

// EvidenceProvider retrieves evidence-based intervention guidelines for an
// ICD-11 code from an external advisory source. Results only refine wording;
// the built-in table remains the source of truth.
type EvidenceProvider interface {
	// Interventions returns guideline texts for a code, possibly empty
	Interventions(ctx context.Context, code string) ([]string, error)
}
