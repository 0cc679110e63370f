package providers

import (
	"context"
)

// EmbeddingProvider produces fixed-length vectors for free text via the
// multilingual embedding sidecar. Implementations must be safe for concurrent
// use and must not block construction on the sidecar being reachable.
type EmbeddingProvider interface {
	// Embed returns one vector per input text, all of the same length
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// ClassPrediction is one label from the fine-tuned classifier head, already
// mapped from output index to ICD-11 code.
type ClassPrediction struct {
	Code        string
	Probability float64
}

// ClassifierProvider runs the optional fine-tuned classification head.
type ClassifierProvider interface {
	// Classify returns predictions sorted by probability descending
	Classify(ctx context.Context, text string) ([]ClassPrediction, error)

	// Ready reports whether the artifact and its index-to-code map are loaded
	Ready() bool
}
