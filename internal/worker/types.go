package worker

import (
	"context"

	"documind/internal/extract"
)

// Chunk is a normalized page chunk together with its embedding, ready to be
// appended to the user's collection.
type Chunk struct {
	Text       string
	Vector     []float32
	Page       int
	Filename   string
	TotalPages int
	Mode       string
}

type Extractor interface {
	ExtractFile(ctx context.Context, path string) ([]extract.Unit, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Verify is the canary check: it fails when the embedding service is
	// unreachable or misconfigured, which is fatal to a job.
	Verify(ctx context.Context) error
}

type CollectionStore interface {
	// ResolveCollection opens or lazily creates the user's collection.
	// Creation is race-safe: two jobs for a brand-new user end up with one
	// consistently configured collection.
	ResolveCollection(ctx context.Context, userID string) error
	Append(ctx context.Context, userID string, chunk Chunk) error
}
