package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyEmbedding marks a per-chunk failure: the model accepted the call
// but returned no vector, typically because the content was rejected.
var ErrEmptyEmbedding = errors.New("empty embedding received")

// ErrWrongDimension means the service returned a vector of a different size
// than the store is configured for. Hitting this on the canary fails the job
// before any chunk is touched.
var ErrWrongDimension = errors.New("embedding dimension mismatch")

// canaryText is the fixed sample used to verify the embedding service is
// reachable and configured before a job touches real content.
const canaryText = "This is a test document to verify the embedding API is working correctly."

type Embedder struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewEmbedder builds a client pinned to the collection dimension; every
// returned vector is validated against it. dimension <= 0 disables the check.
func NewEmbedder(ctx context.Context, apiKey, model string, dimension int, opts ...option.ClientOption) (*Embedder, error) {
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Embedder{client: client, model: model, dimension: dimension}, nil
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	slog.DebugContext(ctx, "embedding content", "model", e.model, "length", len(text))
	em := e.client.EmbeddingModel(e.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, ErrEmptyEmbedding
	}
	if e.dimension > 0 && len(res.Embedding.Values) != e.dimension {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrWrongDimension, len(res.Embedding.Values), e.dimension)
	}
	return res.Embedding.Values, nil
}

// Verify issues the canary embedding call. A failure here means the service
// itself is down or misconfigured, as opposed to one chunk being rejected.
func (e *Embedder) Verify(ctx context.Context) error {
	vec, err := e.Embed(ctx, canaryText)
	if err != nil {
		return fmt.Errorf("embedding canary check failed: %w", err)
	}
	slog.InfoContext(ctx, "embedding canary check passed", "dimension", len(vec))
	return nil
}

func (e *Embedder) Close() error {
	return e.client.Close()
}
