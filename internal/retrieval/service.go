package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultTopK is how many chunks back a query when the caller does not say.
const DefaultTopK = 2

// noDocumentsMessage is returned when the user has no collection yet; an
// empty knowledge base is expected state, not a fault.
const noDocumentsMessage = "I don't have any documents to reference. Please upload some PDF documents first so I can help answer your questions about them."

type SearchResult struct {
	Text     string         `json:"text"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

type Answer struct {
	Message string         `json:"message"`
	Sources []SearchResult `json:"sources"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorSearcher interface {
	Search(ctx context.Context, userID string, vector []float32, limit int) ([]SearchResult, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	embedder  Embedder
	store     VectorSearcher
	generator Generator
	logger    *QueryLogger
}

func NewService(e Embedder, s VectorSearcher, g Generator, l *QueryLogger) *Service {
	return &Service{embedder: e, store: s, generator: g, logger: l}
}

// Retrieve returns the k most relevant chunks from the user's collection.
// A user with no uploads gets an empty slice, not an error.
func (s *Service) Retrieve(ctx context.Context, userID, query string, k int) ([]SearchResult, error) {
	start := time.Now()
	if k <= 0 {
		k = DefaultTopK
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	docs, err := s.store.Search(ctx, userID, vec, k)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			UserID:     userID,
			Query:      query,
			NumResults: len(docs),
			Duration:   time.Since(start),
		})
	}
	return docs, nil
}

// Ask retrieves context for the query and asks the generative model to
// answer from it. No retrieved documents yields a fixed guidance message.
func (s *Service) Ask(ctx context.Context, userID, query string) (*Answer, error) {
	docs, err := s.Retrieve(ctx, userID, query, DefaultTopK)
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return &Answer{Message: noDocumentsMessage, Sources: []SearchResult{}}, nil
	}

	message, err := s.generator.Generate(ctx, buildPrompt(query, docs))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &Answer{Message: message, Sources: docs}, nil
}

func buildPrompt(query string, docs []SearchResult) string {
	var ctxParts []string
	for _, d := range docs {
		ctxParts = append(ctxParts, d.Text)
	}

	return fmt.Sprintf(`You are a helpful AI Assistant who answers the user query based on the available context from PDF File.

Context:
%s

User Query: %s
`, strings.Join(ctxParts, "\n\n"), query)
}
