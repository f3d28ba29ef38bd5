package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"documind/internal/retrieval"
	"documind/internal/worker"
)

// CollectionName returns the vector collection namespace for one user.
// Collections are never shared or merged across users.
func CollectionName(userID string) string {
	return fmt.Sprintf("user_%s_documents", userID)
}

type Config struct {
	Host      string
	Port      int
	APIKey    string
	UseTLS    bool
	Dimension int
}

// Store is the gateway to per-user Qdrant collections.
type Store struct {
	client    *qdrant.Client
	dimension uint64
}

// NewStore connects to Qdrant and verifies reachability with exponential
// backoff before returning. Exhausting the retries yields
// ErrStoreUnreachable.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	s := &Store{client: client, dimension: uint64(cfg.Dimension)}
	if err := s.healthCheckWithRetry(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}
	return s, nil
}

func (s *Store) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

func (s *Store) Health(ctx context.Context) error {
	res, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if res == nil || res.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// ResolveCollection opens the user's collection, creating it on first write.
// Creation uses create-if-absent semantics: a concurrent creator losing the
// race treats AlreadyExists as success, so two first-time uploads for the
// same user converge on one consistently configured collection.
func (s *Store) ResolveCollection(ctx context.Context, userID string) error {
	name := CollectionName(userID)

	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("resolve collection %s: %w", name, err)
	}
	if exists {
		return nil
	}

	slog.InfoContext(ctx, "creating user collection", "collection", name, "dimension", s.dimension)
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		if isAlreadyExists(err) {
			// Lost the creation race; the winner seeds the placeholder.
			return nil
		}
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	return s.seedPlaceholder(ctx, name)
}

// seedPlaceholder writes the single record that pins the collection's
// dimensionality and similarity metric. It is flagged in the payload and
// excluded from every search.
func (s *Store) seedPlaceholder(ctx context.Context, name string) error {
	vec := make([]float32, s.dimension)
	if len(vec) > 0 {
		vec[0] = 1
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(map[string]any{
				"placeholder": true,
				"text":        "Initial document to create collection",
			}),
		}},
	})
	if err != nil {
		return fmt.Errorf("seed collection %s: %w", name, err)
	}
	return nil
}

// Append adds one chunk with its embedding to the user's collection.
func (s *Store) Append(ctx context.Context, userID string, chunk worker.Chunk) error {
	if uint64(len(chunk.Vector)) != s.dimension {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(chunk.Vector), s.dimension)
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: CollectionName(userID),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectors(chunk.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":        chunk.Text,
				"page":        chunk.Page,
				"filename":    chunk.Filename,
				"total_pages": chunk.TotalPages,
				"mode":        chunk.Mode,
			}),
		}},
	})
	if err != nil {
		return fmt.Errorf("append to %s: %w", CollectionName(userID), err)
	}
	return nil
}

// Search runs nearest-neighbor retrieval against the user's collection.
// A user who has never uploaded anything has no collection; that is an empty
// result, never an error.
func (s *Store) Search(ctx context.Context, userID string, vector []float32, limit int) ([]retrieval.SearchResult, error) {
	name := CollectionName(userID)

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter: &qdrant.Filter{
			MustNot: []*qdrant.Condition{
				qdrant.NewMatchBool("placeholder", true),
			},
		},
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("search %s: %w", name, err)
	}

	results := make([]retrieval.SearchResult, 0, len(points))
	for _, p := range points {
		payload := p.Payload
		results = append(results, retrieval.SearchResult{
			Text:  payload["text"].GetStringValue(),
			Score: p.Score,
			Metadata: map[string]any{
				"page":        int(payload["page"].GetIntegerValue()),
				"filename":    payload["filename"].GetStringValue(),
				"total_pages": int(payload["total_pages"].GetIntegerValue()),
			},
		})
	}
	return results, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// isNotFound prefers the structured gRPC code; the message heuristics are a
// fallback for deployments that surface collection absence as plain errors.
func isNotFound(err error) bool {
	if status.Code(err) == codes.NotFound {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "doesn't exist") || strings.Contains(msg, "does not exist")
}

func isAlreadyExists(err error) bool {
	if status.Code(err) == codes.AlreadyExists {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}
