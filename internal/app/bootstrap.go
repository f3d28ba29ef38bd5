package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nsqio/go-nsq"

	"documind/internal/adapter/gemini"
	qstore "documind/internal/adapter/qdrant"
	"documind/internal/config"
)

type Dependencies struct {
	Embedder  *gemini.Embedder
	Generator *gemini.Generator
	Store     *qstore.Store
	Producer  *nsq.Producer
}

func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel, cfg.EmbedDimension)
	if err != nil {
		return nil, fmt.Errorf("gemini embedder error: %w", err)
	}

	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.AnswerModel)
	if err != nil {
		return nil, fmt.Errorf("gemini generator error: %w", err)
	}

	// NewStore health-checks with its own backoff before returning.
	store, err := qstore.NewStore(ctx, qstore.Config{
		Host:      cfg.QdrantHost,
		Port:      cfg.QdrantPort,
		APIKey:    cfg.QdrantAPIKey,
		UseTLS:    cfg.QdrantUseTLS,
		Dimension: cfg.EmbedDimension,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant store error: %w", err)
	}

	nsqCfg := nsq.NewConfig()
	producer, err := nsq.NewProducer(cfg.NSQDHost, nsqCfg)
	if err != nil {
		return nil, fmt.Errorf("nsq producer error: %w", err)
	}

	// Producer creation is lazy; ping until nsqd is actually up.
	retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	if err := withRetry(cfg.BootstrapRetryAttempts, retryDelay, producer.Ping); err != nil {
		return nil, fmt.Errorf("nsq ping error: %w", err)
	}

	createTopics(cfg.NSQDHTTP)

	return &Dependencies{
		Embedder:  embedder,
		Generator: generator,
		Store:     store,
		Producer:  producer,
	}, nil
}

// withRetry runs op up to attempts times, sleeping delay between failures.
func withRetry(attempts int, delay time.Duration, op func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		slog.Warn("bootstrap step failed, retrying...", "attempt", i+1, "error", err)
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}

// NSQ creates topics lazily on publish, but consumers querying lookupd fail
// 404 until then. Pre-create them via the nsqd HTTP API.
func createTopics(nsqdHTTP string) {
	go func() {
		time.Sleep(2 * time.Second)
		for _, topic := range []string{config.TopicIngestFile, config.TopicIngestProgress} {
			if err := createTopic(nsqdHTTP, topic); err != nil {
				slog.Warn("failed to create NSQ topic", "topic", topic, "error", err)
			}
		}
	}()
}

func createTopic(nsqdHTTP, topic string) error {
	url := fmt.Sprintf("http://%s/topic/create?topic=%s", nsqdHTTP, topic)
	resp, err := http.Post(url, "application/json", nil) // #nosec G107 -- URL is built from internal NSQ config, not user input
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nsqd returned status %d", resp.StatusCode)
	}
	return nil
}
