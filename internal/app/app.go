package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nsqio/go-nsq"

	"documind/internal/config"
	"documind/internal/extract"
	"documind/internal/progress"
	"documind/internal/retrieval"
	"documind/internal/worker"
)

type App struct {
	Ingest    *worker.IngestConsumer
	Retrieval *retrieval.Service

	cfg      *config.Config
	deps     *Dependencies
	consumer *nsq.Consumer
}

func New(cfg *config.Config, deps *Dependencies) (*App, error) {
	sink := progress.NewPublisherSink(deps.Producer, config.TopicIngestProgress)
	ingest := worker.NewIngestConsumer(extract.NewExtractor(), deps.Embedder, deps.Store, sink, cfg.EmbedBatchSize)

	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(deps.Embedder, deps.Store, deps.Generator, queryLogger)

	nsqCfg := nsq.NewConfig()
	nsqCfg.MaxInFlight = cfg.WorkerConcurrency
	consumer, err := nsq.NewConsumer(config.TopicIngestFile, config.ChannelWorker, nsqCfg)
	if err != nil {
		return nil, fmt.Errorf("nsq consumer error: %w", err)
	}
	consumer.AddConcurrentHandlers(ingest, cfg.WorkerConcurrency)

	return &App{
		Ingest:    ingest,
		Retrieval: retrievalService,
		cfg:       cfg,
		deps:      deps,
		consumer:  consumer,
	}, nil
}

// Run connects the consumer and blocks until ctx is cancelled, then drains
// in-flight messages and closes the clients.
func (a *App) Run(ctx context.Context) error {
	if err := a.consumer.ConnectToNSQLookupd(a.cfg.NSQLookupd); err != nil {
		return fmt.Errorf("failed to connect to NSQLookupd: %w", err)
	}
	slog.Info("ingest worker started", "topic", config.TopicIngestFile, "concurrency", a.cfg.WorkerConcurrency)

	<-ctx.Done()
	slog.Info("shutting down worker...")

	a.consumer.Stop()
	<-a.consumer.StopChan

	a.deps.Producer.Stop()
	if err := a.deps.Embedder.Close(); err != nil {
		slog.Warn("failed to close embedder", "error", err)
	}
	if err := a.deps.Generator.Close(); err != nil {
		slog.Warn("failed to close generator", "error", err)
	}
	if err := a.deps.Store.Close(); err != nil {
		slog.Warn("failed to close vector store", "error", err)
	}
	return nil
}
