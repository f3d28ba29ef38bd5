package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nsqio/go-nsq"

	"documind/internal/extract"
	"documind/internal/jobctx"
	"documind/internal/progress"
	"documind/internal/text"
)

const (
	// The embedding loop reports progress linearly across this range,
	// between the collection-ready and finalizing milestones.
	embedPhaseStart = 60
	embedPhaseEnd   = 90

	embedTimeout = 60 * time.Second
)

// Summary aggregates per-chunk outcomes for one job. Skipped chunks degrade
// the job; they never fail it.
type Summary struct {
	Processed int
	Skipped   int
}

// IngestConsumer drives one ingestion job at a time through the pipeline:
// validate file, extract, normalize, batch, embed, append. Concurrency
// exists only across jobs; within a job every step is serial so progress
// stays monotone and the embedding API sees bounded fan-out.
type IngestConsumer struct {
	extractor Extractor
	embedder  Embedder
	store     CollectionStore
	sink      progress.Sink
	batchSize int
}

func NewIngestConsumer(ex Extractor, em Embedder, st CollectionStore, sink progress.Sink, batchSize int) *IngestConsumer {
	if sink == nil {
		sink = progress.Nop{}
	}
	return &IngestConsumer{
		extractor: ex,
		embedder:  em,
		store:     st,
		sink:      sink,
		batchSize: batchSize,
	}
}

// HandleMessage implements nsq.Handler. Returning an error requeues the job
// under the queue's retry policy; malformed payloads are dropped instead,
// since no retry can repair them.
func (h *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var job FileJob
	if err := json.Unmarshal(m.Body, &job); err != nil {
		// Poison Pill: Invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	ctx := jobctx.With(context.Background(), job.JobID, job.UserID)

	if err := job.Validate(); err != nil {
		slog.ErrorContext(ctx, "poison pill: invalid job payload, dropping", "error", err)
		if job.JobID != "" && job.UserID != "" {
			progress.NewTracker(h.sink, job.UserID, job.JobID).Fail(ctx, err.Error())
		}
		return nil
	}

	tracker := progress.NewTracker(h.sink, job.UserID, job.JobID)

	if err := h.process(ctx, &job, tracker); err != nil {
		slog.ErrorContext(ctx, "ingestion job failed", "error", err, "filename", job.Filename)
		tracker.Fail(ctx, fmt.Sprintf("Failed to process %s: %v", job.Filename, err))
		return err // Retry per queue policy
	}
	return nil
}

func (h *IngestConsumer) process(ctx context.Context, job *FileJob, tracker *progress.Tracker) error {
	slog.InfoContext(ctx, "starting job", "filename", job.Filename, "path", job.Path)
	tracker.Report(ctx, 5, "Starting document processing", nil)

	if _, err := os.Stat(job.Path); err != nil {
		return fmt.Errorf("source file unreadable: %w", err)
	}
	tracker.Report(ctx, 10, "File validated", nil)

	units, err := h.extractor.ExtractFile(ctx, job.Path)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	chunks := h.buildChunks(ctx, job, units)
	tracker.Report(ctx, 25, "Text extracted", map[string]any{
		"pages":  len(units),
		"chunks": len(chunks),
	})

	if err := h.embedder.Verify(ctx); err != nil {
		return err
	}
	tracker.Report(ctx, 30, "Embedding service verified", nil)

	if err := h.store.ResolveCollection(ctx, job.UserID); err != nil {
		return fmt.Errorf("resolve collection: %w", err)
	}
	tracker.Report(ctx, 40, "Document collection ready", nil)

	summary := h.embedAndAppend(ctx, job, chunks, tracker)
	slog.InfoContext(ctx, "embedding phase finished", "processed", summary.Processed, "skipped", summary.Skipped)

	tracker.Finalizing(ctx, 95, "Finalizing document")
	tracker.Complete(ctx, fmt.Sprintf("Processed %s", job.Filename), map[string]any{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
	})
	return nil
}

// buildChunks normalizes page units and drops the ones too short to embed.
// Page order, and fragment order within a page, is preserved.
func (h *IngestConsumer) buildChunks(ctx context.Context, job *FileJob, units []extract.Unit) []Chunk {
	var chunks []Chunk
	for _, u := range units {
		cleaned := text.Normalize(u.Text)
		if !text.Viable(cleaned) {
			slog.DebugContext(ctx, "dropping short page unit", "page", u.Page, "length", len(cleaned))
			continue
		}
		chunks = append(chunks, Chunk{
			Text:       cleaned,
			Page:       u.Page,
			Filename:   job.Filename,
			TotalPages: u.Meta.TotalPages,
			Mode:       u.Meta.Mode,
		})
	}
	return chunks
}

func (h *IngestConsumer) embedAndAppend(ctx context.Context, job *FileJob, chunks []Chunk, tracker *progress.Tracker) Summary {
	var sum Summary
	total := len(chunks)
	batches := text.Batch(chunks, h.batchSize)

	done := 0
	for bi, batch := range batches {
		slog.InfoContext(ctx, "processing batch", "batch", bi+1, "batches", len(batches), "size", len(batch))

		for _, chunk := range batch {
			done++

			embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
			vec, err := h.embedder.Embed(embedCtx, chunk.Text)
			cancel()
			if err != nil {
				// Content likely rejected by the model; skip, never abort.
				slog.WarnContext(ctx, "embedding failed, skipping chunk", "error", err, "page", chunk.Page)
				sum.Skipped++
				continue
			}

			chunk.Vector = vec
			if err := h.store.Append(ctx, job.UserID, chunk); err != nil {
				slog.WarnContext(ctx, "append failed, skipping chunk", "error", err, "page", chunk.Page)
				sum.Skipped++
				continue
			}
			sum.Processed++

			pct := embedPhaseStart + (embedPhaseEnd-embedPhaseStart)*done/total
			tracker.Report(ctx, pct, fmt.Sprintf("Embedded %d of %d chunks", done, total), nil)
		}
	}
	return sum
}
