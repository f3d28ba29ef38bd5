package progress_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"documind/internal/progress"
)

func TestTracker_MonotoneProgress(t *testing.T) {
	rec := progress.NewRecorder()
	tr := progress.NewTracker(rec, "user-1", "job-1")
	ctx := context.Background()

	tr.Report(ctx, 5, "started", nil)
	tr.Report(ctx, 25, "extracted", nil)
	tr.Report(ctx, 10, "late event", nil) // clamped up to 25
	tr.Finalizing(ctx, 95, "finalizing")
	tr.Complete(ctx, "done", map[string]any{"processed": 2})

	events := rec.Events()
	assert.Len(t, events, 5)

	last := -1
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.Progress, last)
		last = ev.Progress
	}
	assert.Equal(t, progress.StatusCompleted, events[4].Status)
	assert.Equal(t, 100, events[4].Progress)
	assert.Equal(t, 2, events[4].Details["processed"])
}

func TestTracker_NothingAfterTerminal(t *testing.T) {
	rec := progress.NewRecorder()
	tr := progress.NewTracker(rec, "user-1", "job-1")
	ctx := context.Background()

	tr.Report(ctx, 50, "half", nil)
	tr.Fail(ctx, "boom")
	tr.Report(ctx, 60, "ignored", nil)
	tr.Complete(ctx, "ignored", nil)
	tr.Fail(ctx, "ignored")

	events := rec.Events()
	assert.Len(t, events, 2)
	assert.Equal(t, progress.StatusError, events[1].Status)
	assert.Equal(t, 0, events[1].Progress)
}

func TestTracker_IdentifiersOnEveryEvent(t *testing.T) {
	rec := progress.NewRecorder()
	tr := progress.NewTracker(rec, "user-9", "job-9")
	tr.Report(context.Background(), 5, "started", nil)

	events := rec.Events()
	assert.Equal(t, "user-9", events[0].UserID)
	assert.Equal(t, "job-9", events[0].JobID)
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(string, []byte) error {
	p.calls++
	return errors.New("broker down")
}

func TestPublisherSink_SwallowsPublishFailures(t *testing.T) {
	pub := &failingPublisher{}
	sink := progress.NewPublisherSink(pub, "ingest.progress")

	// Must not panic or surface the error; observability never blocks the pipeline.
	sink.Emit(context.Background(), progress.Event{UserID: "u", JobID: "j", Progress: 5, Status: progress.StatusProcessing})
	assert.Equal(t, 1, pub.calls)
}
