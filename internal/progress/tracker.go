package progress

import "context"

// Tracker binds a sink to one job and enforces the reporting contract:
// percentages never decrease, and nothing is emitted after a terminal
// completed or error event. The orchestrator creates one per job.
type Tracker struct {
	sink     Sink
	userID   string
	jobID    string
	last     int
	terminal bool
}

func NewTracker(sink Sink, userID, jobID string) *Tracker {
	return &Tracker{sink: sink, userID: userID, jobID: jobID}
}

// Report emits a processing-stage event. Percentages lower than the highest
// one already emitted are clamped up to it.
func (t *Tracker) Report(ctx context.Context, pct int, message string, details map[string]any) {
	t.emit(ctx, pct, StatusProcessing, message, details)
}

// Finalizing emits the pre-completion milestone.
func (t *Tracker) Finalizing(ctx context.Context, pct int, message string) {
	t.emit(ctx, pct, StatusFinalizing, message, nil)
}

// Complete emits the terminal success event at 100%.
func (t *Tracker) Complete(ctx context.Context, message string, details map[string]any) {
	t.emit(ctx, 100, StatusCompleted, message, details)
	t.terminal = true
}

// Fail emits the terminal error event. Terminal errors reset the reported
// progress to zero; the monotone guarantee holds only until a terminal
// status appears.
func (t *Tracker) Fail(ctx context.Context, message string) {
	if t.terminal {
		return
	}
	t.sink.Emit(ctx, Event{
		UserID:   t.userID,
		JobID:    t.jobID,
		Progress: 0,
		Status:   StatusError,
		Message:  message,
	})
	t.terminal = true
}

func (t *Tracker) emit(ctx context.Context, pct int, status Status, message string, details map[string]any) {
	if t.terminal {
		return
	}
	if pct < t.last {
		pct = t.last
	}
	if pct > 100 {
		pct = 100
	}
	t.last = pct
	t.sink.Emit(ctx, Event{
		UserID:   t.userID,
		JobID:    t.jobID,
		Progress: pct,
		Status:   status,
		Message:  message,
		Details:  details,
	})
}
