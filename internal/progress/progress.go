package progress

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusFinalizing Status = "finalizing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Event describes a job's completion percentage and stage. Events are
// ephemeral notifications, not durable state.
type Event struct {
	UserID   string         `json:"user_id"`
	JobID    string         `json:"job_id"`
	Progress int            `json:"progress"`
	Status   Status         `json:"status"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

// Sink delivers progress events. Delivery is fire-and-forget: a sink must
// never block the pipeline or surface delivery failures as errors.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

type Publisher interface {
	Publish(topic string, body []byte) error
}

// PublisherSink emits events to a queue topic, keyed by user id for routing
// to interested subscribers. Publish failures are logged and dropped.
type PublisherSink struct {
	pub   Publisher
	topic string
}

func NewPublisherSink(pub Publisher, topic string) *PublisherSink {
	return &PublisherSink{pub: pub, topic: topic}
}

func (s *PublisherSink) Emit(ctx context.Context, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal progress event", "error", err)
		return
	}
	if err := s.pub.Publish(s.topic, body); err != nil {
		slog.WarnContext(ctx, "failed to publish progress event", "error", err, "progress", ev.Progress, "status", ev.Status)
	}
}

// Recorder captures events in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Nop discards all events.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}
