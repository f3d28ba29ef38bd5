package worker

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidJob = errors.New("invalid job payload")

// FileJob is the queue payload for one PDF ingestion job. It is validated at
// the queue boundary so malformed messages never reach the pipeline.
type FileJob struct {
	JobID      string    `json:"job_id"`
	UserID     string    `json:"user_id"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	EnqueuedAt time.Time `json:"enqueued_at,omitempty"`
}

func (j *FileJob) Validate() error {
	if j.JobID == "" {
		return fmt.Errorf("%w: job_id is required", ErrInvalidJob)
	}
	if j.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidJob)
	}
	if j.Path == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidJob)
	}
	if j.Filename == "" {
		return fmt.Errorf("%w: filename is required", ErrInvalidJob)
	}
	return nil
}
