package jobs

import (
	"context"
	"errors"
	"time"
)

// JobType identifies the work a job performs.
type JobType string

const (
	// JobTypeExportSnapshot archives a user's analytics snapshot.
	JobTypeExportSnapshot JobType = "export_snapshot"
	// JobTypeSyncGoals pushes a user's goal forecasts to Notion.
	JobTypeSyncGoals JobType = "sync_goals"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	return t == JobTypeExportSnapshot || t == JobTypeSyncGoals
}

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is waiting for another attempt.
	JobStatusRetrying JobStatus = "retrying"
)

// DefaultMaxRetries applies when a job is published without MaxRetries.
const DefaultMaxRetries = 3

var (
	// ErrJobNotFound is returned by a JobStore for unknown job ids.
	ErrJobNotFound = errors.New("job not found")
	// ErrQueueClosed is returned when publishing to a stopped queue.
	ErrQueueClosed = errors.New("queue is closed")
)

// UserJob is a unit of background work scoped to one user.
type UserJob struct {
	JobID  string    `json:"job_id"`
	Type   JobType   `json:"type"`
	UserID string    `json:"user_id"`
	Status JobStatus `json:"status"`

	// Trigger records what enqueued the job, e.g. "api" or "schedule".
	Trigger string `json:"trigger,omitempty"`

	// Result is a short outcome description, such as the archived report URI.
	Result string `json:"result,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Error      string `json:"error,omitempty"`
	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`
}

// Publisher enqueues jobs.
type Publisher interface {
	Publish(ctx context.Context, job *UserJob) error
	Close() error
}

// Consumer runs a handler for every enqueued job.
type Consumer interface {
	// Start launches the workers and returns immediately.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error marks the attempt failed and
// may trigger a retry. The handler may set job.Result.
type JobHandler func(ctx context.Context, job *UserJob) error

// JobStore keeps job state for status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *UserJob) error

	// GetJob returns ErrJobNotFound for unknown ids.
	GetJob(ctx context.Context, jobID string) (*UserJob, error)

	// ListJobs returns matching jobs, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*UserJob, error)

	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs. Zero values match everything.
type JobFilter struct {
	UserID string
	Type   JobType
	Status JobStatus
	Limit  int
	Offset int
}
