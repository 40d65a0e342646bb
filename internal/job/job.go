package job

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a background job.
type JobStatus string

// Possible job status values
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job type constants
const (
	// JobTypeStoryGeneration generates a task's story when it first
	// moves from todo to doing.
	JobTypeStoryGeneration = "story_generation"
)

// Job represents a unit of background work to be processed.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Payload returns the job data as a byte slice
	Payload() []byte

	// Status returns the current job status
	Status() JobStatus

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// JobRecord is a job row loaded from storage. Records recovered after
// a restart are rehydrated into executable Jobs by the runner.
type JobRecord struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       JobStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobStore defines the interface for persisting jobs.
type JobStore interface {
	// SaveJob persists a job.
	SaveJob(ctx context.Context, j Job) error

	// UpdateJobStatus updates the status and error message of a job.
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status JobStatus, errorMsg string) error

	// GetPendingJobs retrieves all jobs with "pending" status.
	GetPendingJobs(ctx context.Context) ([]*JobRecord, error)

	// GetProcessingJobs retrieves jobs with "processing" status. If
	// olderThan is non-zero, only jobs that have been in that state
	// longer than the duration are returned.
	GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]*JobRecord, error)
}
