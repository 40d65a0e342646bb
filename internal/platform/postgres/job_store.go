package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/job"
	"github.com/taskfable/questlog-api/internal/platform/logger"
	"github.com/taskfable/questlog-api/internal/store"
)

// PostgresJobStore implements the job.JobStore interface using
// PostgreSQL, persisting background jobs so pending work survives a
// restart.
type PostgresJobStore struct {
	db store.DBTX
}

// NewPostgresJobStore creates a new PostgresJobStore.
func NewPostgresJobStore(db store.DBTX) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresJobStore{db: db}
}

var _ job.JobStore = (*PostgresJobStore)(nil)

// SaveJob persists a job to the database.
func (s *PostgresJobStore) SaveJob(ctx context.Context, j job.Job) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO jobs (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query,
		j.ID(),
		j.Type(),
		j.Payload(),
		j.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save job",
			"job_id", j.ID(),
			"job_type", j.Type(),
			"error", err)
		return fmt.Errorf("failed to save job to database: %w", err)
	}

	return nil
}

// UpdateJobStatus updates the status and error message of a job. A
// missing job is treated as a no-op so late status updates from retired
// jobs cannot fail the caller.
func (s *PostgresJobStore) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status job.JobStatus, errorMsg string) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		errorMsg,
		time.Now().UTC(),
		jobID,
	)
	if err != nil {
		log.Error("failed to update job status",
			"job_id", jobID,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update job status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Warn("no job found with ID to update status", "job_id", jobID)
	}

	return nil
}

// GetPendingJobs retrieves all jobs with "pending" status.
func (s *PostgresJobStore) GetPendingJobs(ctx context.Context) ([]*job.JobRecord, error) {
	return s.getJobsByStatus(ctx, job.JobStatusPending, 0)
}

// GetProcessingJobs retrieves "processing" jobs whose last update is
// older than the given duration. The stuck-job monitor uses this to
// find work that died with a previous process.
func (s *PostgresJobStore) GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]*job.JobRecord, error) {
	return s.getJobsByStatus(ctx, job.JobStatusProcessing, olderThan)
}

func (s *PostgresJobStore) getJobsByStatus(ctx context.Context, status job.JobStatus, olderThan time.Duration) ([]*job.JobRecord, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, type, payload, status, error_message, created_at, updated_at
		FROM jobs
		WHERE status = $1
		ORDER BY created_at ASC
	`
	args := []interface{}{status}

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM jobs
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs by status",
			"status", status,
			"error", err)
		return nil, fmt.Errorf("failed to query jobs by status: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "error", err)
		}
	}()

	var records []*job.JobRecord
	for rows.Next() {
		var rec job.JobRecord
		var errorMessage sql.NullString

		if err := rows.Scan(
			&rec.ID,
			&rec.Type,
			&rec.Payload,
			&rec.Status,
			&errorMessage,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		rec.ErrorMessage = errorMessage.String
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return records, nil
}
