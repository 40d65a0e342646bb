package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RunnerConfig holds configuration for the job runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int

	// StuckJobAge defines how long a job can sit in processing state
	// before it's considered stuck and reset
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to check for stuck jobs.
	// If zero, defaults to 5 minutes.
	StuckJobCheckInterval time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		StuckJobAge:           30 * time.Minute,
		StuckJobCheckInterval: 5 * time.Minute,
	}
}

// Rehydrator turns a persisted job record back into an executable Job.
// Used during crash recovery when the in-memory queue is empty but the
// database still holds unfinished work.
type Rehydrator func(record *JobRecord) (Job, error)

// Runner manages background job processing: a bounded in-memory queue,
// a worker pool, recovery of persisted jobs on startup, and a monitor
// that resets jobs stuck in processing.
type Runner struct {
	store      JobStore
	rehydrate  Rehydrator
	jobChan    chan Job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
	errHandler func(j Job, err error)
}

// NewRunner creates a Runner. rehydrate may be nil, in which case
// recovered records that need rehydration are marked failed.
func NewRunner(store JobStore, rehydrate Rehydrator, config RunnerConfig, logger *slog.Logger) *Runner {
	if config.StuckJobCheckInterval == 0 {
		config.StuckJobCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:      store,
		rehydrate:  rehydrate,
		jobChan:    make(chan Job, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With("component", "job_runner"),
		errHandler: func(j Job, err error) {
			logger.Error("job execution failed",
				"job_id", j.ID(),
				"job_type", j.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler sets a custom handler invoked when a job fails.
func (r *Runner) SetErrorHandler(handler func(j Job, err error)) {
	r.errHandler = handler
}

// Submit persists the job and adds it to the queue. Returns an error
// when the queue is full; the job stays pending in the database and
// will be picked up by recovery.
func (r *Runner) Submit(ctx context.Context, j Job) error {
	if err := r.store.SaveJob(ctx, j); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	select {
	case r.jobChan <- j:
		return nil
	default:
		return fmt.Errorf("job queue is full, try again later")
	}
}

// Start recovers unfinished jobs and launches the worker pool and the
// stuck-job monitor.
func (r *Runner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckJobMonitor()

	return nil
}

// Stop gracefully shuts down the runner, waiting for in-flight jobs.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.jobChan)
}

// Recover loads unfinished jobs from the database and requeues them.
// Jobs found in processing state were interrupted by a crash and are
// reset to pending first.
func (r *Runner) Recover() error {
	ctx := context.Background()

	pending, err := r.store.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}

	processing, err := r.store.GetProcessingJobs(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, record := range pending {
		r.requeueRecord(ctx, record)
	}

	for _, record := range processing {
		if err := r.store.UpdateJobStatus(ctx, record.ID, JobStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing job status",
				"job_id", record.ID,
				"job_type", record.Type,
				"error", err)
			continue
		}
		r.requeueRecord(ctx, record)
	}

	return nil
}

// requeueRecord rehydrates a persisted record and puts it back on the
// queue. Records that cannot be rehydrated are marked failed so they
// are not retried forever.
func (r *Runner) requeueRecord(ctx context.Context, record *JobRecord) {
	if r.rehydrate == nil {
		r.logger.Error("no rehydrator configured, marking recovered job failed",
			"job_id", record.ID,
			"job_type", record.Type)
		_ = r.store.UpdateJobStatus(ctx, record.ID, JobStatusFailed, "no rehydrator configured")
		return
	}

	j, err := r.rehydrate(record)
	if err != nil {
		r.logger.Error("failed to rehydrate recovered job",
			"job_id", record.ID,
			"job_type", record.Type,
			"error", err)
		_ = r.store.UpdateJobStatus(ctx, record.ID, JobStatusFailed, fmt.Sprintf("rehydration failed: %v", err))
		return
	}

	select {
	case r.jobChan <- j:
	default:
		r.logger.Error("failed to requeue recovered job, queue is full",
			"job_id", record.ID,
			"job_type", record.Type)
	}
}

// worker processes jobs from the queue.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case j, ok := <-r.jobChan:
			if !ok {
				r.logger.Debug("job channel closed, stopping worker", "worker_id", id)
				return
			}
			r.processJob(j, id)
		}
	}
}

// processJob handles execution of a single job.
func (r *Runner) processJob(j Job, workerID int) {
	ctx := context.Background()
	log := r.logger.With(
		"job_id", j.ID(),
		"job_type", j.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateJobStatus(ctx, j.ID(), JobStatusProcessing, ""); err != nil {
		log.Error("failed to update job status to processing", "error", err)
		return
	}

	log.Info("processing job")

	if err := j.Execute(ctx); err != nil {
		log.Error("job execution failed", "error", err)
		if updateErr := r.store.UpdateJobStatus(ctx, j.ID(), JobStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update job status to failed", "error", updateErr)
		}
		r.errHandler(j, err)
		return
	}

	log.Info("job completed successfully")
	if updateErr := r.store.UpdateJobStatus(ctx, j.ID(), JobStatusCompleted, ""); updateErr != nil {
		log.Error("failed to update job status to completed", "error", updateErr)
	}
}

// stuckJobMonitor periodically resets jobs that have been processing
// for longer than the configured age.
func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuck, err := r.store.GetProcessingJobs(ctx, r.config.StuckJobAge)
			if err != nil {
				r.logger.Error("failed to check for stuck jobs", "error", err)
				continue
			}
			if len(stuck) == 0 {
				continue
			}

			r.logger.Info("found stuck jobs", "count", len(stuck))
			for _, record := range stuck {
				if err := r.store.UpdateJobStatus(ctx, record.ID, JobStatusPending,
					"Reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck job status",
						"job_id", record.ID,
						"job_type", record.Type,
						"error", err)
					continue
				}
				r.requeueRecord(ctx, record)
			}
		}
	}
}
