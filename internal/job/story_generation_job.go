package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/generation"
)

// Common errors
var (
	ErrNilStoryService = errors.New("story service cannot be nil")
	ErrNilGenerator    = errors.New("generator cannot be nil")
	ErrNilLogger       = errors.New("logger cannot be nil")
	ErrEmptyTaskID     = errors.New("task ID cannot be empty")
)

// StoryService defines the service operations the story generation job
// needs: loading the task, building the narrative context from earlier
// stories on the same quest log, and saving the result.
type StoryService interface {
	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// BuildStoryContext returns recent story text from the quest log,
	// oldest first, for narrative continuity. May return "".
	BuildStoryContext(ctx context.Context, questLogID uuid.UUID) (string, error)

	// SaveStory persists the generated draft as the task's story.
	SaveStory(ctx context.Context, taskID uuid.UUID, draft *generation.StoryDraft) (*domain.Story, error)
}

// storyGenerationPayload is the serialized job data.
type storyGenerationPayload struct {
	TaskID uuid.UUID `json:"task_id"`
}

// StoryGenerationJob implements the Job interface for generating a
// task's story after it moves from todo to doing.
type StoryGenerationJob struct {
	id           uuid.UUID
	taskID       uuid.UUID
	storyService StoryService
	generator    generation.StoryGenerator
	logger       *slog.Logger
	status       JobStatus
}

// NewStoryGenerationJob creates a story generation job for taskID.
func NewStoryGenerationJob(
	taskID uuid.UUID,
	storyService StoryService,
	generator generation.StoryGenerator,
	logger *slog.Logger,
) (*StoryGenerationJob, error) {
	if storyService == nil {
		return nil, ErrNilStoryService
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}

	return &StoryGenerationJob{
		id:           uuid.New(),
		taskID:       taskID,
		storyService: storyService,
		generator:    generator,
		logger:       logger.With("job_type", JobTypeStoryGeneration, "task_id", taskID),
		status:       JobStatusPending,
	}, nil
}

// ID returns the job's unique identifier.
func (j *StoryGenerationJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier.
func (j *StoryGenerationJob) Type() string {
	return JobTypeStoryGeneration
}

// Payload returns the job data as a byte slice.
func (j *StoryGenerationJob) Payload() []byte {
	data, err := json.Marshal(storyGenerationPayload{TaskID: j.taskID})
	if err != nil {
		j.logger.Error("failed to marshal job payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current job status.
func (j *StoryGenerationJob) Status() JobStatus {
	return j.status
}

// Execute loads the task, gathers prior story context, calls the
// generator and saves the resulting story. A failure leaves the task
// untouched in its current status; the status transition that triggered
// this job has already committed.
func (j *StoryGenerationJob) Execute(ctx context.Context) error {
	j.status = JobStatusProcessing
	j.logger.Info("starting story generation job")

	if err := ctx.Err(); err != nil {
		j.status = JobStatusFailed
		return fmt.Errorf("job cancelled by context: %w", err)
	}

	task, err := j.storyService.GetTask(ctx, j.taskID)
	if err != nil {
		j.status = JobStatusFailed
		j.logger.Error("failed to retrieve task", "error", err)
		return fmt.Errorf("failed to retrieve task: %w", err)
	}

	priorContext, err := j.storyService.BuildStoryContext(ctx, task.QuestLogID)
	if err != nil {
		// Context is best effort; generate without it.
		j.logger.Warn("failed to build story context, generating without it", "error", err)
		priorContext = ""
	}

	draft, err := j.generator.GenerateStory(ctx, task, priorContext)
	if err != nil {
		j.status = JobStatusFailed
		j.logger.Error("failed to generate story", "error", err)
		return fmt.Errorf("failed to generate story: %w", err)
	}

	story, err := j.storyService.SaveStory(ctx, j.taskID, draft)
	if err != nil {
		j.status = JobStatusFailed
		j.logger.Error("failed to save story", "error", err)
		return fmt.Errorf("failed to save story: %w", err)
	}

	j.status = JobStatusCompleted
	j.logger.Info("story generation job completed",
		"story_id", story.ID,
		"xp", story.XP,
		"currency", story.Currency)
	return nil
}

// StoryGenerationJobFactory creates story generation jobs with their
// dependencies wired in. It also serves as the runner's rehydrator for
// recovered records.
type StoryGenerationJobFactory struct {
	storyService StoryService
	generator    generation.StoryGenerator
	logger       *slog.Logger
}

// NewStoryGenerationJobFactory creates a factory.
func NewStoryGenerationJobFactory(
	storyService StoryService,
	generator generation.StoryGenerator,
	logger *slog.Logger,
) (*StoryGenerationJobFactory, error) {
	if storyService == nil {
		return nil, ErrNilStoryService
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	return &StoryGenerationJobFactory{
		storyService: storyService,
		generator:    generator,
		logger:       logger,
	}, nil
}

// CreateJob creates a story generation job for the given task.
func (f *StoryGenerationJobFactory) CreateJob(taskID uuid.UUID) (*StoryGenerationJob, error) {
	return NewStoryGenerationJob(taskID, f.storyService, f.generator, f.logger)
}

// Rehydrate implements the Rehydrator signature for story generation
// records recovered from the database.
func (f *StoryGenerationJobFactory) Rehydrate(record *JobRecord) (Job, error) {
	if record.Type != JobTypeStoryGeneration {
		return nil, fmt.Errorf("unsupported job type %q", record.Type)
	}

	var payload storyGenerationPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}

	j, err := f.CreateJob(payload.TaskID)
	if err != nil {
		return nil, err
	}
	// Keep the persisted identity so status updates hit the same row.
	j.id = record.ID
	return j, nil
}
