package job

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/generation"
)

type mockStoryService struct {
	getTask           func(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
	buildStoryContext func(ctx context.Context, questLogID uuid.UUID) (string, error)
	saveStory         func(ctx context.Context, taskID uuid.UUID, draft *generation.StoryDraft) (*domain.Story, error)
}

func (m *mockStoryService) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	return m.getTask(ctx, taskID)
}

func (m *mockStoryService) BuildStoryContext(ctx context.Context, questLogID uuid.UUID) (string, error) {
	if m.buildStoryContext == nil {
		return "", nil
	}
	return m.buildStoryContext(ctx, questLogID)
}

func (m *mockStoryService) SaveStory(ctx context.Context, taskID uuid.UUID, draft *generation.StoryDraft) (*domain.Story, error) {
	return m.saveStory(ctx, taskID, draft)
}

type mockGenerator struct {
	generate func(ctx context.Context, task *domain.Task, priorContext string) (*generation.StoryDraft, error)
}

func (m *mockGenerator) GenerateStory(ctx context.Context, task *domain.Task, priorContext string) (*generation.StoryDraft, error) {
	return m.generate(ctx, task, priorContext)
}

func TestNewStoryGenerationJobValidation(t *testing.T) {
	svc := &mockStoryService{}
	gen := &mockGenerator{}
	log := slog.Default()

	_, err := NewStoryGenerationJob(uuid.New(), nil, gen, log)
	assert.ErrorIs(t, err, ErrNilStoryService)

	_, err = NewStoryGenerationJob(uuid.New(), svc, nil, log)
	assert.ErrorIs(t, err, ErrNilGenerator)

	_, err = NewStoryGenerationJob(uuid.New(), svc, gen, nil)
	assert.ErrorIs(t, err, ErrNilLogger)

	_, err = NewStoryGenerationJob(uuid.Nil, svc, gen, log)
	assert.ErrorIs(t, err, ErrEmptyTaskID)

	j, err := NewStoryGenerationJob(uuid.New(), svc, gen, log)
	require.NoError(t, err)
	assert.Equal(t, JobTypeStoryGeneration, j.Type())
	assert.Equal(t, JobStatusPending, j.Status())
}

func TestStoryGenerationJobExecute(t *testing.T) {
	taskID := uuid.New()
	questLogID := uuid.New()
	task := &domain.Task{ID: taskID, QuestLogID: questLogID, Title: "slay the dragon", Status: domain.TaskStatusDoing}

	var savedDraft *generation.StoryDraft
	var seenContext string

	svc := &mockStoryService{
		getTask: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
			return task, nil
		},
		buildStoryContext: func(ctx context.Context, id uuid.UUID) (string, error) {
			assert.Equal(t, questLogID, id)
			return "earlier chapters", nil
		},
		saveStory: func(ctx context.Context, id uuid.UUID, draft *generation.StoryDraft) (*domain.Story, error) {
			savedDraft = draft
			return &domain.Story{ID: uuid.New(), TaskID: id, Text: draft.Text, XP: draft.XP, Currency: draft.Currency}, nil
		},
	}
	gen := &mockGenerator{
		generate: func(ctx context.Context, task *domain.Task, priorContext string) (*generation.StoryDraft, error) {
			seenContext = priorContext
			return &generation.StoryDraft{Text: "a mighty tale", XP: 12, Currency: 6}, nil
		},
	}

	j, err := NewStoryGenerationJob(taskID, svc, gen, slog.Default())
	require.NoError(t, err)

	require.NoError(t, j.Execute(context.Background()))
	assert.Equal(t, JobStatusCompleted, j.Status())
	assert.Equal(t, "earlier chapters", seenContext)
	require.NotNil(t, savedDraft)
	assert.Equal(t, "a mighty tale", savedDraft.Text)
}

func TestStoryGenerationJobExecuteContextFailureIsBestEffort(t *testing.T) {
	taskID := uuid.New()
	task := &domain.Task{ID: taskID, QuestLogID: uuid.New(), Title: "chore", Status: domain.TaskStatusDoing}

	var seenContext string
	svc := &mockStoryService{
		getTask: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
			return task, nil
		},
		buildStoryContext: func(ctx context.Context, id uuid.UUID) (string, error) {
			return "", errors.New("stories unavailable")
		},
		saveStory: func(ctx context.Context, id uuid.UUID, draft *generation.StoryDraft) (*domain.Story, error) {
			return &domain.Story{ID: uuid.New(), TaskID: id}, nil
		},
	}
	gen := &mockGenerator{
		generate: func(ctx context.Context, task *domain.Task, priorContext string) (*generation.StoryDraft, error) {
			seenContext = priorContext
			return &generation.StoryDraft{Text: "a tale without history"}, nil
		},
	}

	j, err := NewStoryGenerationJob(taskID, svc, gen, slog.Default())
	require.NoError(t, err)

	require.NoError(t, j.Execute(context.Background()))
	assert.Empty(t, seenContext)
	assert.Equal(t, JobStatusCompleted, j.Status())
}

func TestStoryGenerationJobExecuteGeneratorFailure(t *testing.T) {
	taskID := uuid.New()
	task := &domain.Task{ID: taskID, QuestLogID: uuid.New(), Title: "chore", Status: domain.TaskStatusDoing}

	svc := &mockStoryService{
		getTask: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
			return task, nil
		},
		saveStory: func(ctx context.Context, id uuid.UUID, draft *generation.StoryDraft) (*domain.Story, error) {
			t.Fatal("SaveStory should not be called after a generation failure")
			return nil, nil
		},
	}
	failure := errors.New("model unavailable")
	gen := &mockGenerator{
		generate: func(ctx context.Context, task *domain.Task, priorContext string) (*generation.StoryDraft, error) {
			return nil, failure
		},
	}

	j, err := NewStoryGenerationJob(taskID, svc, gen, slog.Default())
	require.NoError(t, err)

	err = j.Execute(context.Background())
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, JobStatusFailed, j.Status())
}

func TestStoryGenerationJobExecuteCancelledContext(t *testing.T) {
	svc := &mockStoryService{
		getTask: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
			t.Fatal("GetTask should not be called with a cancelled context")
			return nil, nil
		},
	}
	gen := &mockGenerator{}

	j, err := NewStoryGenerationJob(uuid.New(), svc, gen, slog.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = j.Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, JobStatusFailed, j.Status())
}

func TestFactoryRehydratePreservesIdentity(t *testing.T) {
	factory, err := NewStoryGenerationJobFactory(&mockStoryService{}, &mockGenerator{}, slog.Default())
	require.NoError(t, err)

	taskID := uuid.New()
	payload, err := json.Marshal(map[string]any{"task_id": taskID})
	require.NoError(t, err)

	record := &JobRecord{
		ID:      uuid.New(),
		Type:    JobTypeStoryGeneration,
		Payload: payload,
		Status:  JobStatusPending,
	}

	j, err := factory.Rehydrate(record)
	require.NoError(t, err)
	assert.Equal(t, record.ID, j.ID())
	assert.Equal(t, JobTypeStoryGeneration, j.Type())
}

func TestFactoryRehydrateRejectsUnknownType(t *testing.T) {
	factory, err := NewStoryGenerationJobFactory(&mockStoryService{}, &mockGenerator{}, slog.Default())
	require.NoError(t, err)

	_, err = factory.Rehydrate(&JobRecord{ID: uuid.New(), Type: "unknown"})
	assert.Error(t, err)
}
