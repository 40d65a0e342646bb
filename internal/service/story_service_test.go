package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/store"
)

func TestBuildStoryContextOrdersOldestFirst(t *testing.T) {
	questLogID := uuid.New()

	// Newest first, as the store returns them.
	stories := []*domain.Story{
		{ID: uuid.New(), Text: "chapter three"},
		{ID: uuid.New(), Text: "chapter two"},
		{ID: uuid.New(), Text: "chapter one"},
	}

	stores := &mockStoryStore{
		listByLog: func(ctx context.Context, id uuid.UUID, limit int) ([]*domain.Story, error) {
			assert.Equal(t, questLogID, id)
			assert.Equal(t, storyContextLimit, limit)
			return stories, nil
		},
	}

	svc := NewStoryService(stores, &mockTaskStore{}, nil, slog.Default())

	text, err := svc.BuildStoryContext(context.Background(), questLogID)
	require.NoError(t, err)
	assert.Equal(t, "chapter one\n\nchapter two\n\nchapter three", text)
}

func TestBuildStoryContextEmpty(t *testing.T) {
	svc := NewStoryService(&mockStoryStore{}, &mockTaskStore{}, nil, slog.Default())

	text, err := svc.BuildStoryContext(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGetStoryForTask(t *testing.T) {
	story := &domain.Story{ID: uuid.New(), TaskID: uuid.New(), Text: "a tale"}

	stores := &mockStoryStore{
		getByTask: func(ctx context.Context, taskID uuid.UUID) (*domain.Story, error) {
			if taskID == story.TaskID {
				return story, nil
			}
			return nil, store.ErrStoryNotFound
		},
	}

	svc := NewStoryService(stores, &mockTaskStore{}, nil, slog.Default())

	got, err := svc.GetStoryForTask(context.Background(), story.TaskID)
	require.NoError(t, err)
	assert.Equal(t, story.ID, got.ID)

	_, err = svc.GetStoryForTask(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrStoryNotFound)
}
