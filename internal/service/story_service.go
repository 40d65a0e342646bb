package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/generation"
	"github.com/taskfable/questlog-api/internal/store"
)

// storyContextLimit caps how many prior stories feed the narrative
// context for the next one.
const storyContextLimit = 3

// StoryService provides story persistence and retrieval. It is also
// the collaborator the background story generation job drives.
type StoryService interface {
	// GetTask retrieves a task by ID without visibility masking. Used
	// by the background job, which acts on behalf of the system.
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// BuildStoryContext concatenates the quest log's most recent story
	// texts, oldest first, for narrative continuity. Returns "" when
	// there are none.
	BuildStoryContext(ctx context.Context, questLogID uuid.UUID) (string, error)

	// SaveStory persists a generated draft as the task's story.
	// Returns store.ErrDuplicate when the task already has one.
	SaveStory(ctx context.Context, taskID uuid.UUID, draft *generation.StoryDraft) (*domain.Story, error)

	// GetStoryForTask retrieves the story of a task.
	// Returns store.ErrStoryNotFound when none exists.
	GetStoryForTask(ctx context.Context, taskID uuid.UUID) (*domain.Story, error)

	// ListRecentStories returns the newest stories across all quest
	// logs, at most limit.
	ListRecentStories(ctx context.Context, limit int) ([]*domain.Story, error)
}

// StoryServiceImpl implements the StoryService interface.
type StoryServiceImpl struct {
	storyStore store.StoryStore
	taskStore  store.TaskStore
	db         *sql.DB
	logger     *slog.Logger
}

// NewStoryService creates a new StoryService.
func NewStoryService(
	storyStore store.StoryStore,
	taskStore store.TaskStore,
	db *sql.DB,
	logger *slog.Logger,
) *StoryServiceImpl {
	return &StoryServiceImpl{
		storyStore: storyStore,
		taskStore:  taskStore,
		db:         db,
		logger:     logger.With("component", "story_service"),
	}
}

var _ StoryService = (*StoryServiceImpl)(nil)

// GetTask retrieves a task by ID.
func (s *StoryServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("get task for story", err)
	}
	return task, nil
}

// BuildStoryContext concatenates recent story texts, oldest first.
func (s *StoryServiceImpl) BuildStoryContext(ctx context.Context, questLogID uuid.UUID) (string, error) {
	stories, err := s.storyStore.ListByQuestLog(ctx, questLogID, storyContextLimit)
	if err != nil {
		return "", NewServiceError("build story context", err)
	}
	if len(stories) == 0 {
		return "", nil
	}

	// The store returns newest first; the narrative reads oldest first.
	texts := make([]string, 0, len(stories))
	for i := len(stories) - 1; i >= 0; i-- {
		texts = append(texts, stories[i].Text)
	}
	return strings.Join(texts, "\n\n"), nil
}

// SaveStory persists a generated draft as the task's story.
func (s *StoryServiceImpl) SaveStory(ctx context.Context, taskID uuid.UUID, draft *generation.StoryDraft) (*domain.Story, error) {
	story, err := domain.NewStory(taskID, draft.Text, draft.XP, draft.Currency)
	if err != nil {
		return nil, NewServiceError("save story", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.storyStore.WithTx(tx).Create(ctx, story)
	})
	if err != nil {
		s.logger.Error("failed to save story", "error", err, "task_id", taskID)
		return nil, NewServiceError("save story", err)
	}

	s.logger.Info("story saved",
		"story_id", story.ID,
		"task_id", taskID,
		"xp", story.XP,
		"currency", story.Currency)
	return story, nil
}

// GetStoryForTask retrieves the story of a task.
func (s *StoryServiceImpl) GetStoryForTask(ctx context.Context, taskID uuid.UUID) (*domain.Story, error) {
	story, err := s.storyStore.GetByTask(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("get story", err)
	}
	return story, nil
}

// ListRecentStories returns the newest stories, at most limit.
func (s *StoryServiceImpl) ListRecentStories(ctx context.Context, limit int) ([]*domain.Story, error) {
	stories, err := s.storyStore.ListRecent(ctx, limit)
	if err != nil {
		return nil, NewServiceError("list stories", err)
	}
	return stories, nil
}
