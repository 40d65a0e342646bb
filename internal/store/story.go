package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
)

// StoryStore defines the interface for story persistence. Each task has
// at most one story.
type StoryStore interface {
	// Create saves a new story.
	// Returns ErrDuplicate if the task already has one.
	Create(ctx context.Context, story *domain.Story) error

	// GetByTask retrieves the story for a task.
	// Returns ErrStoryNotFound if none exists.
	GetByTask(ctx context.Context, taskID uuid.UUID) (*domain.Story, error)

	// ListRecent returns the newest stories first, at most limit.
	ListRecent(ctx context.Context, limit int) ([]*domain.Story, error)

	// ListByQuestLog returns the stories of a quest log's tasks, newest
	// first, at most limit. Used to build narrative context for the
	// next generated story.
	ListByQuestLog(ctx context.Context, questLogID uuid.UUID, limit int) ([]*domain.Story, error)

	// WithTx returns a StoryStore bound to the given transaction.
	WithTx(tx *sql.Tx) StoryStore
}
