package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID.
	// Returns ErrTaskNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByIDForUpdate retrieves a task by ID and locks its row for the
	// duration of the enclosing transaction, serializing concurrent
	// status changes. Must be called through WithTx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByQuestLog returns all tasks on a quest log, ordered by
	// creation time.
	ListByQuestLog(ctx context.Context, questLogID uuid.UUID) ([]*domain.Task, error)

	// ListDueRecurring returns done recurring tasks whose next
	// scheduled run is at or before now.
	ListDueRecurring(ctx context.Context, now time.Time) ([]*domain.Task, error)

	// Update persists changes to a task (status, lock, description,
	// schedule).
	// Returns ErrTaskNotFound if it does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// AppendHistory saves a status-change history entry.
	AppendHistory(ctx context.Context, entry *domain.TaskHistoryEntry) error

	// ListHistory returns a task's history entries, oldest first.
	ListHistory(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskHistoryEntry, error)

	// WithTx returns a TaskStore bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}
