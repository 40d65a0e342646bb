package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
)

// CommentStore defines the interface for comment persistence.
type CommentStore interface {
	// Create saves a new comment.
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID retrieves a comment by ID.
	// Returns ErrCommentNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)

	// ListByTask returns a task's comments, oldest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)

	// ListAuthorIDs returns the distinct author IDs of a task's
	// comments. Used to compute the reward participant set.
	ListAuthorIDs(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)

	// Update persists a comment edit.
	// Returns ErrCommentNotFound if it does not exist.
	Update(ctx context.Context, comment *domain.Comment) error

	// WithTx returns a CommentStore bound to the given transaction.
	WithTx(tx *sql.Tx) CommentStore
}
