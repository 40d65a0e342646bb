package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
)

// QuestLogStore defines the interface for quest log persistence.
type QuestLogStore interface {
	// Create saves a new quest log.
	Create(ctx context.Context, questLog *domain.QuestLog) error

	// GetByID retrieves a quest log by ID.
	// Returns ErrQuestLogNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuestLog, error)

	// ListForUser returns the quest logs the user owns plus those they
	// hold a membership on, ordered by creation time.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.QuestLog, error)

	// Delete removes a quest log. Tasks, memberships and invites are
	// removed with it through the schema's cascade rules; activities
	// are not.
	// Returns ErrQuestLogNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a QuestLogStore bound to the given transaction.
	WithTx(tx *sql.Tx) QuestLogStore
}
