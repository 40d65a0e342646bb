package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
)

// ActivityStore defines the interface for the append-only activity
// trail. Activities are never updated or deleted; they survive the
// deletion of their quest log.
type ActivityStore interface {
	// Append saves a new activity record.
	Append(ctx context.Context, activity *domain.Activity) error

	// ListByQuestLog returns activities for a quest log ordered newest
	// first, skipping skip records and returning at most limit.
	ListByQuestLog(ctx context.Context, questLogID uuid.UUID, skip, limit int) ([]*domain.Activity, error)

	// WithTx returns an ActivityStore bound to the given transaction.
	WithTx(tx *sql.Tx) ActivityStore
}
