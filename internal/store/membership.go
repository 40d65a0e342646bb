package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
)

// MembershipStore defines the interface for membership persistence.
type MembershipStore interface {
	// Upsert saves the membership, updating the role of an existing
	// (quest log, user) pair in place rather than inserting a second
	// row.
	Upsert(ctx context.Context, membership *domain.Membership) error

	// Get retrieves the membership of userID on questLogID.
	// Returns ErrMembershipNotFound if none exists.
	Get(ctx context.Context, questLogID, userID uuid.UUID) (*domain.Membership, error)

	// ListByQuestLog returns all memberships on a quest log, ordered by
	// creation time.
	ListByQuestLog(ctx context.Context, questLogID uuid.UUID) ([]*domain.Membership, error)

	// WithTx returns a MembershipStore bound to the given transaction.
	WithTx(tx *sql.Tx) MembershipStore
}
