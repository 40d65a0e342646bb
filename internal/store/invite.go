package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
)

// InviteStore defines the interface for invite token persistence.
type InviteStore interface {
	// Create saves a new invite.
	Create(ctx context.Context, invite *domain.Invite) error

	// GetByID retrieves an invite by ID.
	// Returns ErrInviteNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invite, error)

	// GetByIDForUpdate retrieves an invite by ID and locks its row for
	// the duration of the enclosing transaction. Must be called through
	// WithTx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Invite, error)

	// GetByToken retrieves an invite by its opaque token.
	// Returns ErrInviteNotFound if it does not exist.
	GetByToken(ctx context.Context, token string) (*domain.Invite, error)

	// ListByQuestLog returns all invites on a quest log, newest first.
	ListByQuestLog(ctx context.Context, questLogID uuid.UUID) ([]*domain.Invite, error)

	// Update persists changes to an invite (revocation).
	// Returns ErrInviteNotFound if it does not exist.
	Update(ctx context.Context, invite *domain.Invite) error

	// WithTx returns an InviteStore bound to the given transaction.
	WithTx(tx *sql.Tx) InviteStore
}
