package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskfable/questlog-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrUsernameExists or ErrEmailExists when the username or
	// email is already taken, and domain validation errors for invalid
	// data.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user, including settings changes.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// AddRewards atomically increments the user's XP and currency
	// balances. Returns ErrUserNotFound if the user does not exist.
	AddRewards(ctx context.Context, id uuid.UUID, xp, currency int) error

	// ListUsernames returns all registered usernames, sorted.
	ListUsernames(ctx context.Context) ([]string, error)

	// WithTx returns a UserStore bound to the given transaction so
	// multiple operations can be grouped atomically.
	WithTx(tx *sql.Tx) UserStore
}
