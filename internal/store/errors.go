package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	// Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a
	// uniqueness constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation
	// before being stored.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update cannot be applied.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete cannot be applied.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrTransactionFailed is returned when a transaction fails to
	// commit or an operation inside it fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors.

	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrQuestLogNotFound   = fmt.Errorf("%w: quest log", ErrNotFound)
	ErrMembershipNotFound = fmt.Errorf("%w: membership", ErrNotFound)
	ErrInviteNotFound     = fmt.Errorf("%w: invite", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("%w: task", ErrNotFound)
	ErrCommentNotFound    = fmt.Errorf("%w: comment", ErrNotFound)
	ErrStoryNotFound      = fmt.Errorf("%w: story", ErrNotFound)
	ErrJobNotFound        = fmt.Errorf("%w: job", ErrNotFound)

	// Entity-specific "duplicate" errors.

	// ErrUsernameExists indicates the username is already taken.
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)

	// ErrEmailExists indicates the email is already registered.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError carries entity and operation context around a lower-level
// database error.
type StoreError struct {
	Entity    string // The entity type (e.g., "task", "invite")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a StoreError with the given context and wrapped
// error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
