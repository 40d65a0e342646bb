package domain

import "errors"

// Common domain errors shared across entities.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// More specific errors are typically wrapped around it.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when a task status change is not
	// permitted by the lifecycle transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTaskLocked is returned when a mutation is attempted on a task
	// that has been completed and locked.
	ErrTaskLocked = errors.New("task is locked")

	// ErrConflictingInviteOptions is returned when a permanent invite is
	// requested together with an expiry duration.
	ErrConflictingInviteOptions = errors.New("permanent invite cannot carry an expiry time")
)
