package api

import (
	"errors"
	"net/http"

	"github.com/taskfable/questlog-api/internal/api/shared"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/service"
	"github.com/taskfable/questlog-api/internal/service/auth"
	"github.com/taskfable/questlog-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes
// without leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrQuestLogNotFound),
		errors.Is(err, store.ErrMembershipNotFound),
		errors.Is(err, store.ErrInviteNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrCommentNotFound),
		errors.Is(err, store.ErrStoryNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrUsernameExists),
		errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrTaskLocked),
		errors.Is(err, domain.ErrConflictingInviteOptions),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenRevoked),
		errors.Is(err, domain.ErrAlreadyRevoked),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, service.ErrNotOwner):
		return "Only the owner can do this"

	case errors.Is(err, service.ErrForbidden):
		return "You are not allowed to do this"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrQuestLogNotFound):
		return "Quest log not found"

	case errors.Is(err, store.ErrMembershipNotFound):
		return "Membership not found"

	case errors.Is(err, store.ErrInviteNotFound):
		return "Invite not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrCommentNotFound):
		return "Comment not found"

	case errors.Is(err, store.ErrStoryNotFound):
		return "Story not found"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already taken"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already registered"

	case errors.Is(err, domain.ErrInvalidTransition):
		return "Invalid status transition"

	case errors.Is(err, domain.ErrTaskLocked):
		return "Task is completed and locked"

	case errors.Is(err, domain.ErrConflictingInviteOptions):
		return "A permanent invite cannot have an expiry"

	case errors.Is(err, domain.ErrTokenExpired):
		return "Invite has expired"

	case errors.Is(err, domain.ErrTokenRevoked):
		return "Invite has been revoked"

	case errors.Is(err, domain.ErrAlreadyRevoked):
		return "Invite is already revoked"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and safe message and writes
// the error response, logging the underlying error.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if message == "An unexpected error occurred" && fallbackMessage != "" {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
