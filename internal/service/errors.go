package service

import "errors"

// Common service-level errors shared across services.
var (
	// ErrNotOwner indicates the acting user does not own the resource
	// they tried to manage.
	ErrNotOwner = errors.New("user is not the owner of this resource")

	// ErrForbidden indicates the acting user is not allowed to perform
	// the operation (for example a spectator attempting a write, or a
	// non-participant reading a quest log).
	ErrForbidden = errors.New("user is not allowed to perform this operation")

	// ErrInvalidCredentials indicates a failed login attempt. The same
	// error is returned for an unknown identifier and a wrong password
	// so callers cannot probe for accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ServiceError wraps errors from the service layer with operation
// context while preserving the underlying error for errors.Is checks.
type ServiceError struct {
	// Operation is the service operation that failed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation
}

// Unwrap returns the wrapped error to support errors.Is and errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError wrapping err.
func NewServiceError(operation string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Err: err}
}
