package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Throttling
	ErrRateLimited = errors.New("rate limit exceeded")

	// Lifecycle state conflicts
	ErrAlreadyRented           = errors.New("listing is already rented")
	ErrNotRented               = errors.New("rental is not active")
	ErrCannotToggleWhileRented = errors.New("cannot change listing status while it is rented")

	// External collaborators
	ErrEscrowCallFailed = errors.New("escrow call failed")
)

// ValidationError reports a rejected user-supplied field. It is recoverable:
// the caller fixes the field and retries.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError builds a field-level validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
