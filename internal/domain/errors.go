package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the booking domain. Handlers map these to HTTP status
// codes, services and repositories return them wrapped with context.
var (
	// Not found
	ErrUserNotFound    = errors.New("user not found")
	ErrVenueNotFound   = errors.New("venue not found")
	ErrBookingNotFound = errors.New("booking not found")

	// Conflicts
	ErrEmailTaken        = errors.New("email already registered")
	ErrDateUnavailable   = errors.New("venue not available on that date")
	ErrDateAlreadyBooked = errors.New("date already booked or pending")
	ErrBookingNotPending = errors.New("only pending bookings can be confirmed or rejected")
	ErrBookingNotActive  = errors.New("only pending or confirmed bookings can be cancelled")

	// Auth
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrTokenInvalid       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("not allowed")

	// Infrastructure
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError carries a caller-facing message describing why input was
// rejected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError checks if an error is a not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrVenueNotFound) ||
		errors.Is(err, ErrBookingNotFound)
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrDateUnavailable) ||
		errors.Is(err, ErrDateAlreadyBooked) ||
		errors.Is(err, ErrBookingNotPending) ||
		errors.Is(err, ErrBookingNotActive)
}

// IsUnauthenticatedError checks if an error means the caller must sign in
func IsUnauthenticatedError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrTokenInvalid)
}

// IsForbiddenError checks if an error means the caller lacks permission
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsUnavailableError checks if an error means a dependency is down
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}
