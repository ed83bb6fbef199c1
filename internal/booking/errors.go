package booking

import "errors"

// Error taxonomy of the booking flow.  Callers match with errors.Is; the
// wrapped message carries the detail shown to the user.
var (
	// ErrValidation covers malformed input and transitions attempted without
	// their precondition.  The flow state is unchanged.
	ErrValidation = errors.New("validation failed")
	// ErrAuthRequired gates actions that need a signed-in user.
	ErrAuthRequired = errors.New("authentication required")
	// ErrBackend wraps any failure reported by the purchase backend.  The
	// flow is back in Checkout with the entered data kept.
	ErrBackend = errors.New("backend failure")
	// ErrNotFound is returned for unknown showtimes and seats.
	ErrNotFound = errors.New("not found")
	// ErrSubmissionInFlight rejects a second submit while one is processing.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrForbidden is returned when another user drives an owned flow.
	ErrForbidden = errors.New("flow belongs to another user")

	ErrSeatOccupied = errors.New("seat is occupied")
)

// AuthRequiredError carries the login redirect the client should follow.
type AuthRequiredError struct {
	Redirect string
}

func (e *AuthRequiredError) Error() string { return "authentication required" }

func (e *AuthRequiredError) Unwrap() error { return ErrAuthRequired }

// FieldErrors maps form fields to user facing messages.
type FieldErrors map[string]string

// ValidationError reports a refused action together with per-field
// messages when a form was involved.
type ValidationError struct {
	Message string
	Fields  FieldErrors
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }
