package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date not after start date).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when the requested dates collide with existing bookings.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUnauthenticated is returned when an operation requires a customer identity
// and none was supplied. Handlers should map this to HTTP 401.
var ErrUnauthenticated = errors.New("not authenticated")

// ErrInternal marks infrastructure failures (database, timeouts).
// The cause is logged server-side and never sent to clients.
var ErrInternal = errors.New("internal error")

// ErrOverlap is returned by the booking repo when an insert violates the
// bookings_no_overlap exclusion constraint.
var ErrOverlap = errors.New("booking overlaps an existing booking")

// Code is the machine-readable error code sent to API clients.
type Code string

const (
	CodeMissingParameters     Code = "MISSING_PARAMETERS"
	CodeInvalidParameters     Code = "INVALID_PARAMETERS"
	CodeInvalidDateRange      Code = "INVALID_DATE_RANGE"
	CodeDateInPast            Code = "DATE_IN_PAST"
	CodeVehicleNotFound       Code = "VEHICLE_NOT_FOUND"
	CodeNotAuthenticated      Code = "NOT_AUTHENTICATED"
	CodeMissingRequiredFields Code = "MISSING_REQUIRED_FIELDS"
	CodeUserNotFound          Code = "USER_NOT_FOUND"
	CodeVehicleNotAvailable   Code = "VEHICLE_NOT_AVAILABLE"
	CodeInvalidExtras         Code = "INVALID_EXTRAS"
	CodePriceMismatch         Code = "PRICE_MISMATCH"
	CodeBookingNotFound       Code = "BOOKING_NOT_FOUND"
	CodeServerError           Code = "SERVER_ERROR"

	// Raised by HTTP middleware rather than the services.
	CodeRateLimited     Code = "RATE_LIMITED"
	CodePayloadTooLarge Code = "PAYLOAD_TOO_LARGE"
	CodeInvalidToken    Code = "INVALID_TOKEN"
)

// Error is the typed failure returned by the availability and booking services.
// Kind is one of the sentinel errors above; errors.Is matches against it and
// against the wrapped cause.
type Error struct {
	Code    Code
	Kind    error
	Message string

	// Conflicts is populated for CodeVehicleNotAvailable.
	Conflicts []Conflict

	// Retryable is true when the caller may resubmit the same request unchanged
	// (e.g. the booking transaction timed out).
	Retryable bool

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

// NewValidationError builds an ErrValidation-kind error.
func NewValidationError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError builds an ErrNotFound-kind error.
func NewNotFoundError(code Code, message string) *Error {
	return &Error{Code: code, Kind: ErrNotFound, Message: message}
}

// NewUnavailableError reports that the vehicle is already booked for an
// overlapping range. conflicts is never nil in the result.
func NewUnavailableError(conflicts []Conflict) *Error {
	if conflicts == nil {
		conflicts = []Conflict{}
	}
	return &Error{
		Code:      CodeVehicleNotAvailable,
		Kind:      ErrConflict,
		Message:   "vehicle is not available for the selected dates",
		Conflicts: conflicts,
	}
}

// NewUnauthenticatedError builds an ErrUnauthenticated-kind error.
func NewUnauthenticatedError() *Error {
	return &Error{Code: CodeNotAuthenticated, Kind: ErrUnauthenticated, Message: "authentication required"}
}

// NewInternalError wraps an infrastructure failure. The cause is kept for
// logging and errors.Is, but Message stays generic.
func NewInternalError(cause error, retryable bool) *Error {
	msg := "internal server error"
	if retryable {
		msg = "the request timed out, please retry"
	}
	return &Error{Code: CodeServerError, Kind: ErrInternal, Message: msg, Retryable: retryable, cause: cause}
}
