package apperrors

import "errors"

// Core error taxonomy. Every service failure wraps one of these sentinels so
// the HTTP layer can map it to a status code without inspecting message text.
var (
	// Validation errors
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrValidationFailed = errors.New("validation failed")

	// Resource errors
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidState     = errors.New("invalid state")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// User errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user is not active")
)

// Connection errors
var (
	ErrSelfConnection       = errors.New("cannot connect to yourself")
	ErrConnectionNotFound   = errors.New("connection not found")
	ErrConnectionExists     = errors.New("a connection already exists for this pair")
	ErrConnectionNotPending = errors.New("connection is not pending")
)

// Confession errors
var (
	ErrConfessionNotFound = errors.New("confession not found")
	ErrConfessionTooShort = errors.New("confession must be at least 10 characters")
	ErrConfessionTooLong  = errors.New("confession is too long (max 1000 characters)")
)

// Event errors
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrEventFull          = errors.New("event is full")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrRegistrationClosed = errors.New("registration deadline has passed")
	ErrNotRegistered      = errors.New("not registered for this event")
)

// Group errors
var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrGroupFull      = errors.New("group is full")
	ErrAlreadyMember  = errors.New("already a member of this group")
	ErrNotMember      = errors.New("not a member of this group")
	ErrGroupPrivate   = errors.New("group is private and requires approval")
	ErrMemberBanned   = errors.New("banned from this group")
	ErrLastGroupAdmin = errors.New("group must keep at least one admin")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Field   string
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithField attaches the offending field name to the error
func (e *CustomError) WithField(field string) *CustomError {
	e.Field = field
	return e
}

// NewInvalidArgumentError creates an invalid-argument error with a message
func NewInvalidArgumentError(message string) error {
	return &CustomError{Err: ErrInvalidArgument, Message: message}
}

// NewFieldValidationError creates an invalid-argument error naming the
// offending field
func NewFieldValidationError(field, message string) error {
	return &CustomError{Err: ErrInvalidArgument, Message: message, Field: field}
}

// NewNotFoundError creates a not-found error with a message
func NewNotFoundError(message string) error {
	return &CustomError{Err: ErrNotFound, Message: message}
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewForbiddenError creates a permission-denied error with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewCapacityExceededError creates a capacity error with a message
func NewCapacityExceededError(message string) error {
	return &CustomError{Err: ErrCapacityExceeded, Message: message}
}

// NewInvalidStateError creates an invalid-state error with a message
func NewInvalidStateError(message string) error {
	return &CustomError{Err: ErrInvalidState, Message: message}
}

// Is reports whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
