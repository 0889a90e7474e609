package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
	ErrHasRelations          = errors.New("resource has associated data and cannot be deleted")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")

	// Infrastructure errors
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrLoginAlreadyExists = errors.New("login already exists")
)

// School errors
var (
	ErrAbsenceAlreadyJustified = errors.New("absence is already justified")
	ErrReportCardExists        = errors.New("report card already exists for this term")
	ErrRequestAlreadyDecided   = errors.New("enrollment request has already been decided")
)

// Tourism errors
var (
	ErrFeedbackAlreadyReleased = errors.New("feedback already released for this site")
	ErrBannerLimitReached      = errors.New("maximum number of banners reached")
	ErrInvalidImage            = errors.New("invalid banner image")
	ErrConventionOverlap       = errors.New("convention overlaps an existing one")
)

// NewResourceNotFoundError wraps ErrResourceNotFound with a caller-facing message
func NewResourceNotFoundError(message string) error {
	return NewCustomError(ErrResourceNotFound, message)
}

// NewConflictError wraps ErrConflict with a caller-facing message
func NewConflictError(message string) error {
	return NewCustomError(ErrConflict, message)
}

// NewForbiddenError wraps ErrPermissionDenied with a caller-facing message
func NewForbiddenError(message string) error {
	return NewCustomError(ErrPermissionDenied, message)
}

// NewValidationError creates a validation error carrying per-field messages
func NewValidationError(fields map[string]string) error {
	details := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	ce := NewCustomError(ErrValidationFailed, "validation failed")
	ce.Details = details
	return ce
}

// CustomError attaches a message, and optionally field details, to a sentinel error
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// Error implements error interface
func (e *CustomError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "unknown error"
	}
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// AsCustom extracts the outermost CustomError from the chain, if any.
func AsCustom(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
