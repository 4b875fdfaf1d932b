// backend/shared/go-utils/errors.go
package utils

import (
	"errors"
	"net/http"
)

// Errors shared by every service.
var (
	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// For external service failures (SendGrid, Twilio, Kafka, Redis)
	ErrExternalServiceFailure = errors.New("external_service_failure")

	ErrNoRowsUpdated = errors.New("no_rows_updated")
)

// AppError carries a failure from the service layer to the controllers.
// Err is the underlying cause and is reachable through errors.Is / errors.As.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Details    any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string, details any, cause error) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: ErrCodeValidation, Message: message, Details: details, Err: cause}
}

func NewNotFoundError(message string, cause error) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Code: ErrCodeNotFound, Message: message, Err: cause}
}

func NewConflictError(message string, details any, cause error) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Code: ErrCodeConflict, Message: message, Details: details, Err: cause}
}

func NewInvalidTransitionError(message string, details any, cause error) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Code: ErrCodeInvalidTransition, Message: message, Details: details, Err: cause}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Code: ErrCodeInternal, Message: message, Err: cause}
}

// AsAppError returns err as an *AppError, wrapping anything else as INTERNAL.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("An unexpected error occurred", err)
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	appErr := AsAppError(err)
	RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, appErr.Details, appErr.Err)
}
