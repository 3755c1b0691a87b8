package common

import (
	"errors"
	"fmt"
)

// Error codes for the parsing pipeline. These are stable identifiers: they
// appear in API responses and in persisted error messages.
const (
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeNoResumeFound        = "NO_RESUME_FOUND"
	CodeAlreadyInProgress    = "ALREADY_IN_PROGRESS"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidReference     = "INVALID_REFERENCE"
	CodeDownloadFailure      = "DOWNLOAD_FAILURE"
	CodeExtractionFailure    = "EXTRACTION_FAILURE"
	CodeParsingFailure       = "PARSING_FAILURE"
	CodeProfileUpdateFailure = "PROFILE_UPDATE_FAILURE"
	CodeUnexpectedError      = "UNEXPECTED_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// UserMessage is the human-readable string recorded on the job and profile
// rows for failed runs. It includes the underlying cause when available.
func (e *AppError) UserMessage() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// CodeOf returns the taxonomy code carried by err, or UNEXPECTED_ERROR when
// err is not an AppError.
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnexpectedError
}
