package common

import (
	"errors"
	"fmt"
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

// Common application errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDatabase        = errors.New("database error")
	ErrConflict        = errors.New("conflict")
)

// Per-file processing failures. Their messages end up in the record's
// suggested name, so they are written for people.
var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrReadFile         = errors.New("could not read file")
	ErrNoTextExtracted  = errors.New("no text could be extracted from the PDF")
	ErrNoSuggestion     = errors.New("could not generate a suggested name")
	ErrConfiguration    = errors.New("configuration error")
	ErrProviderResponse = errors.New("invalid provider response")
	ErrSuggestion       = errors.New("no provider produced a suggestion")
	ErrRename           = errors.New("rename failed")
)

// Error codes used with AppError.
const (
	CodeConfig     = "CONFIG_ERROR"
	CodeValidation = "VALIDATION_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError reports a missing or invalid configuration value.
func ConfigError(format string, args ...any) *AppError {
	return NewAppError(CodeConfig, fmt.Sprintf(format, args...), ErrConfiguration)
}
