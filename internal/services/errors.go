package services

import (
	"errors"

	"quiz-admin/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNotAvailable       = errors.New("not available")
	ErrFileMissing        = errors.New("file not found on server")
	ErrAlreadyInitialized = errors.New("administrator already initialized")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")

	// ErrValidation matches every input validation failure through errors.Is.
	ErrValidation = errors.New("validation failed")

	ErrInvalidLanguage = newValidationError(models.ErrInvalidLanguage.Error())
	ErrFileRequired    = newValidationError("file is required")
	ErrInvalidFileType = newValidationError("only Excel files (.xlsx, .xls) are allowed")
	ErrFileTooLarge    = newValidationError("file exceeds the maximum allowed size")
)

// ValidationError is a client input problem with a human readable message.
type ValidationError struct {
	Message string
}

func newValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ErrNoFile means the slot for the requested language is empty.
var ErrNoFile = errors.New("file not uploaded")
