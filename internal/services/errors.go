// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION_ERROR"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindConflict          ErrorKind = "CONFLICT"
	KindDependency        ErrorKind = "DEPENDENCY_ERROR"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindInternal          ErrorKind = "INTERNAL_ERROR"
)

// AppError is the error type returned across the service boundary. Handlers
// translate Kind into a status code; Err carries the underlying cause for
// logs and is never shown to clients.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string, details interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Details: details}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewConflictError(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

func NewDependencyError(message string, details interface{}) *AppError {
	return &AppError{Kind: KindDependency, Message: message, Details: details}
}

func NewInsufficientStockError(message string, details interface{}) *AppError {
	return &AppError{Kind: KindInsufficientStock, Message: message, Details: details}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of err, treating anything that is not an AppError
// as internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
