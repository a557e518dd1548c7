package common

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindConflict     ErrorKind = "CONFLICT"
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
)

// AppError is the error type services return for failures a caller can act on.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Code: string(KindNotFound), Message: fmt.Sprintf("%s not found", resource)}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: string(KindForbidden), Message: message}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

func NewValidationError(code, message string, details map[string]string) *AppError {
	if code == "" {
		code = string(KindValidation)
	}
	return &AppError{Kind: KindValidation, Code: code, Message: message, Details: details}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: string(KindUnauthorized), Message: message}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
