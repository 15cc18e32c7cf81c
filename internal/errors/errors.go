package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies a class of failure. The range tells the layer it comes from.
type ErrorCode int

// System errors (1000-1999)
const (
	ErrInternal ErrorCode = 1000 + iota
	ErrDatabase
	ErrCache
	ErrTimeout
	ErrUpstream
)

// Auth errors (2000-2999)
const (
	ErrUnauthorized ErrorCode = 2000 + iota
	ErrForbidden
	ErrInvalidToken
	ErrTokenExpired
	ErrInvalidCredentials
)

// Request errors (3000-3999)
const (
	ErrBadRequest ErrorCode = 3000 + iota
	ErrValidation
	ErrResourceNotFound
	ErrResourceExists
	ErrResourceConflict
)

// Identity provider errors (4000-4999)
const (
	ErrUserNotFound ErrorCode = 4000 + iota
	ErrEmailInUse
	ErrWeakPassword
	ErrInvalidEmail
	ErrWrongPassword
	ErrTooManyRequests
)

// AppError is the error type returned by services and repositories.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches a code and message to an existing error.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the outermost AppError in err's chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// As is errors.As, re-exported so callers importing this package need not alias the stdlib one.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

func Validation(message string) *AppError {
	return New(ErrValidation, message)
}

func NotFound(message string) *AppError {
	return New(ErrResourceNotFound, message)
}

func Forbidden(message string) *AppError {
	return New(ErrForbidden, message)
}

func Persistence(message string, err error) *AppError {
	return Wrap(ErrDatabase, message, err)
}

func Timeout(message string, err error) *AppError {
	return Wrap(ErrTimeout, message, err)
}
