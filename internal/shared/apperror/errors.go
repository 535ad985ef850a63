package apperror

import (
	"errors"
	"fmt"
)

// Kinds. Every domain error wraps exactly one of these so transport code can
// map it to a status without knowing the domain.
var (
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrAuthFailure      = errors.New("invalid credentials")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrConflict         = errors.New("conflict")
	ErrFederation       = errors.New("external identity federation failed")
)

// AppError carries a machine-readable code and optional field detail.
type AppError struct {
	Kind    error
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is lets errors.Is match on the kind.
func (e *AppError) Is(target error) bool {
	return e.Kind == target
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind error, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string, fields map[string]string) *AppError {
	return &AppError{Kind: ErrValidation, Code: code, Message: message, Fields: fields}
}

// Field is shorthand for a validation error on a single field.
func Field(code, field, message string) *AppError {
	return Validation(code, message, map[string]string{field: message})
}

func NotFound(code, message string) *AppError {
	return New(ErrNotFound, code, message)
}

func PermissionDenied(code, message string) *AppError {
	return New(ErrPermissionDenied, code, message)
}

func Conflict(code, message string) *AppError {
	return New(ErrConflict, code, message)
}

// Wrap attaches a cause while keeping the kind.
func (e *AppError) Wrap(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
