package user

import (
	"novelpedia-backend/internal/shared/apperror"
)

// Error codes
const (
	ErrCodeUserNotFound       = "USR001"
	ErrCodeNameTaken          = "USR002"
	ErrCodeEmailTaken         = "USR003"
	ErrCodeInvalidCredentials = "USR004"
	ErrCodeInvalidToken       = "USR005"
	ErrCodeInvalidInput       = "USR006"
)

var (
	ErrUserNotFound = apperror.NotFound(ErrCodeUserNotFound, "User not found")

	// ErrInvalidCredentials covers unknown identifiers, wrong passwords and
	// accounts that may not sign in. Callers cannot tell them apart.
	ErrInvalidCredentials = apperror.New(apperror.ErrAuthFailure, ErrCodeInvalidCredentials, "Invalid credentials")

	ErrInvalidToken = apperror.New(apperror.ErrAuthFailure, ErrCodeInvalidToken, "Invalid or expired token")
)

func NewNameTakenError() *apperror.AppError {
	return apperror.Field(ErrCodeNameTaken, "name", "A user with this name already exists")
}

func NewEmailTakenError() *apperror.AppError {
	return apperror.Field(ErrCodeEmailTaken, "email", "A user with this email already exists")
}

// NewInvalidInputError wraps a DTO validation failure. Nil stays nil.
func NewInvalidInputError(err error) error {
	return apperror.FromValidation(ErrCodeInvalidInput, err)
}
