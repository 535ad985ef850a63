package model

import (
	"novelpedia-backend/internal/shared/apperror"
)

// Error codes
const (
	ErrCodeReviewNotFound = "REV001"
	ErrCodeInvalidInput   = "REV002"
	ErrCodeNovelNotFound  = "REV003"
)

var (
	ErrReviewNotFound = apperror.NotFound(ErrCodeReviewNotFound, "Review not found")
	ErrNovelNotFound  = apperror.Field(ErrCodeNovelNotFound, "novel", "Novel does not exist")
)

func NewInvalidInputError(err error) error {
	return apperror.FromValidation(ErrCodeInvalidInput, err)
}
