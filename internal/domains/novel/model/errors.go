package model

import (
	"novelpedia-backend/internal/shared/apperror"
)

// Error codes
const (
	ErrCodeNovelNotFound    = "NOV001"
	ErrCodeInvalidInput     = "NOV002"
	ErrCodeDuplicateTitle   = "NOV003"
	ErrCodeSlugExhausted    = "NOV004"
	ErrCodeInvalidCover     = "NOV005"
	ErrCodeBookmarkNotFound = "NOV006"
	ErrCodeFeaturedNotFound = "NOV007"
)

var (
	ErrNovelNotFound    = apperror.NotFound(ErrCodeNovelNotFound, "Novel not found")
	ErrBookmarkNotFound = apperror.NotFound(ErrCodeBookmarkNotFound, "Bookmark not found")
	ErrFeaturedNotFound = apperror.NotFound(ErrCodeFeaturedNotFound, "Featured entry not found")

	// ErrSlugTaken is returned by the repository when an insert or update
	// hits the slug unique constraint.
	ErrSlugTaken = apperror.Conflict(ErrCodeSlugExhausted, "Could not assign a unique slug, please retry")
)

func NewInvalidInputError(err error) error {
	return apperror.FromValidation(ErrCodeInvalidInput, err)
}

func NewDuplicateTitleError() error {
	return apperror.Field(ErrCodeDuplicateTitle, "title", "You already have a novel with this title. Please choose another.")
}

func NewInvalidCoverError(reason error) error {
	return apperror.Field(ErrCodeInvalidCover, "cover_image", reason.Error())
}
