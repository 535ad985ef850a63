package model

import (
	"novelpedia-backend/internal/shared/apperror"
)

// Error codes
const (
	ErrCodeChapterNotFound   = "CHP001"
	ErrCodeInvalidInput      = "CHP002"
	ErrCodeParagraphNotFound = "CHP003"
	ErrCodeInvalidOrder      = "CHP004"
	ErrCodeInvalidImage      = "CHP005"
	ErrCodeUIDTaken          = "CHP006"
	ErrCodeNovelNotFound     = "CHP007"
)

var (
	ErrChapterNotFound   = apperror.NotFound(ErrCodeChapterNotFound, "Chapter not found")
	ErrParagraphNotFound = apperror.NotFound(ErrCodeParagraphNotFound, "Paragraph not found")
	ErrNovelNotFound     = apperror.NotFound(ErrCodeNovelNotFound, "Novel not found")
	ErrUIDTaken          = apperror.Field(ErrCodeUIDTaken, "uid", "A paragraph with this uid already exists")
)

func NewInvalidInputError(err error) error {
	return apperror.FromValidation(ErrCodeInvalidInput, err)
}

func NewInvalidOrderError() error {
	return apperror.Field(ErrCodeInvalidOrder, "chapter_ids", "Must list every chapter of the novel exactly once")
}

func NewInvalidImageError(reason error) error {
	return apperror.Field(ErrCodeInvalidImage, "hero_image_data", reason.Error())
}
