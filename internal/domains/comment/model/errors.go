package model

import (
	"novelpedia-backend/internal/shared/apperror"
)

// Error codes
const (
	ErrCodeCommentNotFound = "CMT001"
	ErrCodeInvalidInput    = "CMT002"
	ErrCodeInvalidTarget   = "CMT003"
	ErrCodeTargetNotFound  = "CMT004"
	ErrCodeInvalidParent   = "CMT005"
)

var (
	ErrCommentNotFound = apperror.NotFound(ErrCodeCommentNotFound, "Comment not found")

	ErrMissingTarget = apperror.Validation(ErrCodeInvalidTarget, "Comment must target a chapter or a paragraph", map[string]string{
		"chapter":   "Either chapter or paragraph is required",
		"paragraph": "Either chapter or paragraph is required",
	})
	ErrAmbiguousTarget = apperror.Validation(ErrCodeInvalidTarget, "Comment cannot target both a chapter and a paragraph", map[string]string{
		"chapter":   "Set only one of chapter and paragraph",
		"paragraph": "Set only one of chapter and paragraph",
	})

	ErrParentNotFound  = apperror.Field(ErrCodeInvalidParent, "parent", "Parent comment does not exist")
	ErrParentElsewhere = apperror.Field(ErrCodeInvalidParent, "parent", "Parent comment belongs to a different target")
)

func NewInvalidInputError(err error) error {
	return apperror.FromValidation(ErrCodeInvalidInput, err)
}

func NewInvalidTargetError(field string) error {
	return apperror.Field(ErrCodeInvalidTarget, field, "Must be a positive id")
}

func NewTargetNotFoundError(t Target) error {
	return apperror.Field(ErrCodeTargetNotFound, string(t.Kind), "Target does not exist")
}
