package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"novelpedia-backend/internal/shared/apperror"
)

// Kind selects the flat name catalog.
type Kind string

const (
	KindTag   Kind = "tag"
	KindGenre Kind = "genre"
)

func (k Kind) Valid() bool {
	return k == KindTag || k == KindGenre
}

// Term is a tag or a genre.
type Term struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

const (
	ErrCodeNotFound    = "CAT001"
	ErrCodeInvalidName = "CAT002"
	ErrCodeNameTaken   = "CAT003"
	ErrCodeInvalidKind = "CAT004"
)

var (
	ErrTermNotFound = apperror.NotFound(ErrCodeNotFound, "Tag or genre not found")
	ErrInvalidKind  = apperror.Validation(ErrCodeInvalidKind, "Unknown catalog", nil)
)

func NewNameTakenError(kind Kind) error {
	return apperror.Field(ErrCodeNameTaken, "name", "A "+string(kind)+" with this name already exists")
}

// CreateTermRequest is the body of both create and rename.
type CreateTermRequest struct {
	Name string `json:"name" binding:"required"`
}

func (r CreateTermRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
	)
	return apperror.FromValidation(ErrCodeInvalidName, err)
}

type UpdateTermRequest = CreateTermRequest

// NormalizeNames trims, drops empties and removes duplicates while keeping
// first-seen order.
func NormalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
