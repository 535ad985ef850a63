package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxTextLength   = 5000
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CreateCommentRequest struct {
	Chapter   *int64 `json:"chapter"`
	Paragraph *int64 `json:"paragraph"`
	Parent    *int64 `json:"parent"`
	Text      string `json:"text"`
}

// Validate checks the text and resolves the target.
func (r *CreateCommentRequest) Validate() (Target, error) {
	target, err := NewTarget(r.Chapter, r.Paragraph)
	if err != nil {
		return Target{}, err
	}

	r.Text = strings.TrimSpace(r.Text)
	err = validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Required, validation.RuneLength(1, MaxTextLength)),
		validation.Field(&r.Parent, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
	if err != nil {
		return Target{}, NewInvalidInputError(err)
	}
	return target, nil
}

// UpdateCommentRequest edits text only. A comment never moves.
type UpdateCommentRequest struct {
	Text string `json:"text"`
}

func (r *UpdateCommentRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Required, validation.RuneLength(1, MaxTextLength)),
	)
}

// ListCommentsRequest needs exactly one of ?chapter= and ?paragraph=.
type ListCommentsRequest struct {
	Chapter   *int64 `form:"chapter"`
	Paragraph *int64 `form:"paragraph"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

func (r *ListCommentsRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 || r.Limit > MaxPageSize {
		r.Limit = DefaultPageSize
	}
}

func (r *ListCommentsRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

type ListCommentsResponse struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}
